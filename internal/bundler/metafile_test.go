package bundler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetafile = `{
  "inputs": {
    "src/z.css": {"bytes": 10, "imports": []},
    "src/a.css": {"bytes": 10, "imports": []},
    "src/index.ts": {"bytes": 80, "imports": [{"path": "src/z.css", "kind": "import-statement"}]}
  },
  "outputs": {
    "dist/My-Script.js": {
      "imports": [],
      "exports": [],
      "entryPoint": "src/index.ts",
      "inputs": {
        "src/z.css": {"bytesInOutput": 20},
        "src/a.css": {"bytesInOutput": 20},
        "src/index.ts": {"bytesInOutput": 60}
      },
      "bytes": 140
    },
    "dist/other.js": {
      "imports": [],
      "exports": [],
      "inputs": {},
      "bytes": 0
    }
  }
}`

func TestParseMetafile(t *testing.T) {
	outputs, err := ParseMetafile(sampleMetafile)
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	first := outputs[0]
	assert.Equal(t, "dist/My-Script.js", first.Path)
	assert.Equal(t, "src/index.ts", first.EntryPoint)
	assert.Equal(t, 140, first.Bytes)
	assert.Equal(t, []string{"src/z.css", "src/a.css", "src/index.ts"}, first.Inputs, "document order, not sorted")

	assert.Equal(t, "dist/other.js", outputs[1].Path)
	assert.Empty(t, outputs[1].Inputs)
	assert.NotNil(t, outputs[1].Inputs)
}

func TestParseMetafileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not an object", `[]`},
		{"bad outputs", `{"outputs": []}`},
		{"bad inputs", `{"outputs": {"a.js": {"inputs": [1]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetafile(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestAbs(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join(root, "src", "a.css"), abs(root, "src/a.css"))

	other := filepath.Join(t.TempDir(), "x.css")
	assert.Equal(t, other, abs(root, filepath.ToSlash(other)))
}
