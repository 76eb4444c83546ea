package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/usbuild/internal/config"
)

func TestGet(t *testing.T) {
	tmpl, err := Get("styled")
	require.NoError(t, err)
	assert.Equal(t, "styled", tmpl.Name)

	_, err = Get("react")
	assert.ErrorContains(t, err, `unknown template "react"`)
}

func TestList(t *testing.T) {
	list := List()
	require.Len(t, list, len(Names()))
	for i, name := range Names() {
		assert.Equal(t, name, list[i].Name)
	}
	assert.True(t, list[0].Default)
	assert.Equal(t, DefaultTemplateName, list[0].Name)
}

func TestListTemplateFiles(t *testing.T) {
	basic, err := ListTemplateFiles("basic")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"usbuild.yaml", "src/index.ts"}, basic)

	styled, err := ListTemplateFiles("styled")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"usbuild.yaml", "src/index.ts", "src/style.css", "src/env.d.ts"}, styled)
}

func TestRenderTemplate(t *testing.T) {
	files, err := RenderTemplate("basic", TemplateData{
		Name:      `Say "hi"`,
		Namespace: "https://example.org",
		Version:   "1.0.0",
		Match:     "https://example.org/*",
	})
	require.NoError(t, err)

	var cfg string
	for _, f := range files {
		if f.TargetPath == "usbuild.yaml" {
			cfg = string(f.Content)
		}
	}
	assert.Contains(t, cfg, `name: "Say \"hi\""`)
	assert.Contains(t, cfg, "namespace: https://example.org")
	assert.Contains(t, cfg, "- https://example.org/*")
}

func TestValidateScriptName(t *testing.T) {
	assert.NoError(t, ValidateScriptName("My Script"))
	assert.Error(t, ValidateScriptName("  "))
	assert.Error(t, ValidateScriptName("***"))
}

func TestValidateMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		valid   bool
	}{
		{"https://example.com/*", true},
		{"*://*.example.com/path", true},
		{"file:///home/*", true},
		{"<all_urls>", true},
		{"example.com", false},
		{"https://example.com", false},
		{"gopher://example.com/", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			err := ValidateMatchPattern(tt.pattern)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDeriveScriptName(t *testing.T) {
	assert.Equal(t, "My Cool Script", DeriveScriptName("my-cool_script"))
	assert.Equal(t, "Tweaks", DeriveScriptName("tweaks"))
	assert.Equal(t, "My Script", DeriveScriptName("--"))
}

func TestGenerate(t *testing.T) {
	t.Run("derives name and writes a loadable config", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "dark-mode")

		result, err := NewGenerator(GenerateOptions{TargetDir: dir}).Generate()
		require.NoError(t, err)
		assert.Equal(t, "basic", result.TemplateName)
		assert.Equal(t, "Dark Mode", result.Name)
		assert.ElementsMatch(t, []string{"usbuild.yaml", "src/index.ts"}, result.Files)

		cfg, err := config.NewLoader().Load(filepath.Join(dir, "usbuild.yaml"))
		require.NoError(t, err)
		require.NoError(t, config.Validate(cfg))
		assert.Equal(t, "Dark Mode", cfg.Header.Name)
		assert.Equal(t, "0.1.0", cfg.Header.Version)
		assert.Equal(t, []string{"https://example.com/*"}, cfg.Header.Match)
		assert.Equal(t, "src/index.ts", cfg.Entry)
		assert.True(t, cfg.AutoGrantEnabled())

		entry, err := os.ReadFile(filepath.Join(dir, "src", "index.ts"))
		require.NoError(t, err)
		assert.Contains(t, string(entry), `const name = "Dark Mode";`)
	})

	t.Run("styled template with overrides", func(t *testing.T) {
		dir := t.TempDir()

		result, err := NewGenerator(GenerateOptions{
			TargetDir:    dir,
			TemplateName: "styled",
			Name:         "Badge",
			Match:        "*://*.example.net/*",
		}).Generate()
		require.NoError(t, err)
		assert.Len(t, result.Files, 4)

		raw, err := os.ReadFile(filepath.Join(dir, "usbuild.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "- *://*.example.net/*")
		assert.FileExists(t, filepath.Join(dir, "src", "style.css"))
	})

	t.Run("non-empty directory needs force", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

		_, err := NewGenerator(GenerateOptions{TargetDir: dir, Name: "x"}).Generate()
		assert.ErrorContains(t, err, "not empty")

		_, err = NewGenerator(GenerateOptions{TargetDir: dir, Name: "x", Force: true}).Generate()
		assert.NoError(t, err)
	})

	t.Run("target is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, err := NewGenerator(GenerateOptions{TargetDir: file, Name: "x"}).Generate()
		assert.ErrorContains(t, err, "is not a directory")
	})

	t.Run("invalid inputs", func(t *testing.T) {
		dir := t.TempDir()

		_, err := NewGenerator(GenerateOptions{TargetDir: dir, TemplateName: "nope"}).Generate()
		assert.Error(t, err)

		_, err = NewGenerator(GenerateOptions{TargetDir: dir, Match: "example.com"}).Generate()
		assert.ErrorContains(t, err, "invalid match pattern")

		_, err = NewGenerator(GenerateOptions{TargetDir: dir, Name: "///"}).Generate()
		assert.ErrorContains(t, err, "invalid script name")
	})
}
