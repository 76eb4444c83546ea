package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/grant"
	"github.com/opmodel/usbuild/internal/header"
)

// chunkSource is what the bundler would emit for an entry that uses two
// storage APIs and imports a stylesheet.
const chunkSource = `(() => {
  var style_default = "body{color:red}";
  __STYLE_MODULE__;
  GM_setValue("seen", true);
  console.log(GM_getValue("seen"));
  __STYLE__;
})();
`

type fixture struct {
	root string
	out  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(out, 0o755))
	return fixture{root: root, out: out}
}

func (f fixture) writeChunk(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.out, name), []byte(content), 0o644))
}

func (f fixture) read(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.out, name))
	require.NoError(t, err)
	return string(b)
}

func testOptions() Options {
	return Options{
		Header: header.Metadata{
			Name:      "Test Script!",
			Namespace: "https://example.com",
			Version:   "1.0",
			Match:     []string{"https://example.com/*", "https://example.com/*"},
		},
		Entry:     "src/index.js",
		AutoGrant: true,
	}
}

// runBuild drives the session through one full production lifecycle.
func runBuild(t *testing.T, s *Session, f fixture, chunks []Chunk) error {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.ConfigResolved(ctx, Build{Root: f.root, OutDir: "dist"}))

	s.Transform("body{color:red}", filepath.Join(f.root, "src", "style.css"))
	s.GenerateBundle(chunks)
	return s.WriteBundle(ctx, chunks)
}

func grantLines(banner string) []string {
	var grants []string
	for _, line := range strings.Split(banner, "\n") {
		if v, ok := strings.CutPrefix(line, "// @grant "); ok {
			grants = append(grants, v)
		}
	}
	return grants
}

func TestConfigResolved(t *testing.T) {
	f := newFixture(t)
	s := NewSession(testOptions())

	require.NoError(t, s.ConfigResolved(context.Background(), Build{Root: f.root, OutDir: "dist"}))

	md := s.Metadata()
	assert.Equal(t, "Test Script", md.Name)
	assert.Equal(t, []string{"https://example.com/*"}, md.Match)
	assert.Equal(t, "Test-Script", s.Stem())
	assert.Equal(t, f.out, s.OutDir())
	assert.Equal(t, filepath.Join(f.root, "src", "index.js"), s.Entry())
	assert.Nil(t, s.Server(), "no server outside watch mode")
}

func TestConfigResolvedRejectsEmptyName(t *testing.T) {
	opts := testOptions()
	opts.Header.Name = "?!*"
	s := NewSession(opts)

	err := s.ConfigResolved(context.Background(), Build{Root: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestTransform(t *testing.T) {
	f := newFixture(t)
	s := NewSession(testOptions())
	require.NoError(t, s.ConfigResolved(context.Background(), Build{Root: f.root, OutDir: "dist"}))

	tests := []struct {
		name string
		src  string
		path string
		want string
	}{
		{"stylesheet", "a{b:c}", filepath.Join(f.root, "src", "a.css"), "export default \"a{b:c}\";\n__STYLE_MODULE__;\n"},
		{"entry", "main();", filepath.Join(f.root, "src", "index.js"), "main();\n__STYLE__;\n"},
		{"other module", "x();", filepath.Join(f.root, "src", "util.js"), "x();"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Transform(tt.src, tt.path))
		})
	}
}

func TestWriteBundleProduction(t *testing.T) {
	f := newFixture(t)
	f.writeChunk(t, "Test-Script.js", chunkSource)
	s := NewSession(testOptions())

	chunks := []Chunk{{
		FileName: "Test-Script.js",
		Modules:  []string{filepath.Join(f.root, "src", "style.css"), filepath.Join(f.root, "src", "index.js")},
	}}
	require.NoError(t, runBuild(t, s, f, chunks))

	user := f.read(t, "Test-Script.user.js")
	assert.True(t, strings.HasPrefix(user, "// ==UserScript==\n"))
	assert.Contains(t, user, "// @name Test Script\n")
	assert.Equal(t, 1, strings.Count(user, "// @match https://example.com/*"))
	assert.Equal(t, []string{"GM_addStyle", "GM_setValue", "GM_getValue"}, grantLines(user))
	assert.Contains(t, user, "// ==/UserScript==\n\n(() => {")

	chunk := f.read(t, "Test-Script.js")
	assert.NotContains(t, chunk, StylePlaceholder)
	assert.NotContains(t, chunk, StyleModuleMarker)
	assert.Contains(t, chunk, "  void 0;\n")
	assert.Contains(t, chunk, `GM_addStyle("body{color:red}");`)
	assert.True(t, strings.HasSuffix(user, chunk), "user script is banner plus patched chunk")

	assert.NoFileExists(t, filepath.Join(f.out, "Test-Script.proxy.user.js"))
	assert.NoFileExists(t, filepath.Join(f.out, "hot-reload-Test-Script.js"))
}

func TestWriteBundleWithoutStyles(t *testing.T) {
	f := newFixture(t)
	f.writeChunk(t, "Test-Script.js", "main();\n__STYLE__;\n")
	s := NewSession(testOptions())

	ctx := context.Background()
	require.NoError(t, s.ConfigResolved(ctx, Build{Root: f.root, OutDir: "dist"}))
	chunks := []Chunk{{FileName: "Test-Script.js", Modules: []string{filepath.Join(f.root, "src", "index.js")}}}
	s.GenerateBundle(chunks)
	require.NoError(t, s.WriteBundle(ctx, chunks))

	assert.Equal(t, "main();\n;\n", f.read(t, "Test-Script.js"))
	assert.Empty(t, grantLines(f.read(t, "Test-Script.user.js")), "no APIs used, no grants")
}

func TestWriteBundleDeclaredGrants(t *testing.T) {
	f := newFixture(t)
	f.writeChunk(t, "Test-Script.js", chunkSource)
	opts := testOptions()
	opts.AutoGrant = false
	opts.Header.Grant = []string{"GM_xmlhttpRequest", "GM_info"}
	s := NewSession(opts)

	require.NoError(t, runBuild(t, s, f, []Chunk{{FileName: "Test-Script.js"}}))

	assert.Equal(t,
		[]string{"GM_xmlhttpRequest", "GM_info", "GM_addStyle"},
		grantLines(f.read(t, "Test-Script.user.js")))
}

func TestWriteBundleInferenceKeepsDeclared(t *testing.T) {
	f := newFixture(t)
	f.writeChunk(t, "Test-Script.js", "GM_log('x');\n")
	opts := testOptions()
	opts.Header.Grant = []string{"GM_notification", "GM_log"}
	s := NewSession(opts)

	require.NoError(t, runBuild(t, s, f, []Chunk{{FileName: "Test-Script.js"}}))

	assert.Equal(t,
		[]string{"GM_log", "GM_notification"},
		grantLines(f.read(t, "Test-Script.user.js")))
}

func TestWriteBundleIsolatesChunkFailures(t *testing.T) {
	f := newFixture(t)
	f.writeChunk(t, "Test-Script.js", chunkSource)
	s := NewSession(testOptions())

	chunks := []Chunk{
		{FileName: "missing.js"},
		{FileName: "style.css"},
		{FileName: "old.user.js"},
		{FileName: "Test-Script.js"},
	}
	err := runBuild(t, s, f, chunks)
	require.Error(t, err)

	var we *WriteError
	require.True(t, errors.As(err, &we))
	require.Len(t, we.Chunks, 1)
	assert.Equal(t, "missing.js", we.Chunks[0].FileName)
	assert.Equal(t, "read", we.Chunks[0].Step)
	assert.True(t, errors.Is(err, oerrors.ErrBuild))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.FileExists(t, filepath.Join(f.out, "Test-Script.user.js"), "later chunks still written")
}

func TestWriteBundleTransformer(t *testing.T) {
	t.Run("applied after style injection", func(t *testing.T) {
		f := newFixture(t)
		f.writeChunk(t, "Test-Script.js", chunkSource)
		opts := testOptions()
		var seen string
		opts.Transformer = TransformerFunc(func(_ context.Context, source, name string) (string, error) {
			seen = source
			assert.Equal(t, "Test-Script.js", name)
			return "/*min*/" + source, nil
		})
		s := NewSession(opts)

		require.NoError(t, runBuild(t, s, f, []Chunk{{FileName: "Test-Script.js"}}))
		assert.NotContains(t, seen, StylePlaceholder)
		assert.True(t, strings.HasPrefix(f.read(t, "Test-Script.js"), "/*min*/"))
	})

	t.Run("failure skips chunk", func(t *testing.T) {
		f := newFixture(t)
		f.writeChunk(t, "Test-Script.js", chunkSource)
		opts := testOptions()
		opts.Transformer = TransformerFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("syntax error")
		})
		s := NewSession(opts)

		err := runBuild(t, s, f, []Chunk{{FileName: "Test-Script.js"}})
		var we *WriteError
		require.True(t, errors.As(err, &we))
		assert.Equal(t, "transform", we.Chunks[0].Step)
		assert.NoFileExists(t, filepath.Join(f.out, "Test-Script.user.js"))
		assert.Equal(t, chunkSource, f.read(t, "Test-Script.js"), "chunk left untouched")
	})
}

func TestWatchBuild(t *testing.T) {
	f := newFixture(t)
	f.writeChunk(t, "Test-Script.js", chunkSource)

	var opened []string
	opts := testOptions()
	opts.Open = true
	opts.Opener = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	s := NewSession(opts)
	ctx := context.Background()
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	require.NoError(t, s.ConfigResolved(ctx, Build{Root: f.root, OutDir: "dist", Watch: true}))
	srv := s.Server()
	require.NotNil(t, srv)
	assert.NotZero(t, srv.Port())
	assert.False(t, srv.Listening(), "server starts after the first write")

	chunks := []Chunk{{FileName: "Test-Script.js"}}
	s.GenerateBundle(chunks)
	require.NoError(t, s.WriteBundle(ctx, chunks))

	assert.True(t, srv.Listening())
	require.Len(t, opened, 1)
	assert.Equal(t, srv.URL()+"/Test-Script.proxy.user.js", opened[0])

	clientPath := filepath.Join(f.out, "hot-reload-Test-Script.js")
	chunkPath := filepath.Join(f.out, "Test-Script.js")
	client := f.read(t, "hot-reload-Test-Script.js")
	assert.Contains(t, client, srv.WebSocketURL())

	proxy := f.read(t, "Test-Script.proxy.user.js")
	assert.Contains(t, proxy, "// @require file://"+filepath.ToSlash(clientPath)+"\n")
	assert.Contains(t, proxy, "// @require file://"+filepath.ToSlash(chunkPath)+"\n")
	assert.NotContains(t, proxy, "GM_setValue(\"seen\"", "proxy carries no code")
	assert.Equal(t, grant.All(), grantLines(proxy))

	assert.Equal(t, grant.All(), grantLines(f.read(t, "Test-Script.user.js")))

	// A rebuild neither restarts the server nor opens another tab.
	f.writeChunk(t, "Test-Script.js", chunkSource)
	require.NoError(t, s.WriteBundle(ctx, chunks))
	assert.Len(t, opened, 1)

	conn, resp, err := websocket.DefaultDialer.Dial(srv.WebSocketURL(), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()
	require.Eventually(t, srv.Connected, time.Second, 10*time.Millisecond)

	s.BuildEnd()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"message":"reload"}`, string(data))
}

func TestWatchBuildAfterClose(t *testing.T) {
	f := newFixture(t)
	f.writeChunk(t, "Test-Script.js", chunkSource)
	s := NewSession(testOptions())
	ctx := context.Background()

	require.NoError(t, s.ConfigResolved(ctx, Build{Root: f.root, OutDir: "dist", Watch: true}))
	require.NoError(t, s.Close(ctx))
	require.Nil(t, s.Server())

	// A rebuild that finishes after shutdown still writes the script.
	chunks := []Chunk{{FileName: "Test-Script.js"}}
	s.GenerateBundle(chunks)
	require.NotPanics(t, func() {
		assert.NoError(t, s.WriteBundle(ctx, chunks))
		s.BuildEnd()
	})

	assert.FileExists(t, filepath.Join(f.out, "Test-Script.user.js"))
	assert.NoFileExists(t, filepath.Join(f.out, "Test-Script.proxy.user.js"))
}

func TestBuildEndOutsideWatchIsNoop(t *testing.T) {
	f := newFixture(t)
	s := NewSession(testOptions())
	require.NoError(t, s.ConfigResolved(context.Background(), Build{Root: f.root, OutDir: "dist"}))

	assert.NotPanics(t, s.BuildEnd)
	assert.NoError(t, s.Close(context.Background()))
}

func TestIsScriptChunk(t *testing.T) {
	assert.True(t, IsScriptChunk("a.js"))
	assert.False(t, IsScriptChunk("a.user.js"))
	assert.False(t, IsScriptChunk("a.css"))
	assert.False(t, IsScriptChunk("a.js.map"))
}
