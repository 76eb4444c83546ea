// Package pipeline assembles bundler output into installable userscripts.
//
// A Session is driven by the host bundler's lifecycle in this order:
//
//  1. ConfigResolved: resolve paths, sanitize the script name, normalize the
//     metadata lists and, in watch mode, reserve the reload port.
//  2. Transform: capture stylesheets and mark the entry module.
//  3. GenerateBundle: merge the stylesheets that landed in each chunk.
//  4. WriteBundle: patch every script chunk and write its artifacts.
//  5. BuildEnd: tell the reload client to refresh (watch only).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/opmodel/usbuild/internal/banner"
	"github.com/opmodel/usbuild/internal/css"
	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/grant"
	"github.com/opmodel/usbuild/internal/header"
	"github.com/opmodel/usbuild/internal/identity"
	"github.com/opmodel/usbuild/internal/output"
	"github.com/opmodel/usbuild/internal/reload"
)

var (
	scriptFile = regexp.MustCompile(`\.js$`)
	userFile   = regexp.MustCompile(`\.user\.js$`)
)

// Session holds the state of one build invocation: the resolved metadata,
// the stylesheet buffer and, in watch mode, the reload server.
type Session struct {
	opts     Options
	declared []string

	build  Build
	outDir string
	entry  string
	meta   *header.Metadata
	stem   string

	styles *css.Aggregator
	log    *log.Logger

	// mu guards server, which Close may clear while a watch rebuild runs.
	mu     sync.Mutex
	server *reload.Server
}

// NewSession creates a session. Hooks other than ConfigResolved must not be
// called before ConfigResolved succeeds.
func NewSession(opts Options) *Session {
	return &Session{
		opts:     opts,
		declared: append([]string(nil), opts.Header.Grant...),
		styles:   css.NewAggregator(),
		log:      output.Logger(),
	}
}

// ConfigResolved records the bundler configuration and prepares the
// metadata. In watch mode it also binds the reload server's port, once.
func (s *Session) ConfigResolved(_ context.Context, b Build) error {
	s.build = b
	s.outDir = resolvePath(b.Root, b.OutDir)
	s.entry = resolvePath(b.Root, s.opts.Entry)

	meta := s.opts.Header.Clone()
	meta.Name = identity.Sanitize(meta.Name)
	if meta.Name == "" {
		return oerrors.NewValidationError(
			fmt.Sprintf("script name %q is empty once unsafe characters are removed", s.opts.Header.Name),
			"", "header.name", "use letters, digits or spaces in the script name")
	}
	meta.Normalize()
	s.meta = meta
	s.stem = identity.FileStem(meta.Name)
	s.log = output.ScriptLogger(meta.Name)

	if !b.Watch {
		return nil
	}

	// Dev grants ignore the source, so the proxy written before the first
	// chunk already carries them.
	s.meta.Grant = s.policy().Resolve("")

	s.mu.Lock()
	if s.server == nil {
		s.server = reload.NewServer(s.outDir)
	}
	srv := s.server
	s.mu.Unlock()

	if err := srv.Reserve(s.opts.Port); err != nil {
		return err
	}
	s.log.Debug("reload port reserved", "port", srv.Port())
	return nil
}

// Transform rewrites one module's source as the bundler loads it.
// Stylesheets become JS modules exporting their text, followed by the style
// module marker; the entry module gets the style placeholder appended.
func (s *Session) Transform(src, path string) string {
	code := src
	if css.IsStyle(path) {
		code = s.styles.Add(src, path) + StyleModuleMarker + ";\n"
	}
	if s.IsEntry(path) {
		code = src + "\n" + StylePlaceholder + ";\n"
	}
	return code
}

// IsEntry reports whether path is the configured entry module.
func (s *Session) IsEntry(path string) bool {
	if s.entry == "" {
		return false
	}
	return filepath.Clean(path) == s.entry
}

// GenerateBundle merges the stylesheets of every chunk that has any.
func (s *Session) GenerateBundle(chunks []Chunk) {
	// Rebuilds keep the recorded modules but not the last stylesheet.
	s.styles.Merge(nil)
	for _, c := range chunks {
		var styles []string
		for _, m := range c.Modules {
			if css.IsStyle(m) {
				styles = append(styles, m)
			}
		}
		if len(styles) == 0 {
			continue
		}
		merged := s.styles.Merge(styles)
		s.log.Debug("stylesheets merged", "chunk", c.FileName, "modules", len(styles), "bytes", len(merged))
	}
}

// WriteBundle assembles every script chunk in bundler order. A chunk that
// fails is logged and skipped; the failures are returned together as a
// *WriteError after the rest have been written.
//
// In watch mode the reload server is started the first time through and the
// proxy script is opened if configured. Otherwise the server, if any, is
// closed.
func (s *Session) WriteBundle(ctx context.Context, chunks []Chunk) error {
	var failed []*ChunkError
	for _, c := range chunks {
		if !IsScriptChunk(c.FileName) {
			output.Println(output.FormatArtifactLine(c.FileName, output.StatusSkipped))
			continue
		}
		if err := s.writeChunk(ctx, c); err != nil {
			var ce *ChunkError
			if !errors.As(err, &ce) {
				ce = &ChunkError{FileName: c.FileName, Step: "assemble", Err: err}
			}
			s.log.Error("chunk skipped", "chunk", c.FileName, "step", ce.Step, "error", ce.Err)
			output.Println(output.FormatArtifactLine(c.FileName, output.StatusFailed))
			failed = append(failed, ce)
		}
	}

	if s.build.Watch {
		if err := s.serve(); err != nil {
			return err
		}
	} else if err := s.Close(ctx); err != nil {
		s.log.Warn("closing dev server", "error", err)
	}

	if len(failed) > 0 {
		return &WriteError{Chunks: failed}
	}
	return nil
}

// BuildEnd notifies the reload client after a watch build.
func (s *Session) BuildEnd() {
	srv := s.Server()
	if !s.build.Watch || srv == nil {
		return
	}
	if srv.Notify() {
		s.log.Info("reload sent")
	}
}

// Close stops the reload server if one was started.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Close(ctx)
}

// Metadata returns a copy of the current metadata record, including the
// grants computed by the last WriteBundle.
func (s *Session) Metadata() *header.Metadata {
	if s.meta == nil {
		return nil
	}
	return s.meta.Clone()
}

// Stem returns the file stem shared by all artifacts.
func (s *Session) Stem() string {
	return s.stem
}

// OutDir returns the resolved output directory.
func (s *Session) OutDir() string {
	return s.outDir
}

// Entry returns the resolved entry module path.
func (s *Session) Entry() string {
	return s.entry
}

// Server returns the reload server, or nil outside watch mode.
func (s *Session) Server() *reload.Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server
}

// IsScriptChunk reports whether a bundler output is a script chunk to
// assemble. Already assembled user scripts are skipped.
func IsScriptChunk(fileName string) bool {
	return scriptFile.MatchString(fileName) && !userFile.MatchString(fileName)
}

func (s *Session) writeChunk(ctx context.Context, c Chunk) error {
	outPath := filepath.Join(s.outDir, c.FileName)

	raw, err := os.ReadFile(outPath)
	if err != nil {
		return &ChunkError{FileName: c.FileName, Step: "read", Err: err}
	}
	source := string(raw)

	if s.build.Watch {
		if err := s.writeProxy(ctx, outPath); err != nil {
			return &ChunkError{FileName: c.FileName, Step: "proxy", Err: err}
		}
	}

	source = strings.ReplaceAll(source, StyleModuleMarker, "void 0")
	source = strings.Replace(source, StylePlaceholder, s.styles.Inject(), 1)
	source, err = s.transform(ctx, source, c.FileName)
	if err != nil {
		return &ChunkError{FileName: c.FileName, Step: "transform", Err: err}
	}

	policy := s.policy()
	s.meta.Grant = policy.Resolve(source)
	s.log.Debug("grants resolved", "mode", policy.Mode(), "grants", strings.Join(s.meta.Grant, ","))

	if err := writeArtifact(outPath, source); err != nil {
		return &ChunkError{FileName: c.FileName, Step: "write chunk", Err: err}
	}
	userPath := filepath.Join(s.outDir, identity.UserFile(s.stem))
	if err := writeArtifact(userPath, banner.Prepend(s.meta, source)); err != nil {
		return &ChunkError{FileName: c.FileName, Step: "write user script", Err: err}
	}

	output.Println(output.FormatArtifactLine(s.rel(outPath), output.StatusWritten))
	output.Println(output.FormatArtifactLine(s.rel(userPath), output.StatusWritten))
	return nil
}

// writeProxy writes the reload client and the proxy script that requires it
// together with the chunk from disk.
func (s *Session) writeProxy(ctx context.Context, chunkPath string) error {
	srv := s.Server()
	if srv == nil {
		s.log.Debug("dev server closed, proxy not written")
		return nil
	}
	clientName := identity.ReloadClient(s.stem)
	clientPath := filepath.Join(s.outDir, clientName)

	client, err := s.transform(ctx, reload.ClientScript(srv.WebSocketURL()), clientName)
	if err != nil {
		return err
	}
	if err := writeArtifact(clientPath, client); err != nil {
		return err
	}

	proxy := s.meta.WithRequire("file://"+filepath.ToSlash(clientPath), "file://"+filepath.ToSlash(chunkPath))
	proxyPath := filepath.Join(s.outDir, identity.ProxyFile(s.stem))
	if err := writeArtifact(proxyPath, banner.Render(proxy)+"\n"); err != nil {
		return err
	}
	output.Println(output.FormatArtifactLine(s.rel(proxyPath), output.StatusWritten))
	return nil
}

// serve starts the reload server on the first watch build and opens the
// proxy script if configured.
func (s *Session) serve() error {
	srv := s.Server()
	if srv == nil {
		return nil
	}
	started, err := srv.Serve()
	if err != nil || !started {
		return err
	}

	s.log.Info("Running at " + output.FormatLink(srv.URL()))
	if !s.opts.Open || s.opts.Opener == nil {
		return nil
	}
	link := srv.URL() + "/" + identity.ProxyFile(s.stem)
	if err := s.opts.Opener(link); err != nil {
		s.log.Warn("could not open browser", "url", link, "error", err)
	}
	return nil
}

func (s *Session) transform(ctx context.Context, source, name string) (string, error) {
	if s.opts.Transformer == nil {
		return source, nil
	}
	return s.opts.Transformer.Transform(ctx, source, name)
}

func (s *Session) policy() grant.Policy {
	return grant.Policy{
		Watch:    s.build.Watch,
		Auto:     s.opts.AutoGrant,
		Declared: s.declared,
		Registry: s.opts.Registry,
	}
}

// rel shortens path for display; it falls back to path.
func (s *Session) rel(path string) string {
	root := s.build.Root
	if root == "" {
		return path
	}
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func writeArtifact(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
