// Package bundler drives esbuild and feeds its lifecycle into an assembly
// session.
package bundler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/evanw/esbuild/pkg/api"

	"github.com/opmodel/usbuild/internal/output"
	"github.com/opmodel/usbuild/internal/pipeline"
)

const (
	pluginName = "usbuild"

	// shutdownTimeout bounds how long Watch waits for the dev server to
	// drain after the context is cancelled.
	shutdownTimeout = 5 * time.Second
)

var loaders = map[string]api.Loader{
	".js":  api.LoaderJS,
	".mjs": api.LoaderJS,
	".cjs": api.LoaderJS,
	".jsx": api.LoaderJSX,
	".ts":  api.LoaderTS,
	".mts": api.LoaderTS,
	".cts": api.LoaderTS,
	".tsx": api.LoaderTSX,
}

// Options configures the esbuild invocation.
type Options struct {
	// Minify minifies the bundle as esbuild emits it. Post-processing
	// minification is the session transformer's job.
	Minify bool

	// Target is the JS language target. Defaults to ES2020.
	Target api.Target
}

// Runner builds the entry module with esbuild and hands every result to a
// pipeline.Session.
type Runner struct {
	session *pipeline.Session
	build   pipeline.Build
	opts    Options
	log     *log.Logger

	// ctx is the context of the current Build or Watch call, used by the
	// on-end callback which esbuild invokes without one.
	ctx context.Context

	// lastErr is the result of the most recent on-end callback.
	lastErr error
}

// NewRunner creates a Runner for session. b.Watch is set by Build and Watch.
func NewRunner(session *pipeline.Session, b pipeline.Build, opts Options) *Runner {
	if opts.Target == api.DefaultTarget {
		opts.Target = api.ES2020
	}
	return &Runner{
		session: session,
		build:   b,
		opts:    opts,
		log:     output.Logger(),
	}
}

// Build runs one production build and assembles its output.
func (r *Runner) Build(ctx context.Context) error {
	r.ctx = ctx
	r.build.Watch = false
	if err := r.session.ConfigResolved(ctx, r.build); err != nil {
		return err
	}

	result := api.Build(r.buildOptions())
	if len(result.Errors) > 0 {
		return messagesError("esbuild reported errors", result.Errors)
	}
	return r.lastErr
}

// Watch builds, then rebuilds on every change until ctx is cancelled. The
// reload server is closed on return.
func (r *Runner) Watch(ctx context.Context) error {
	r.ctx = ctx
	r.build.Watch = true
	if err := r.session.ConfigResolved(ctx, r.build); err != nil {
		return err
	}

	bctx, cerr := api.Context(r.buildOptions())
	if cerr != nil {
		return messagesError("esbuild context could not be created", cerr.Errors)
	}

	if err := bctx.Watch(api.WatchOptions{}); err != nil {
		bctx.Dispose()
		return fmt.Errorf("starting watch: %w", err)
	}
	r.log.Info("watching for changes", "entry", r.session.Entry())

	<-ctx.Done()
	r.log.Debug("watch stopped", "reason", ctx.Err())

	// Dispose waits for a rebuild in flight, so the session is idle before
	// the server goes away.
	bctx.Dispose()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return r.session.Close(shutdownCtx)
}

func (r *Runner) buildOptions() api.BuildOptions {
	minify := r.opts.Minify
	return api.BuildOptions{
		AbsWorkingDir:     r.build.Root,
		EntryPoints:       []string{r.session.Entry()},
		EntryNames:        r.session.Stem(),
		Outdir:            r.session.OutDir(),
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Format:            api.FormatIIFE,
		Platform:          api.PlatformBrowser,
		Target:            r.opts.Target,
		Charset:           api.CharsetUTF8,
		LogLevel:          api.LogLevelSilent,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		Plugins:           []api.Plugin{r.plugin()},
	}
}

// plugin wires the session hooks into esbuild: stylesheets and the entry
// module go through Session.Transform as they load, and every finished build
// is written and assembled in the on-end callback.
func (r *Runner) plugin() api.Plugin {
	return api.Plugin{
		Name: pluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `\.css$`}, r.resolveStyle(build))
			build.OnLoad(api.OnLoadOptions{Filter: `\.css$`, Namespace: "file"}, r.loadStyle)
			build.OnLoad(api.OnLoadOptions{
				Filter:    "^" + regexp.QuoteMeta(r.session.Entry()) + "$",
				Namespace: "file",
			}, r.loadEntry)
			build.OnEnd(r.onEnd)
		},
	}
}

// styleLookup marks resolve calls made by resolveStyle itself.
type styleLookup struct{}

// resolveStyle resolves stylesheets the usual way but flags them as having
// side effects, so a package declaring "sideEffects": false cannot drop a
// stylesheet that is imported only for effect.
func (r *Runner) resolveStyle(build api.PluginBuild) func(api.OnResolveArgs) (api.OnResolveResult, error) {
	return func(args api.OnResolveArgs) (api.OnResolveResult, error) {
		if _, ok := args.PluginData.(styleLookup); ok {
			return api.OnResolveResult{}, nil
		}
		res := build.Resolve(args.Path, api.ResolveOptions{
			Importer:   args.Importer,
			Namespace:  args.Namespace,
			ResolveDir: args.ResolveDir,
			Kind:       args.Kind,
			PluginData: styleLookup{},
		})
		if len(res.Errors) > 0 {
			return api.OnResolveResult{Errors: res.Errors, Warnings: res.Warnings}, nil
		}
		return api.OnResolveResult{
			Path:        res.Path,
			Namespace:   res.Namespace,
			Suffix:      res.Suffix,
			External:    res.External,
			SideEffects: api.SideEffectsTrue,
			Warnings:    res.Warnings,
		}, nil
	}
}

func (r *Runner) loadStyle(args api.OnLoadArgs) (api.OnLoadResult, error) {
	text, err := os.ReadFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, err
	}
	code := r.session.Transform(string(text), args.Path)
	return api.OnLoadResult{Contents: &code, Loader: api.LoaderJS}, nil
}

func (r *Runner) loadEntry(args api.OnLoadArgs) (api.OnLoadResult, error) {
	text, err := os.ReadFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, err
	}
	code := r.session.Transform(string(text), args.Path)
	loader, ok := loaders[strings.ToLower(filepath.Ext(args.Path))]
	if !ok {
		loader = api.LoaderJS
	}
	return api.OnLoadResult{Contents: &code, Loader: loader}, nil
}

// onEnd runs the generate, write and build-end stages of the session for one
// finished build.
func (r *Runner) onEnd(result *api.BuildResult) (api.OnEndResult, error) {
	r.lastErr = nil
	if len(result.Errors) > 0 {
		for _, msg := range api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage}) {
			r.log.Error(strings.TrimSpace(msg))
		}
		return api.OnEndResult{}, nil
	}
	for _, msg := range api.FormatMessages(result.Warnings, api.FormatMessagesOptions{Kind: api.WarningMessage}) {
		r.log.Warn(strings.TrimSpace(msg))
	}

	outputs, err := ParseMetafile(result.Metafile)
	if err != nil {
		r.lastErr = err
		return api.OnEndResult{}, nil
	}
	chunks := r.chunks(outputs)
	r.session.GenerateBundle(chunks)

	if err := r.writeOutputFiles(result.OutputFiles); err != nil {
		r.lastErr = err
		r.log.Error("writing bundle", "error", err)
		return api.OnEndResult{}, nil
	}

	if err := r.session.WriteBundle(r.ctx, chunks); err != nil {
		// Failed chunks were already logged by the session.
		r.lastErr = err
	}
	r.session.BuildEnd()
	return api.OnEndResult{}, nil
}

// chunks converts metafile outputs into session chunks: file names relative
// to the output directory, module paths absolute.
func (r *Runner) chunks(outputs []MetafileOutput) []pipeline.Chunk {
	outDir := r.session.OutDir()
	chunks := make([]pipeline.Chunk, 0, len(outputs))
	for _, o := range outputs {
		name, err := filepath.Rel(outDir, abs(r.build.Root, o.Path))
		if err != nil {
			name = filepath.Base(o.Path)
		}
		modules := make([]string, len(o.Inputs))
		for i, in := range o.Inputs {
			modules[i] = abs(r.build.Root, in)
		}
		chunks = append(chunks, pipeline.Chunk{FileName: filepath.ToSlash(name), Modules: modules})
	}
	return chunks
}

func (r *Runner) writeOutputFiles(files []api.OutputFile) error {
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(f.Path, f.Contents, 0o644); err != nil {
			return err
		}
		r.log.Debug("bundle written", "path", f.Path, "bytes", len(f.Contents))
	}
	return nil
}
