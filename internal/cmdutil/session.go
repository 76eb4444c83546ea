package cmdutil

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/bundler"
	"github.com/opmodel/usbuild/internal/cmdtypes"
	"github.com/opmodel/usbuild/internal/config"
	"github.com/opmodel/usbuild/internal/output"
	"github.com/opmodel/usbuild/internal/pipeline"
)

// ResolveConfig loads the configuration for a build command. The optional
// first argument is the project directory searched for a config file.
func ResolveConfig(cmd *cobra.Command, args []string, gc *cmdtypes.GlobalConfig, flags *BuildFlags) (*config.Resolved, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	var o config.Overrides
	if flags != nil {
		o = flags.Overrides(cmd)
	}

	resolved, err := config.Resolve(config.ResolveOptions{
		ConfigFlag: gc.ConfigFlag,
		Dir:        dir,
		Overrides:  o,
	})
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(resolved.Root)
	if err != nil {
		return nil, err
	}
	// esbuild reports real paths; the entry filter must match them.
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}
	resolved.Root = root

	output.Debug("config loaded", "path", resolved.ConfigPath, "root", resolved.Root)
	config.LogResolvedValues(resolved.Values)
	return resolved, nil
}

// NewSession creates the assembly session for a resolved configuration.
// opener is used in watch mode when server.open is enabled.
func NewSession(cfg *config.Resolved, opener pipeline.Opener) *pipeline.Session {
	return pipeline.NewSession(pipeline.Options{
		Header:      cfg.Header,
		Entry:       cfg.Entry,
		AutoGrant:   cfg.AutoGrantEnabled(),
		Port:        cfg.Server.Port,
		Open:        cfg.OpenEnabled(),
		Transformer: bundler.NewMinifier(cfg.Minify),
		Opener:      opener,
	})
}

// NewRunner creates the esbuild runner driving session.
func NewRunner(cfg *config.Resolved, session *pipeline.Session) *bundler.Runner {
	return bundler.NewRunner(session, pipeline.Build{
		Root:   cfg.Root,
		OutDir: cfg.OutDir,
	}, bundler.Options{})
}
