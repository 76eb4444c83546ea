// Package cmdutil provides shared command utilities for the build and dev
// commands. It centralizes flag group management, configuration resolution
// and session wiring.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/config"
)

// BuildFlags holds flags common to commands that assemble a script
// (build, dev).
type BuildFlags struct {
	OutDir    string
	Port      int
	Open      bool
	Minify    bool
	AutoGrant bool
}

// AddTo registers the build flags on the given cobra command.
func (f *BuildFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.OutDir, "out-dir", "",
		"Output directory (default: from config, env: USBUILD_OUT_DIR)")
	cmd.Flags().BoolVar(&f.Minify, "minify", false,
		"Minify the assembled script (env: USBUILD_MINIFY)")
	cmd.Flags().BoolVar(&f.AutoGrant, "auto-grant", true,
		"Infer @grant values from the built source (env: USBUILD_AUTO_GRANT)")
}

// AddServerTo registers the dev server flags on the given cobra command.
func (f *BuildFlags) AddServerTo(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.Port, "port", "p", 0,
		"Dev server port, 0 picks a free one (env: USBUILD_PORT)")
	cmd.Flags().BoolVar(&f.Open, "open", true,
		"Open the proxy script in a browser (env: USBUILD_OPEN)")
}

// Overrides returns the flags the user set explicitly. Flags left at their
// defaults do not override the config file or environment.
func (f *BuildFlags) Overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("out-dir") {
		o.OutDir = &f.OutDir
	}
	if changed("port") {
		o.Port = &f.Port
	}
	if changed("open") {
		o.Open = &f.Open
	}
	if changed("minify") {
		o.Minify = &f.Minify
	}
	if changed("auto-grant") {
		o.AutoGrant = &f.AutoGrant
	}
	return o
}
