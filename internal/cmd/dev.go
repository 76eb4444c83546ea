package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/cmdtypes"
	"github.com/opmodel/usbuild/internal/cmdutil"
)

// NewDevCmd creates the dev command.
func NewDevCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	var bf cmdutil.BuildFlags

	cmd := &cobra.Command{
		Use:   "dev [dir]",
		Short: "Build on change and reload the page",
		Long: `Watch the entry module, rebuild on every change and reload the page.

In addition to the build artifacts, dev writes:
  <name>.proxy.user.js     install this once; it requires the files below from disk
  hot-reload-<name>.js     reconnecting client that reloads the page

A local server serves the output directory and pushes a reload message to
the page after every rebuild. Stop with Ctrl-C.

Examples:
  # Start the dev loop on a random free port
  usbuild dev

  # Use a fixed port and do not open a browser
  usbuild dev --port 4321 --open=false`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(cmd, args, gc, &bf)
		},
	}

	bf.AddTo(cmd)
	bf.AddServerTo(cmd)
	return cmd
}

func runDev(cmd *cobra.Command, args []string, gc *cmdtypes.GlobalConfig, bf *cmdutil.BuildFlags) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolved, err := cmdutil.ResolveConfig(cmd, args, gc, bf)
	if err != nil {
		return withExitCode(err)
	}

	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	session := cmdutil.NewSession(resolved, browser.OpenURL)

	return withExitCode(cmdutil.NewRunner(resolved, session).Watch(ctx))
}
