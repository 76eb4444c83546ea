package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/cmdtypes"
	"github.com/opmodel/usbuild/internal/cmdutil"
	"github.com/opmodel/usbuild/internal/output"
)

// NewBuildCmd creates the build command.
func NewBuildCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	var bf cmdutil.BuildFlags

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Build the userscript",
		Long: `Bundle the entry module and assemble the installable userscript.

Writes to the output directory:
  <name>.js        the bundled script with styles injected
  <name>.user.js   the metadata banner followed by the script

@grant values are inferred from the APIs the bundled script references,
unless autoGrant is disabled in which case the declared grants plus
GM_addStyle and GM_info are used.

Arguments:
  dir    Project directory searched for usbuild.yaml (default: current directory)

Examples:
  # Build the project in the current directory
  usbuild build

  # Build minified into another directory
  usbuild build ./my-script --minify --out-dir ./release`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, gc, &bf)
		},
	}

	bf.AddTo(cmd)
	return cmd
}

func runBuild(cmd *cobra.Command, args []string, gc *cmdtypes.GlobalConfig, bf *cmdutil.BuildFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resolved, err := cmdutil.ResolveConfig(cmd, args, gc, bf)
	if err != nil {
		return withExitCode(err)
	}

	session := cmdutil.NewSession(resolved, nil)
	runner := cmdutil.NewRunner(resolved, session)

	build := func() error { return runner.Build(ctx) }
	if gc.Verbose {
		err = build()
	} else {
		err = output.RunWithSpinner(ctx, build, output.WithTitle("Building "+resolved.Header.Name))
	}
	if err != nil {
		return withExitCode(err)
	}

	output.Println(output.FormatCheckmark("Built " + output.StyleNoun.Render(session.Metadata().Name)))
	return nil
}
