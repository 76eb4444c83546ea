package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/banner"
	"github.com/opmodel/usbuild/internal/cmdtypes"
	"github.com/opmodel/usbuild/internal/cmdutil"
	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/grant"
	"github.com/opmodel/usbuild/internal/identity"
)

// NewBannerCmd creates the banner command.
func NewBannerCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		fromFlag string
		devFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "banner [dir]",
		Short: "Print the metadata banner",
		Long: `Print the userscript metadata banner for the configured header.

Without --from the declared grants are printed as configured. With --from
the grants are resolved against a built script exactly as build does.

Examples:
  # Show the banner for the current project
  usbuild banner

  # Show the banner build would write for a bundle
  usbuild banner --from dist/My-Script.js`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := cmdutil.ResolveConfig(cmd, args, gc, nil)
			if err != nil {
				return withExitCode(err)
			}

			md := resolved.Header.Clone()
			md.Name = identity.Sanitize(md.Name)
			md.Normalize()

			policy := grant.Policy{
				Watch:    devFlag,
				Auto:     resolved.AutoGrantEnabled(),
				Declared: md.Grant,
			}
			switch {
			case fromFlag != "":
				src, err := os.ReadFile(fromFlag)
				if err != nil {
					return withExitCode(oerrors.NewNotFoundError(err.Error(), fromFlag, "build the script first with 'usbuild build'"))
				}
				md.Grant = policy.Resolve(string(src))
			case devFlag:
				md.Grant = policy.Resolve("")
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), banner.Render(md))
			return err
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Resolve grants against this built script")
	cmd.Flags().BoolVar(&devFlag, "dev", false, "Use the dev grant set")
	return cmd
}
