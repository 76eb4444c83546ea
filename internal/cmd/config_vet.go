package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/cmdtypes"
	"github.com/opmodel/usbuild/internal/cmdutil"
	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet [dir]",
		Short: "Validate configuration",
		Long: `Validate the usbuild configuration.

Checks performed:
  1. A config file exists (usbuild.yaml, .yml, .json or .hcl)
  2. The file parses and environment overrides apply
  3. Required fields are set and values are in range
  4. The entry module exists

The config path is resolved using precedence:
  --config flag > USBUILD_CONFIG env > usbuild.* in the project directory

Examples:
  # Validate the current project
  usbuild config vet

  # Validate a specific file
  usbuild config vet --config ./configs/usbuild.hcl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := cmdutil.ResolveConfig(cmd, args, gc, nil)
			if err != nil {
				return withExitCode(err)
			}

			entry := resolved.Entry
			if !filepath.IsAbs(entry) {
				entry = filepath.Join(resolved.Root, entry)
			}
			if _, err := os.Stat(entry); err != nil {
				return withExitCode(oerrors.NewNotFoundError(
					"entry module not found", entry,
					"Set 'entry' to the script's main module, relative to the project root."))
			}

			output.Println(output.FormatCheckmark("Config valid: " + output.StyleNoun.Render(resolved.ConfigPath)))
			return nil
		},
	}
}
