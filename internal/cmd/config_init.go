package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/cmdtypes"
	"github.com/opmodel/usbuild/internal/config"
	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/output"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter configuration",
		Long: `Write a starter usbuild.yaml into the project directory.

The file declares the entry module, the output directory, dev server
settings and the userscript header. Edit the header before building.

Examples:
  # Initialize the current directory
  usbuild config init

  # Overwrite an existing configuration
  usbuild config init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runConfigInit(dir, forceFlag)
		},
	}

	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(dir string, force bool) error {
	path := config.DefaultConfigFile(dir)

	// Check if config exists
	if _, err := os.Stat(path); err == nil && !force {
		return withExitCode(&oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		})
	}

	if err := config.WriteDefault(path, config.DefaultConfig()); err != nil {
		return withExitCode(oerrors.Wrap(oerrors.ErrValidation, err.Error()))
	}

	output.Println(output.FormatCheckmark("Configuration initialized at " + output.StyleNoun.Render(path)))
	output.Println("")
	output.Println("Next: set header.name and entry, then run 'usbuild build'")
	output.Println("Validate with: usbuild config vet")

	return nil
}
