package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/cmdtypes"
	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/grant"
	"github.com/opmodel/usbuild/internal/output"
)

// NewGrantsCmd creates the grants command.
func NewGrantsCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		allFlag   bool
		tableFlag bool
	)

	cmd := &cobra.Command{
		Use:   "grants [file...]",
		Short: "Show the @grant values a script needs",
		Long: `Infer @grant values from JavaScript files.

Each file is scanned for the userscript manager APIs it references. Use "-"
to read from stdin.

Examples:
  # Grants needed by a bundle
  usbuild grants dist/My-Script.js

  # The grant set used in dev mode
  usbuild grants --all

  # Every recognized API and the grant it needs
  usbuild grants --table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch {
			case tableFlag:
				return printRegistry(w)
			case allFlag:
				return printLines(w, grant.All())
			case len(args) == 0:
				return withExitCode(oerrors.NewValidationError("no input files", "", "", "pass one or more built scripts, or use --all or --table"))
			}

			for _, path := range args {
				src, err := readSource(cmd.InOrStdin(), path)
				if err != nil {
					return withExitCode(oerrors.NewNotFoundError(err.Error(), path, ""))
				}
				if len(args) > 1 {
					if _, err := fmt.Fprintln(w, output.StyleNoun.Render(path)+":"); err != nil {
						return err
					}
				}
				if err := printLines(w, grant.Infer(src)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Print the dev mode grant set")
	cmd.Flags().BoolVar(&tableFlag, "table", false, "Print the API to grant table")
	return cmd
}

func readSource(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	return string(b), err
}

func printLines(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func printRegistry(w io.Writer) error {
	entries := grant.Default().Entries()
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Identifier))
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, e.Identifier, output.StyleDim.Render(e.Permission)); err != nil {
			return err
		}
	}
	return nil
}
