package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/cmdtypes"
	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/output"
	"github.com/opmodel/usbuild/internal/templates"
)

// NewInitCmd creates the init command.
func NewInitCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		templateFlag string
		nameFlag     string
		matchFlag    string
		forceFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new userscript project",
		Long: `Create a new userscript project from a template.

The script name defaults to the directory name in title case. The project
contains a usbuild.yaml and an entry module under src/.

Templates:
` + templateList() + `

Examples:
  # Create a project in ./dark-mode
  usbuild init dark-mode

  # Use the styled template and a custom @match
  usbuild init badge --template styled --match "*://*.example.com/*"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(templates.GenerateOptions{
				TargetDir:    dir,
				TemplateName: templateFlag,
				Name:         nameFlag,
				Match:        matchFlag,
				Force:        forceFlag,
			})
		},
	}

	cmd.Flags().StringVarP(&templateFlag, "template", "t", templates.DefaultTemplateName,
		"Project template ("+strings.Join(templates.Names(), ", ")+")")
	cmd.Flags().StringVar(&nameFlag, "name", "",
		"Script name (default: derived from the directory name)")
	cmd.Flags().StringVar(&matchFlag, "match", "",
		"Initial @match pattern")
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false,
		"Overwrite files in a non-empty directory")

	return cmd
}

func runInit(opts templates.GenerateOptions) error {
	result, err := templates.NewGenerator(opts).Generate()
	if err != nil {
		return withExitCode(oerrors.Wrap(oerrors.ErrValidation, err.Error()))
	}

	output.Println(output.FormatCheckmark(fmt.Sprintf("Created %s from template %s",
		output.StyleNoun.Render(result.Name), result.TemplateName)))
	for _, f := range result.Files {
		output.Println("  " + f)
	}
	output.Println("")
	output.Println("Next: cd " + result.TargetDir + " && usbuild dev")

	return nil
}

func templateList() string {
	var b strings.Builder
	for i, t := range templates.List() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %-8s %s", t.Name, t.Description)
	}
	return b.String()
}
