// Package templates provides the project scaffolds for usbuild init.
package templates

// Template describes a project scaffold.
type Template struct {
	// Name is the template identifier (basic, styled).
	Name string

	// Description explains what the scaffold contains.
	Description string

	// Default indicates if this is the default template when --template is omitted.
	Default bool
}

// TemplateData holds the data passed to template rendering.
type TemplateData struct {
	// Name is the userscript name written to header.name.
	Name string

	// Namespace is written to header.namespace.
	Namespace string

	// Version is the initial version (hardcoded to 0.1.0).
	Version string

	// Match is the initial @match pattern.
	Match string
}

// File is one rendered scaffold file.
type File struct {
	// TargetPath is the path relative to the project directory.
	TargetPath string

	// Content is the rendered file content.
	Content []byte
}

// GenerateOptions configures project generation.
type GenerateOptions struct {
	// TargetDir is the directory to generate the project in.
	TargetDir string

	// TemplateName is the template to use.
	TemplateName string

	// Name overrides the script name derived from the directory.
	Name string

	// Match overrides the initial @match pattern.
	Match string

	// Force allows overwriting files in non-empty directories.
	Force bool
}

// GenerateResult contains the result of project generation.
type GenerateResult struct {
	// Files is the list of files created.
	Files []string

	// TemplateName is the template that was used.
	TemplateName string

	// TargetDir is the directory where files were created.
	TargetDir string

	// Name is the script name written to the config.
	Name string
}
