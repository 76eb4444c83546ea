package templates

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/opmodel/usbuild/internal/output"
)

const (
	defaultNamespace = "https://example.com"
	defaultMatch     = "https://example.com/*"
	initialVersion   = "0.1.0"
)

// Generator handles project generation from templates.
type Generator struct {
	opts GenerateOptions
}

// NewGenerator creates a new generator with the given options.
func NewGenerator(opts GenerateOptions) *Generator {
	if opts.TemplateName == "" {
		opts.TemplateName = DefaultTemplateName
	}
	return &Generator{opts: opts}
}

// Generate writes a new project from a template.
func (g *Generator) Generate() (*GenerateResult, error) {
	tmpl, err := Get(g.opts.TemplateName)
	if err != nil {
		return nil, err
	}

	name := g.opts.Name
	if name == "" {
		abs, err := filepath.Abs(g.opts.TargetDir)
		if err != nil {
			return nil, fmt.Errorf("resolving target directory: %w", err)
		}
		name = DeriveScriptName(filepath.Base(abs))
	}
	if err := ValidateScriptName(name); err != nil {
		return nil, err
	}

	match := g.opts.Match
	if match == "" {
		match = defaultMatch
	}
	if err := ValidateMatchPattern(match); err != nil {
		return nil, err
	}

	if err := g.checkTargetDir(); err != nil {
		return nil, err
	}

	output.Debug("generating project",
		"template", tmpl.Name,
		"name", name,
		"target", g.opts.TargetDir)

	files, err := RenderTemplate(tmpl.Name, TemplateData{
		Name:      name,
		Namespace: defaultNamespace,
		Version:   initialVersion,
		Match:     match,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}

	created := make([]string, 0, len(files))
	for _, f := range files {
		targetPath := filepath.Join(g.opts.TargetDir, filepath.FromSlash(f.TargetPath))

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", f.TargetPath, err)
		}
		if !g.opts.Force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil, fmt.Errorf("file %s already exists; use --force to overwrite", targetPath)
			}
		}
		if err := os.WriteFile(targetPath, f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", targetPath, err)
		}

		output.Debug("created file", "path", f.TargetPath)
		created = append(created, f.TargetPath)
	}

	return &GenerateResult{
		Files:        created,
		TemplateName: tmpl.Name,
		TargetDir:    g.opts.TargetDir,
		Name:         name,
	}, nil
}

// checkTargetDir validates the target directory.
func (g *Generator) checkTargetDir() error {
	info, err := os.Stat(g.opts.TargetDir)
	if os.IsNotExist(err) {
		// Directory doesn't exist, will be created
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking target directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", g.opts.TargetDir)
	}

	entries, err := os.ReadDir(g.opts.TargetDir)
	if err != nil {
		return fmt.Errorf("reading target directory: %w", err)
	}
	if len(entries) > 0 && !g.opts.Force {
		return fmt.Errorf("directory %s is not empty; use --force to overwrite existing files", g.opts.TargetDir)
	}
	return nil
}
