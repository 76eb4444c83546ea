package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
)

//go:embed basic styled
var scaffolds embed.FS

// RenderTemplate renders every file of a template with data. Files ending in
// .tmpl are executed as text/template and lose the suffix; other files are
// copied as is.
func RenderTemplate(name string, data TemplateData) ([]File, error) {
	if _, err := Get(name); err != nil {
		return nil, err
	}

	var files []File
	err := fs.WalkDir(scaffolds, name, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := fs.ReadFile(scaffolds, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}
		rel := strings.TrimPrefix(p, name+"/")

		if strings.HasSuffix(rel, ".tmpl") {
			tmpl, err := template.New(path.Base(p)).Option("missingkey=error").Parse(string(content))
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", p, err)
			}
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return fmt.Errorf("executing template %s: %w", p, err)
			}
			content = buf.Bytes()
			rel = strings.TrimSuffix(rel, ".tmpl")
		}

		files = append(files, File{TargetPath: rel, Content: content})
		return nil
	})
	return files, err
}

// ListTemplateFiles returns the paths a template creates.
func ListTemplateFiles(name string) ([]string, error) {
	files, err := RenderTemplate(name, TemplateData{Name: "x", Namespace: "x", Version: "x", Match: "x"})
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.TargetPath
	}
	return paths, nil
}
