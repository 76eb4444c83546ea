package templates

import "fmt"

// DefaultTemplateName is the template used when --template is not specified.
const DefaultTemplateName = "basic"

// templates is the internal registry of available templates.
var templates = map[string]Template{
	"basic": {
		Name:        "basic",
		Description: "Config and a TypeScript entry module",
		Default:     true,
	},
	"styled": {
		Name:        "styled",
		Description: "Basic plus a stylesheet injected with GM_addStyle",
	},
}

// Get returns a template by name.
// Returns an error if the template is not found.
func Get(name string) (Template, error) {
	t, ok := templates[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q; valid templates: basic, styled", name)
	}
	return t, nil
}

// List returns all available templates.
func List() []Template {
	return []Template{
		templates["basic"],
		templates["styled"],
	}
}

// Names returns all template names.
func Names() []string {
	return []string{"basic", "styled"}
}
