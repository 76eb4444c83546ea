// Package header defines the userscript metadata record rendered into the
// banner of every built script.
package header

import "github.com/opmodel/usbuild/internal/listutil"

// Metadata is the userscript metadata record. Single-valued fields are
// strings; list-valued fields repeat their key once per element in the
// rendered banner.
type Metadata struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name" hcl:"name" validate:"required"`
	Namespace   string `json:"namespace,omitempty" yaml:"namespace,omitempty" mapstructure:"namespace" hcl:"namespace,optional"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version" hcl:"version,optional"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description" hcl:"description,optional"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty" mapstructure:"author" hcl:"author,optional"`
	Homepage    string `json:"homepage,omitempty" yaml:"homepage,omitempty" mapstructure:"homepage" hcl:"homepage,optional"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon" hcl:"icon,optional"`
	UpdateURL   string `json:"updateURL,omitempty" yaml:"updateURL,omitempty" mapstructure:"updateURL" hcl:"update_url,optional"`
	DownloadURL string `json:"downloadURL,omitempty" yaml:"downloadURL,omitempty" mapstructure:"downloadURL" hcl:"download_url,optional"`
	SupportURL  string `json:"supportURL,omitempty" yaml:"supportURL,omitempty" mapstructure:"supportURL" hcl:"support_url,optional"`
	RunAt       string `json:"runAt,omitempty" yaml:"runAt,omitempty" mapstructure:"runAt" hcl:"run_at,optional" validate:"omitempty,oneof=document-start document-body document-end document-idle context-menu"`
	NoFrames    bool   `json:"noframes,omitempty" yaml:"noframes,omitempty" mapstructure:"noframes" hcl:"noframes,optional"`

	Match        []string `json:"match,omitempty" yaml:"match,omitempty" mapstructure:"match" hcl:"match,optional"`
	Include      []string `json:"include,omitempty" yaml:"include,omitempty" mapstructure:"include" hcl:"include,optional"`
	ExcludeMatch []string `json:"excludeMatch,omitempty" yaml:"excludeMatch,omitempty" mapstructure:"excludeMatch" hcl:"exclude_match,optional"`
	Exclude      []string `json:"exclude,omitempty" yaml:"exclude,omitempty" mapstructure:"exclude" hcl:"exclude,optional"`
	Require      []string `json:"require,omitempty" yaml:"require,omitempty" mapstructure:"require" hcl:"require,optional"`
	Resource     []string `json:"resource,omitempty" yaml:"resource,omitempty" mapstructure:"resource" hcl:"resource,optional"`
	Connect      []string `json:"connect,omitempty" yaml:"connect,omitempty" mapstructure:"connect" hcl:"connect,optional"`
	Grant        []string `json:"grant,omitempty" yaml:"grant,omitempty" mapstructure:"grant" hcl:"grant,optional"`
	Antifeature  []string `json:"antifeature,omitempty" yaml:"antifeature,omitempty" mapstructure:"antifeature" hcl:"antifeature,optional"`
}

// Normalize removes duplicate entries from every list field, keeping the
// first occurrence of each value.
func (m *Metadata) Normalize() {
	for _, l := range m.lists() {
		*l = listutil.Unique(*l)
	}
}

// Clone returns a deep copy of m.
func (m *Metadata) Clone() *Metadata {
	c := *m
	for _, l := range c.lists() {
		if *l != nil {
			*l = append([]string(nil), (*l)...)
		}
	}
	return &c
}

// WithRequire returns a copy of m whose require list is extended with extra.
func (m *Metadata) WithRequire(extra ...string) *Metadata {
	c := m.Clone()
	c.Require = listutil.Unique(listutil.Concat(c.Require, extra))
	return c
}

func (m *Metadata) lists() []*[]string {
	return []*[]string{
		&m.Match,
		&m.Include,
		&m.ExcludeMatch,
		&m.Exclude,
		&m.Require,
		&m.Resource,
		&m.Connect,
		&m.Grant,
		&m.Antifeature,
	}
}
