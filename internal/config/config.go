// Package config provides configuration loading and management.
package config

import (
	"github.com/opmodel/usbuild/internal/header"
)

// ServerConfig contains dev reload server settings.
type ServerConfig struct {
	// Port is the port the dev server listens on. 0 picks a free port.
	// Env: USBUILD_PORT
	Port int `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port" hcl:"port,optional" validate:"gte=0,lte=65535"`

	// Open opens the proxy script in a browser once the server is listening.
	// Env: USBUILD_OPEN, Default: true
	Open *bool `json:"open,omitempty" yaml:"open,omitempty" mapstructure:"open" hcl:"open,optional"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty" mapstructure:"timestamps" hcl:"timestamps,optional"`
}

// Config represents the usbuild configuration file.
type Config struct {
	// Root is the project root. Relative paths resolve against it.
	// Default: directory of the config file.
	Root string `json:"root,omitempty" yaml:"root,omitempty" mapstructure:"root"`

	// Entry is the script entry module, relative to Root.
	Entry string `json:"entry" yaml:"entry" mapstructure:"entry" validate:"required"`

	// OutDir is the output directory, relative to Root.
	// Env: USBUILD_OUT_DIR, Default: dist
	OutDir string `json:"outDir,omitempty" yaml:"outDir,omitempty" mapstructure:"outDir"`

	// AutoGrant infers @grant values from the built source in production
	// builds. When false, declared grants plus the baseline helpers are used.
	// Env: USBUILD_AUTO_GRANT, Default: true
	AutoGrant *bool `json:"autoGrant,omitempty" yaml:"autoGrant,omitempty" mapstructure:"autoGrant"`

	// Minify minifies the built chunk and the reload client.
	// Env: USBUILD_MINIFY
	Minify bool `json:"minify,omitempty" yaml:"minify,omitempty" mapstructure:"minify"`

	// Server contains dev reload server settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty" mapstructure:"server"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty" mapstructure:"log"`

	// Header is the userscript metadata record.
	Header header.Metadata `json:"header" yaml:"header" mapstructure:"header"`
}

// DefaultOutDir is used when no output directory is configured.
const DefaultOutDir = "dist"

// DefaultConfig returns a Config with all default values populated.
// Used by `usbuild config init` to generate an initial config file.
func DefaultConfig() *Config {
	return &Config{
		Entry:     "src/index.ts",
		OutDir:    DefaultOutDir,
		AutoGrant: boolPtr(true),
		Server: ServerConfig{
			Open: boolPtr(true),
		},
		Header: header.Metadata{
			Name:      "My Script",
			Namespace: "https://example.com",
			Version:   "0.1.0",
			Match:     []string{"https://example.com/*"},
		},
	}
}

// AutoGrantEnabled reports whether grant inference is on (default true).
func (c *Config) AutoGrantEnabled() bool {
	return c.AutoGrant == nil || *c.AutoGrant
}

// OpenEnabled reports whether the proxy script should be opened in a
// browser in watch mode (default true).
func (c *Config) OpenEnabled() bool {
	return c.Server.Open == nil || *c.Server.Open
}

func boolPtr(b bool) *bool {
	return &b
}
