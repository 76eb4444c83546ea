package config

import (
	"path/filepath"
	"strconv"

	"github.com/opmodel/usbuild/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceConfig indicates value came from the config file or environment.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue records the final value of one key and where it came from.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource
	// Shadowed holds the value overridden by a higher precedence source.
	Shadowed map[ConfigSource]string
}

// Overrides holds command-line flag values. nil pointers mean "not set".
type Overrides struct {
	OutDir    *string
	Port      *int
	Open      *bool
	Minify    *bool
	AutoGrant *bool
}

// ResolveOptions contains the inputs to Resolve.
type ResolveOptions struct {
	// ConfigFlag is the --config flag value (empty if not set).
	ConfigFlag string
	// Dir is searched for a config file when ConfigFlag is empty.
	Dir string
	// Overrides are applied on top of the loaded file.
	Overrides Overrides
}

// Resolved is a loaded, overridden and validated configuration.
type Resolved struct {
	*Config

	// ConfigPath is the file the configuration was loaded from.
	ConfigPath string

	// Values lists the resolution of flag-overridable keys.
	Values []ResolvedValue
}

// Resolve finds and loads the config file, applies flag overrides using
// precedence flag > env > file > default, and validates the result.
func Resolve(opts ResolveOptions) (*Resolved, error) {
	path := opts.ConfigFlag
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		found, err := FindConfigFile(dir)
		if err != nil {
			return nil, err
		}
		if found == "" {
			found = DefaultConfigFile(dir)
		}
		path = found
	}

	cfg, err := NewLoader().Load(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}

	r := &Resolved{Config: cfg, ConfigPath: path}
	r.apply(opts.Overrides)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Resolved) apply(o Overrides) {
	if o.OutDir != nil {
		r.record("outDir", *o.OutDir, r.OutDir)
		r.OutDir = *o.OutDir
	} else {
		r.record("outDir", "", r.OutDir)
	}

	if o.Port != nil {
		r.record("server.port", strconv.Itoa(*o.Port), strconv.Itoa(r.Server.Port))
		r.Server.Port = *o.Port
	}
	if o.Open != nil {
		r.record("server.open", strconv.FormatBool(*o.Open), strconv.FormatBool(r.OpenEnabled()))
		r.Server.Open = o.Open
	}
	if o.Minify != nil {
		r.record("minify", strconv.FormatBool(*o.Minify), strconv.FormatBool(r.Minify))
		r.Minify = *o.Minify
	}
	if o.AutoGrant != nil {
		r.record("autoGrant", strconv.FormatBool(*o.AutoGrant), strconv.FormatBool(r.AutoGrantEnabled()))
		r.AutoGrant = o.AutoGrant
	}
}

// record appends a ResolvedValue. An empty flag value means the config
// value stands.
func (r *Resolved) record(key, flagValue, configValue string) {
	if flagValue == "" {
		source := SourceConfig
		if key == "outDir" && configValue == DefaultOutDir {
			source = SourceDefault
		}
		r.Values = append(r.Values, ResolvedValue{Key: key, Value: configValue, Source: source})
		return
	}
	r.Values = append(r.Values, ResolvedValue{
		Key:      key,
		Value:    flagValue,
		Source:   SourceFlag,
		Shadowed: map[ConfigSource]string{SourceConfig: configValue},
	})
}

// OutPath returns the absolute output directory.
func (r *Resolved) OutPath() string {
	if filepath.IsAbs(r.OutDir) {
		return r.OutDir
	}
	return filepath.Join(r.Root, r.OutDir)
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
