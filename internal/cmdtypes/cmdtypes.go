// Package cmdtypes provides shared types for the cmd package and its helpers.
// It is separate from internal/cmd so internal/cmdutil can use it without an
// import cycle.
package cmdtypes

// GlobalConfig holds CLI-wide settings resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every
// sub-command constructor.
type GlobalConfig struct {
	// ConfigFlag is the raw --config flag value.
	ConfigFlag string

	// ConfigPath is the config file that was found, or "" if none.
	ConfigPath string

	// Verbose is the --verbose flag value.
	Verbose bool
}
