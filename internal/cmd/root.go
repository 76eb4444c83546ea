// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/usbuild/internal/cmdtypes"
	"github.com/opmodel/usbuild/internal/config"
	"github.com/opmodel/usbuild/internal/output"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool
)

// NewRootCmd creates the root command for the usbuild CLI.
func NewRootCmd() *cobra.Command {
	gc := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "usbuild",
		Short: "Userscript build tool",
		Long: `usbuild bundles a script with esbuild and assembles it into an installable
userscript: a metadata banner with inferred @grant values, injected styles,
and in dev mode a proxy script that reloads the page on every rebuild.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd, gc)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: USBUILD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	// Add subcommands
	rootCmd.AddCommand(NewInitCmd(gc))
	rootCmd.AddCommand(NewBuildCmd(gc))
	rootCmd.AddCommand(NewDevCmd(gc))
	rootCmd.AddCommand(NewBannerCmd(gc))
	rootCmd.AddCommand(NewGrantsCmd(gc))
	rootCmd.AddCommand(NewConfigCmd(gc))
	rootCmd.AddCommand(NewVersionCmd(gc))

	return rootCmd
}

// initializeGlobals sets up logging and records the global flags.
func initializeGlobals(cmd *cobra.Command, gc *cmdtypes.GlobalConfig) error {
	gc.ConfigFlag = configFlag
	gc.Verbose = verboseFlag

	// Peek at the config file so log.timestamps can apply. Commands load
	// and validate it properly themselves.
	var fileCfg *config.Config
	path := configFlag
	if path == "" {
		found, err := config.FindConfigFile(".")
		if err != nil {
			output.Debug("config lookup error", "error", err)
		}
		path = found
	}
	if path != "" {
		gc.ConfigPath = path
		loaded, err := config.NewLoader().Load(path)
		if err != nil {
			// Don't fail here - allow commands that don't need config to work
			output.Debug("config load error", "error", err)
		}
		fileCfg = loaded
	}

	// Build LogConfig with precedence: flag > config > default(true)
	logCfg := output.LogConfig{
		Verbose: verboseFlag,
	}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if fileCfg != nil && fileCfg.Log.Timestamps != nil {
		logCfg.Timestamps = fileCfg.Log.Timestamps
	}
	// else: nil means SetupLogging defaults to true

	output.SetupLogging(logCfg)

	if verboseFlag {
		output.Debug("initializing CLI", "config", gc.ConfigPath)
	}
	return nil
}
