package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/tidytray/pkg/tidytray/config"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
)

const binaryName = "tidytray"

var (
	cfgFile string
	verbose bool

	// v and cfg are populated by initialize before any RunE.
	v   *viper.Viper
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "tidytray",
		Short: "Recycle bin in the system tray",
		Long: `Tidytray keeps an icon in the notification area showing how much space the
recycle bin uses. Left click opens the bin; the menu can empty it.

Examples:
  tidytray                   # Run the tray icon
  tidytray size              # Print the current bin size
  tidytray empty             # Empty the bin without confirmation
  tidytray autostart status  # Check login registration`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
		RunE:              runTray,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/tidytray/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug output on stderr")
}

// initialize loads configuration and starts logging. It is the
// PersistentPreRunE hook for every command.
func initialize(cmd *cobra.Command, args []string) error {
	var err error
	v, err = config.New(cfgFile)
	if err != nil {
		return err
	}
	cfg, err = config.Decode(v)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.StateDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := logging.Init(cfg.Logging.Options(binaryName, verbose)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
