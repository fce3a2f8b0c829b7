package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/tidytray/pkg/tidytray/config"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
)

const binaryName = "sysmon"

// quietAnnotation marks commands that own the terminal; console logging is
// switched off for them.
const quietAnnotation = "sysmon/quiet"

var (
	cfgFile string
	verbose bool

	v   *viper.Viper
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "sysmon",
		Short: "System monitor",
		Long: `Sysmon samples memory usage once per second and publishes each reading as a
memory-update event. Disks, temperatures and host details can be queried
once or over HTTP.

Examples:
  sysmon serve               # Serve queries and the event stream on 127.0.0.1:2025
  sysmon dash                # Terminal dashboard
  sysmon disks --format json # List disks as JSON
  sysmon info                # Platform and memory totals`,
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/tidytray/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug output on stderr")
}

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

	opts := cfg.Logging.Options(binaryName, verbose)
	_, opts.Quiet = cmd.Annotations[quietAnnotation]
	if err := logging.Init(opts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}
