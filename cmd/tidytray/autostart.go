package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidytray/pkg/tidytray/autostart"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage login autostart",
	Long: `Manage the entry that starts tidytray at login.

On Windows the entry is a value under
HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Run.
Elsewhere it is an XDG autostart desktop file.`,
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether this executable is registered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := autostartManager().Check()
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(cmd.OutOrStdout(), "enabled")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "disabled")
		}
		return nil
	},
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Register this executable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return autostartManager().Enable()
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Remove the registration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return autostartManager().Disable()
	},
}

func init() {
	autostartCmd.AddCommand(autostartStatusCmd, autostartEnableCmd, autostartDisableCmd)
	rootCmd.AddCommand(autostartCmd)
}

func autostartManager() *autostart.Manager {
	return autostart.New(autostart.DefaultStore(), cfg.Autostart.Name)
}
