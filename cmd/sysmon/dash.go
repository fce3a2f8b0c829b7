package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidytray/cmd/sysmon/tui"
	"github.com/jamesainslie/tidytray/pkg/monitor/broadcaster"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Live terminal dashboard",
	Long: `Dash shows memory usage, disks and temperatures, updated on every
memory-update. Press r to reload disks and temperatures, q to quit.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{quietAnnotation: ""},
	RunE:        runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

func runDash(cmd *cobra.Command, args []string) error {
	provider := sysinfo.New()
	b := broadcaster.New()
	defer b.Close()

	m, err := newMonitor(provider, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sub := b.Subscribe(broadcaster.EventMemoryUpdate)
	defer b.Unsubscribe(sub.ID)

	logs := logging.Subscribe()
	defer logging.Unsubscribe(logs)

	m.start(ctx, b)
	m.watch()

	p := tea.NewProgram(tui.New(provider, sub.Events, logs), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
