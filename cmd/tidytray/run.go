package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidytray/pkg/tidytray/autostart"
	"github.com/jamesainslie/tidytray/pkg/tidytray/config"
	"github.com/jamesainslie/tidytray/pkg/tidytray/instance"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/notify"
	"github.com/jamesainslie/tidytray/pkg/tidytray/poller"
	"github.com/jamesainslie/tidytray/pkg/tidytray/recyclebin"
	"github.com/jamesainslie/tidytray/pkg/tidytray/tray"
	"github.com/jamesainslie/tidytray/pkg/tidytray/trayicon"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

// menuItems builds the fixed tray menu from the configured ids.
func menuItems(m config.MenuConfig) []tray.MenuItem {
	return []tray.MenuItem{
		{ID: m.Open, Label: "Open Recycle Bin", Action: types.ActionOpen},
		{ID: m.Clear, Label: "Empty Recycle Bin", Action: types.ActionClear},
		{ID: m.Exit, Label: "Exit", Action: types.ActionExit},
	}
}

// runTray runs the tray icon until Exit is selected. The platform loop
// owns the calling goroutine; the poller and the dispatcher run beside it.
func runTray(cmd *cobra.Command, args []string) error {
	log := logging.Get("tidytray")

	lock, err := instance.Acquire(filepath.Join(config.StateDir(), binaryName+".pid"))
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	if cfg.Autostart.Enabled {
		m := autostart.New(autostart.DefaultStore(), cfg.Autostart.Name)
		if changed, err := m.Ensure(); err != nil {
			log.Warn("autostart registration failed", "error", err)
		} else if changed {
			log.Info("registered for autostart", "name", m.Name())
		}
	}

	bin, err := recyclebin.Default(cfg.Bin.Path)
	if err != nil {
		return err
	}

	var icon []byte
	if cfg.Tray.Icon != "" {
		if icon, err = trayicon.Load(cfg.Tray.Icon); err != nil {
			return err
		}
	}
	native := trayicon.New(icon, "")

	queue := notify.New()
	p, err := poller.New(types.KindBinSize, recyclebin.MetricSource{Bin: bin}, queue, cfg.Bin.PollInterval)
	if err != nil {
		return err
	}

	loop, err := tray.New(tray.Config{
		Samples:     queue.Out(),
		Events:      native.Events(),
		Ready:       native.Ready(),
		Build:       native.Build,
		Handlers:    recyclebin.NewActions(bin),
		Menu:        menuItems(cfg.Tray.Menu),
		Tooltip:     cfg.Tray.Tooltip,
		ClearedKind: types.KindBinSize,
	})
	if err != nil {
		return err
	}

	config.Watch(v, func(updated *config.Config) {
		if updated.Bin.PollInterval != p.Interval() {
			log.Info("poll interval changed", "from", p.Interval(), "to", updated.Bin.PollInterval)
			p.SetInterval(updated.Bin.PollInterval)
		}
	}, func(err error) {
		log.Warn("ignoring invalid config change", "error", err)
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The poller is not stopped on Exit; it dies with the process.
	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("poller stopped", "error", err)
		}
	}()

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		queue.Close()
		native.Quit()
		loopErr <- err
	}()

	log.Info("tray started", "bin_interval", p.Interval())
	native.Run(nil)
	cancel()

	if err := <-loopErr; err != nil && !errors.Is(err, tray.ErrExit) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("tray loop: %w", err)
	}
	return nil
}
