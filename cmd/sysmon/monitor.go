package main

import (
	"context"
	"errors"

	"github.com/jamesainslie/tidytray/pkg/monitor/broadcaster"
	"github.com/jamesainslie/tidytray/pkg/tidytray/config"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/notify"
	"github.com/jamesainslie/tidytray/pkg/tidytray/poller"
	"github.com/jamesainslie/tidytray/pkg/tidytray/recyclebin"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

// monitor is the sampling pipeline shared by serve and dash: one poller
// per metric, each feeding its own queue that is forwarded to the
// broadcaster.
type monitor struct {
	memory *poller.Poller
	bin    *poller.Poller
	queues []*notify.Queue
}

// newMonitor wires the memory poller and, when withBin is set, the recycle
// bin poller.
func newMonitor(p *sysinfo.Provider, withBin bool) (*monitor, error) {
	m := &monitor{}

	memQueue := notify.New()
	mp, err := poller.New(types.KindMemory, sysinfo.MemorySource{Provider: p}, memQueue, cfg.Memory.PollInterval)
	if err != nil {
		return nil, err
	}
	m.memory = mp
	m.queues = append(m.queues, memQueue)

	if withBin {
		bin, err := recyclebin.Default(cfg.Bin.Path)
		if err != nil {
			return nil, err
		}
		binQueue := notify.New()
		bp, err := poller.New(types.KindBinSize, recyclebin.MetricSource{Bin: bin}, binQueue, cfg.Bin.PollInterval)
		if err != nil {
			return nil, err
		}
		m.bin = bp
		m.queues = append(m.queues, binQueue)
	}
	return m, nil
}

// start runs the pollers and forwarders until ctx is done.
func (m *monitor) start(ctx context.Context, b *broadcaster.Broadcaster) {
	log := logging.Get(binaryName)

	pollers := []*poller.Poller{m.memory}
	if m.bin != nil {
		pollers = append(pollers, m.bin)
	}
	for i, p := range pollers {
		q := m.queues[i]
		go func() {
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("poller stopped", "error", err)
			}
			q.Close()
		}()
		go func() {
			if err := b.Forward(ctx, q.Out()); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("forwarder stopped", "error", err)
			}
		}()
	}
}

// apply updates the running intervals from a reloaded config.
func (m *monitor) apply(updated *config.Config) {
	log := logging.Get(binaryName)
	if updated.Memory.PollInterval != m.memory.Interval() {
		log.Info("memory interval changed", "from", m.memory.Interval(), "to", updated.Memory.PollInterval)
		m.memory.SetInterval(updated.Memory.PollInterval)
	}
	if m.bin != nil && updated.Bin.PollInterval != m.bin.Interval() {
		log.Info("bin interval changed", "from", m.bin.Interval(), "to", updated.Bin.PollInterval)
		m.bin.SetInterval(updated.Bin.PollInterval)
	}
}

// watch applies config file changes to the running pollers.
func (m *monitor) watch() {
	config.Watch(v, m.apply, func(err error) {
		logging.Get(binaryName).Warn("ignoring invalid config change", "error", err)
	})
}
