// Package tray implements the single-threaded event loop that owns tray
// state. It merges metric samples and UI events into one stream and
// dispatches each one to a fixed set of actions.
//
// Construction is two-phase: the Loop is created with the channels it reads,
// and the tray icon itself is only built once the platform loop reports that
// it is running. Icons created before that point may never render.
package tray

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

var logger = logging.Get("tray")

// ErrExit is returned by Run when the exit action was selected.
var ErrExit = errors.New("tray: exit requested")

// ErrDuplicateMenuID is returned by New when two menu items share an id.
var ErrDuplicateMenuID = errors.New("tray: duplicate menu id")

// FormatFunc renders a sample as tooltip text.
type FormatFunc func(types.Sample) string

// Config wires a Loop. Samples, Events, Ready and Build are required.
type Config struct {
	// Samples delivers poller readings in production order.
	Samples <-chan types.Sample

	// Events delivers clicks, hovers and menu selections.
	Events <-chan Event

	// Ready is closed (or receives once) when the platform loop is running.
	Ready <-chan struct{}

	// Build creates the tray icon after Ready.
	Build BuildFunc

	// Handlers run the open and clear actions.
	Handlers Handlers

	// Menu is the fixed menu. Each id must be unique.
	Menu []MenuItem

	// Tooltip is the text shown before the first sample.
	Tooltip string

	// Format renders samples; nil uses DefaultFormat.
	Format FormatFunc

	// ClearedKind is the sample kind used to render the tooltip after a
	// successful clear.
	ClearedKind types.Kind
}

// Loop is the dispatcher. All fields are owned by the goroutine calling Run.
type Loop struct {
	cfg     Config
	actions map[string]types.Action
	icon    Icon
	tooltip string
}

// New validates cfg and builds the action table.
func New(cfg Config) (*Loop, error) {
	if cfg.Samples == nil || cfg.Events == nil || cfg.Ready == nil || cfg.Build == nil {
		return nil, errors.New("tray: samples, events, ready and build are required")
	}
	if cfg.Handlers == nil {
		return nil, errors.New("tray: handlers are required")
	}
	if cfg.Format == nil {
		cfg.Format = DefaultFormat
	}

	actions := make(map[string]types.Action, len(cfg.Menu))
	for _, item := range cfg.Menu {
		if _, dup := actions[item.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMenuID, item.ID)
		}
		actions[item.ID] = item.Action
	}

	return &Loop{cfg: cfg, actions: actions, tooltip: cfg.Tooltip}, nil
}

// Tooltip returns the current tooltip text. It must only be called from the
// goroutine running Run, or after Run has returned.
func (l *Loop) Tooltip() string {
	return l.tooltip
}

// Action returns the action bound to a menu id.
func (l *Loop) Action(id string) (types.Action, bool) {
	a, ok := l.actions[id]
	return a, ok
}

// Run waits for Ready, builds the icon and dispatches events until the exit
// action is selected (ErrExit), ctx is done, or an input channel closes.
// A Build failure is returned as is.
func (l *Loop) Run(ctx context.Context) error {
	select {
	case <-l.cfg.Ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	icon, err := l.cfg.Build(l.cfg.Menu, l.tooltip)
	if err != nil {
		return fmt.Errorf("tray: building icon: %w", err)
	}
	l.icon = icon
	logger.Debug("tray icon built", "items", len(l.cfg.Menu))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case s, ok := <-l.cfg.Samples:
			if !ok {
				return errors.New("tray: sample channel closed")
			}
			l.handleSample(s)

		case ev, ok := <-l.cfg.Events:
			if !ok {
				return errors.New("tray: event channel closed")
			}
			if l.handleEvent(ev) {
				logger.Info("exit selected")
				return ErrExit
			}
		}
	}
}

func (l *Loop) handleSample(s types.Sample) {
	l.setTooltip(l.cfg.Format(s))
}

// handleEvent dispatches ev and reports whether the loop should stop.
func (l *Loop) handleEvent(ev Event) bool {
	switch ev := ev.(type) {
	case ClickEvent:
		if ev.Button == ButtonLeft {
			return l.dispatch(types.ActionOpen)
		}
	case MenuEvent:
		action, ok := l.actions[ev.ID]
		if !ok {
			logger.Warn("unknown menu id", "id", ev.ID)
			return false
		}
		return l.dispatch(action)
	case HoverEvent:
	}
	return false
}

func (l *Loop) dispatch(action types.Action) bool {
	switch action {
	case types.ActionOpen:
		if err := l.cfg.Handlers.Open(); err != nil {
			logger.Error("open failed", "error", err)
		}
	case types.ActionClear:
		if err := l.cfg.Handlers.Clear(); err != nil {
			logger.Error("clear failed, tooltip unchanged", "error", err)
			return false
		}
		l.setTooltip(l.cfg.Format(types.NewSample(l.cfg.ClearedKind, 0)))
	case types.ActionExit:
		return true
	}
	return false
}

func (l *Loop) setTooltip(text string) {
	l.tooltip = text
	l.icon.SetTooltip(text)
}

// DefaultFormat renders "Recycle Bin: 1.5 MiB" or "Memory used: 1.0 GiB".
func DefaultFormat(s types.Sample) string {
	switch s.Kind {
	case types.KindMemory:
		return "Memory used: " + s.HumanSize()
	default:
		if s.Value == 0 {
			return "Recycle Bin: empty"
		}
		return "Recycle Bin: " + s.HumanSize()
	}
}
