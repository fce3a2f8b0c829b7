// Package trayicon binds the tray event loop to the native notification
// area through energye/systray.
//
// The platform loop must own the main OS thread, so Run blocks the caller.
// Everything the loop reports (readiness, clicks, menu selections) is
// forwarded onto channels consumed by tray.Loop in another goroutine.
package trayicon

import (
	"sync"

	"github.com/energye/systray"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/tray"
)

var logger = logging.Get("trayicon")

const eventBuffer = 64

// Native is the platform tray. Create it with New, hand Ready, Events and
// Build to tray.Config, then call Run from the main goroutine.
type Native struct {
	icon  []byte
	title string

	ready     chan struct{}
	events    chan tray.Event
	readyOnce sync.Once
	quitOnce  sync.Once
}

// New returns a Native that will display icon. A nil icon uses Default().
func New(icon []byte, title string) *Native {
	if len(icon) == 0 {
		icon = Default()
	}
	return &Native{
		icon:   icon,
		title:  title,
		ready:  make(chan struct{}),
		events: make(chan tray.Event, eventBuffer),
	}
}

// Ready is closed once the platform loop is running.
func (n *Native) Ready() <-chan struct{} { return n.ready }

// Events delivers input in the order the platform reported it.
func (n *Native) Events() <-chan tray.Event { return n.events }

// Run starts the platform loop and blocks until Quit. onExit runs on the
// platform thread after the icon has been removed.
func (n *Native) Run(onExit func()) {
	systray.Run(func() {
		n.readyOnce.Do(func() { close(n.ready) })
		logger.Debug("platform loop ready")
	}, func() {
		if onExit != nil {
			onExit()
		}
	})
}

// Quit stops the platform loop. It is safe to call more than once.
func (n *Native) Quit() {
	n.quitOnce.Do(systray.Quit)
}

// Build creates the icon, its tooltip and the context menu. It satisfies
// tray.BuildFunc and must only be called after Ready.
func (n *Native) Build(menu []tray.MenuItem, tooltip string) (tray.Icon, error) {
	systray.SetIcon(n.icon)
	if n.title != "" {
		systray.SetTitle(n.title)
	}
	systray.SetTooltip(tooltip)

	for _, item := range menu {
		id := item.ID
		mi := systray.AddMenuItem(item.Label, item.Label)
		mi.Click(func() { n.forward(tray.MenuEvent{ID: id}) })
	}

	systray.SetOnClick(func(systray.IMenu) {
		n.forward(tray.ClickEvent{Button: tray.ButtonLeft})
	})
	systray.SetOnRClick(func(m systray.IMenu) {
		n.forward(tray.ClickEvent{Button: tray.ButtonRight})
		if err := m.ShowMenu(); err != nil {
			logger.Warn("showing context menu", "error", err)
		}
	})

	return nativeIcon{}, nil
}

// forward runs on the platform thread. The tray loop drains the buffer
// far faster than a user can click, so a blocking send is acceptable.
func (n *Native) forward(ev tray.Event) {
	n.events <- ev
}

type nativeIcon struct{}

func (nativeIcon) SetTooltip(text string) { systray.SetTooltip(text) }
