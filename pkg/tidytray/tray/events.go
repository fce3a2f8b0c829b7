package tray

import "github.com/jamesainslie/tidytray/pkg/tidytray/types"

// Button identifies a mouse button on the tray icon.
type Button int

// Mouse buttons.
const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is an OS-level UI event forwarded into the loop.
type Event interface {
	isEvent()
}

// ClickEvent is a click on the tray icon itself.
type ClickEvent struct {
	Button Button
}

// HoverEvent is the pointer entering or leaving the icon.
type HoverEvent struct {
	Enter bool
}

// MenuEvent is the selection of a menu item by id.
type MenuEvent struct {
	ID string
}

func (ClickEvent) isEvent() {}
func (HoverEvent) isEvent() {}
func (MenuEvent) isEvent()  {}

// MenuItem binds a menu id and label to an action.
type MenuItem struct {
	ID     string
	Label  string
	Action types.Action
}

// Icon is the platform tray icon, touched only by the loop goroutine.
type Icon interface {
	SetTooltip(text string)
}

// BuildFunc constructs the tray icon and its menu. It is called once, after
// the platform event loop has signalled that it is running.
type BuildFunc func(menu []MenuItem, tooltip string) (Icon, error)

// Handlers perform the OS effects of the open and clear actions.
type Handlers interface {
	Open() error
	Clear() error
}
