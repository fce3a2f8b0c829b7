// Package types provides the core data types shared by the tidytray tray
// manager and the sysmon monitor: samples, menu actions and size helpers.
package types

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB uint64 = 1024
	MiB uint64 = 1024 * KiB
	GiB uint64 = 1024 * MiB
	TiB uint64 = 1024 * GiB
)

// Kind identifies which OS metric a Sample carries.
type Kind int

const (
	// KindMemory is used physical memory in kilobytes.
	KindMemory Kind = iota
	// KindBinSize is the aggregate recycle bin size in bytes.
	KindBinSize
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "memory"
	case KindBinSize:
		return "bin_size"
	default:
		return "unknown"
	}
}

// Sample is one scalar OS metric reading. It is produced by a poller,
// consumed once by an event loop and then discarded.
type Sample struct {
	// Kind tells how Value should be interpreted.
	Kind Kind `json:"kind"`

	// Value is the reading: kilobytes for KindMemory, bytes for KindBinSize.
	Value uint64 `json:"value"`

	// Time is the moment the metric was read.
	Time time.Time `json:"time"`
}

// NewSample returns a sample stamped with the current time.
func NewSample(kind Kind, value uint64) Sample {
	return Sample{Kind: kind, Value: value, Time: time.Now()}
}

// Bytes returns the sample value converted to bytes.
func (s Sample) Bytes() uint64 {
	if s.Kind == KindMemory {
		return s.Value * KiB
	}
	return s.Value
}

// HumanSize returns the sample value as a human-readable size.
func (s Sample) HumanSize() string {
	return FormatSize(s.Bytes())
}

// String implements fmt.Stringer.
func (s Sample) String() string {
	return fmt.Sprintf("%s=%d", s.Kind, s.Value)
}

// Action is a user-triggered intent dispatched by the tray event loop.
type Action int

// Tray actions. The set is closed.
const (
	ActionNone Action = iota
	ActionOpen
	ActionClear
	ActionExit
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionClear:
		return "clear"
	case ActionExit:
		return "exit"
	default:
		return "none"
	}
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
func FormatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// FormatKB formats a kilobyte count the same way FormatSize formats bytes.
func FormatKB(kb uint64) string {
	return humanize.IBytes(kb * KiB)
}
