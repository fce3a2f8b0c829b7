package tui

import (
	"fmt"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
)

// logRingBuffer keeps the most recent log entries, oldest first. It is
// only touched from Update.
type logRingBuffer struct {
	entries    []logging.Entry
	maxEntries int
}

func newLogRingBuffer(maxEntries int) *logRingBuffer {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &logRingBuffer{
		entries:    make([]logging.Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Add appends an entry, evicting the oldest at capacity.
func (rb *logRingBuffer) Add(entry logging.Entry) {
	if len(rb.entries) >= rb.maxEntries {
		rb.entries = rb.entries[1:]
	}
	rb.entries = append(rb.entries, entry)
}

// Entries returns a copy of all entries in chronological order.
func (rb *logRingBuffer) Entries() []logging.Entry {
	result := make([]logging.Entry, len(rb.entries))
	copy(result, rb.entries)
	return result
}

// Len returns the number of entries in the buffer.
func (rb *logRingBuffer) Len() int {
	return len(rb.entries)
}

func logLevelChar(level logging.Level) string {
	switch level {
	case logging.LevelDebug:
		return "D"
	case logging.LevelInfo:
		return "I"
	case logging.LevelWarn:
		return "W"
	case logging.LevelError:
		return "E"
	default:
		return "?"
	}
}

func renderLogLine(e logging.Entry, width int) string {
	style := logInfoStyle
	switch e.Level {
	case logging.LevelDebug:
		style = logDebugStyle
	case logging.LevelWarn:
		style = logWarnStyle
	case logging.LevelError:
		style = logErrorStyle
	}
	text := fmt.Sprintf("%s %s [%s] %s", e.Time.Format("15:04:05"), logLevelChar(e.Level), e.Component, e.Message)
	if width > 0 && len(text) > width {
		text = text[:width]
	}
	return style.Render(text)
}
