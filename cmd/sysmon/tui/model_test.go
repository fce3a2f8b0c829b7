package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/tidytray/pkg/monitor/broadcaster"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
)

type fakeQueries struct {
	tempErr error
	sysErr  error
}

func (f fakeQueries) Disks(context.Context) ([]sysinfo.Disk, error) {
	return []sysinfo.Disk{{MountPoint: "/", Name: "/dev/nvme0n1p2", Total: 500 << 30, Free: 100 << 30}}, nil
}

func (f fakeQueries) Temperatures(context.Context) ([]sysinfo.Temperature, error) {
	if f.tempErr != nil {
		return nil, f.tempErr
	}
	return []sysinfo.Temperature{{Label: "Package id 0", Celsius: 55}}, nil
}

func (f fakeQueries) System(context.Context) (sysinfo.SystemInfo, error) {
	if f.sysErr != nil {
		return sysinfo.SystemInfo{}, f.sysErr
	}
	return sysinfo.SystemInfo{Platform: "linux", TotalMemoryKB: 2000, UsedMemoryKB: 500}, nil
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestRefresh(t *testing.T) {
	m := New(fakeQueries{}, nil, nil)

	msg := m.refresh()()
	snap, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	require.NoError(t, snap.Err)
	assert.Len(t, snap.Disks, 1)
	assert.Len(t, snap.Temperatures, 1)
	assert.Equal(t, "linux", snap.System.Platform)

	m, _ = update(t, m, snap)
	assert.Equal(t, uint64(500), m.usedKB, "snapshot seeds memory until the first update")
	assert.InDelta(t, 0.25, m.MemoryFraction(), 0.0001)
}

func TestRefresh_TemperatureFailureIsNotFatal(t *testing.T) {
	m := New(fakeQueries{tempErr: errors.New("no sensors")}, nil, nil)

	snap := m.refresh()().(SnapshotMsg)
	assert.NoError(t, snap.Err)
	assert.Empty(t, snap.Temperatures)
}

func TestRefresh_SystemFailure(t *testing.T) {
	m := New(fakeQueries{sysErr: errors.New("boom")}, nil, nil)

	snap := m.refresh()().(SnapshotMsg)
	m, _ = update(t, m, snap)
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "Error: boom")
}

func TestMemoryUpdates(t *testing.T) {
	events := make(chan *broadcaster.Event, 4)
	m := New(fakeQueries{}, events, nil)
	m, _ = update(t, m, m.refresh()())

	for _, kb := range []uint64{1000, 1000, 1050} {
		events <- &broadcaster.Event{Name: broadcaster.EventMemoryUpdate, Value: kb}
		msg := waitForEvent(events)()
		var cmd tea.Cmd
		m, cmd = update(t, m, msg)
		assert.NotNil(t, cmd, "keeps listening")
	}

	assert.Equal(t, uint64(1050), m.usedKB)
	assert.Equal(t, 3, m.updates)
	assert.Contains(t, m.View(), "1.0 MiB")
}

func TestWaitForEvent_SkipsOtherEvents(t *testing.T) {
	events := make(chan *broadcaster.Event, 2)
	events <- &broadcaster.Event{Name: broadcaster.EventBinSize, Value: 1}
	events <- &broadcaster.Event{Name: broadcaster.EventMemoryUpdate, Value: 7}

	assert.Equal(t, MemoryMsg(7), waitForEvent(events)())
}

func TestWaitForEvent_Closed(t *testing.T) {
	events := make(chan *broadcaster.Event)
	close(events)

	msg := waitForEvent(events)()
	assert.Equal(t, streamClosedMsg{}, msg)

	m := New(fakeQueries{}, events, nil)
	m, _ = update(t, m, msg)
	assert.Contains(t, m.View(), "stream closed")
}

func TestNilChannels(t *testing.T) {
	assert.Nil(t, waitForEvent(nil))
	assert.Nil(t, waitForLog(nil))
}

func TestKeys(t *testing.T) {
	m := New(fakeQueries{}, nil, nil)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	_, ok := cmd().(SnapshotMsg)
	assert.True(t, ok)
}

func TestLogLines(t *testing.T) {
	logs := make(chan logging.Entry, 8)
	m := New(fakeQueries{}, nil, logs)

	for i := range 5 {
		entry := logging.Entry{Time: time.Now(), Level: logging.LevelWarn, Component: "poller", Message: "read failed " + string(rune('a'+i))}
		m, _ = update(t, m, LogMsg(entry))
	}
	require.Equal(t, logLines, m.recent.Len())

	view := m.View()
	assert.NotContains(t, view, "read failed a")
	assert.Contains(t, view, "read failed e")
	assert.Contains(t, view, "W [poller]")
}

func TestView_Sections(t *testing.T) {
	m := New(fakeQueries{}, nil, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, m.refresh()())

	view := m.View()
	for _, want := range []string{"sysmon · linux", "Memory", "Disks", "Temperatures", "Package id 0", "100 GiB free of 500 GiB"} {
		assert.True(t, strings.Contains(view, want), "view missing %q", want)
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, 10, len([]rune(stripANSI(bar(0.5, 10)))))
	assert.Equal(t, "", bar(0.5, 0))
	assert.Equal(t, repeatChar('█', 4), stripANSI(bar(2, 4)))
}

// stripANSI removes SGR sequences.
func stripANSI(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			in = true
		case in && r == 'm':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return b.String()
}
