package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/tidytray/pkg/monitor/broadcaster"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

const (
	logLines     = 3
	queryTimeout = 10 * time.Second
)

// Queries answers the point-in-time system queries.
type Queries interface {
	Disks(ctx context.Context) ([]sysinfo.Disk, error)
	Temperatures(ctx context.Context) ([]sysinfo.Temperature, error)
	System(ctx context.Context) (sysinfo.SystemInfo, error)
}

// MemoryMsg carries a memory-update value in kilobytes.
type MemoryMsg uint64

// SnapshotMsg carries the result of a full query refresh.
type SnapshotMsg struct {
	Disks        []sysinfo.Disk
	Temperatures []sysinfo.Temperature
	System       sysinfo.SystemInfo
	Err          error
}

// LogMsg carries one log entry.
type LogMsg logging.Entry

// streamClosedMsg is sent when the event stream ends.
type streamClosedMsg struct{}

// Model is the dashboard.
type Model struct {
	queries Queries
	events  <-chan *broadcaster.Event
	logs    <-chan logging.Entry

	gauge  progress.Model
	recent *logRingBuffer

	system  sysinfo.SystemInfo
	usedKB  uint64
	updates int
	disks   []sysinfo.Disk
	temps   []sysinfo.Temperature
	err     error
	closed  bool

	width  int
	height int
}

// New creates a dashboard reading memory updates from events and log
// entries from logs. Either channel may be nil.
func New(q Queries, events <-chan *broadcaster.Event, logs <-chan logging.Entry) Model {
	gauge := progress.New(progress.WithGradient(string(successColor), string(dangerColor)))
	gauge.Width = 40

	return Model{
		queries: q,
		events:  events,
		logs:    logs,
		gauge:   gauge,
		recent:  newLogRingBuffer(logLines),
		width:   80,
		height:  24,
	}
}

// Init starts the first refresh and the stream readers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), waitForEvent(m.events), waitForLog(m.logs))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gauge.Width = max(msg.Width-30, 10)
		return m, nil

	case MemoryMsg:
		m.usedKB = uint64(msg)
		m.updates++
		return m, waitForEvent(m.events)

	case SnapshotMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.disks = msg.Disks
			m.temps = msg.Temperatures
			m.system = msg.System
			if m.usedKB == 0 {
				m.usedKB = msg.System.UsedMemoryKB
			}
		}
		return m, nil

	case LogMsg:
		m.recent.Add(logging.Entry(msg))
		return m, waitForLog(m.logs)

	case streamClosedMsg:
		m.closed = true
		return m, nil
	}

	return m, nil
}

// MemoryFraction returns used over total memory.
func (m Model) MemoryFraction() float64 {
	if m.system.TotalMemoryKB == 0 {
		return 0
	}
	return float64(m.usedKB) / float64(m.system.TotalMemoryKB)
}

// View renders the dashboard.
func (m Model) View() string {
	contentWidth := max(m.width-4, 40)
	var b strings.Builder

	title := "sysmon"
	if m.system.Platform != "" {
		title += " · " + m.system.Platform
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Memory"))
	b.WriteString("\n")
	b.WriteString(m.gauge.ViewAs(m.MemoryFraction()))
	b.WriteString("  ")
	b.WriteString(valueStyle.Render(types.FormatKB(m.usedKB)))
	b.WriteString(mutedTextStyle.Render(" / " + types.FormatKB(m.system.TotalMemoryKB)))
	if m.closed {
		b.WriteString(errorTextStyle.Render("  (stream closed)"))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Disks"))
	b.WriteString("\n")
	if len(m.disks) == 0 {
		b.WriteString(mutedTextStyle.Render("  no disks"))
		b.WriteString("\n")
	}
	for _, d := range m.disks {
		pct := d.UsedPercent()
		fmt.Fprintf(&b, "  %-20s %s %s %s\n",
			truncate(d.MountPoint, 20),
			levelStyle(pct, 75, 90).Render(bar(pct/100, 20)),
			valueStyle.Render(fmt.Sprintf("%5.1f%%", pct)),
			mutedTextStyle.Render(types.FormatSize(d.Free)+" free of "+types.FormatSize(d.Total)))
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Temperatures"))
	b.WriteString("\n")
	if len(m.temps) == 0 {
		b.WriteString(mutedTextStyle.Render("  no sensors"))
		b.WriteString("\n")
	}
	for _, t := range m.temps {
		fmt.Fprintf(&b, "  %-28s %s\n",
			truncate(t.Label, 28),
			levelStyle(t.Celsius, 70, 85).Render(fmt.Sprintf("%5.1f°C", t.Celsius)))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorTextStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	if m.recent.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(renderDivider(contentWidth))
		b.WriteString("\n")
		for _, e := range m.recent.Entries() {
			b.WriteString(renderLogLine(e, contentWidth))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(keyStyle.Render("r"))
	b.WriteString(keyDescStyle.Render(" refresh  "))
	b.WriteString(keyStyle.Render("q"))
	b.WriteString(keyDescStyle.Render(" quit"))

	return outerBoxStyle.Width(contentWidth + 2).Render(b.String())
}

// refresh queries disks, temperatures and system info. A temperature
// failure is not fatal; many machines expose no sensors.
func (m Model) refresh() tea.Cmd {
	q := m.queries
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		var snap SnapshotMsg
		if snap.System, snap.Err = q.System(ctx); snap.Err != nil {
			return snap
		}
		if snap.Disks, snap.Err = q.Disks(ctx); snap.Err != nil {
			return snap
		}
		temps, err := q.Temperatures(ctx)
		if err == nil {
			snap.Temperatures = temps
		}
		return snap
	}
}

func waitForEvent(events <-chan *broadcaster.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		for ev := range events {
			if ev.Name == broadcaster.EventMemoryUpdate {
				return MemoryMsg(ev.Value)
			}
		}
		return streamClosedMsg{}
	}
}

func waitForLog(logs <-chan logging.Entry) tea.Cmd {
	if logs == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-logs
		if !ok {
			return nil
		}
		return LogMsg(e)
	}
}
