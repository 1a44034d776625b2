package panels

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/shokodash/internal/queue"
	tuilayout "github.com/Dicklesworthstone/shokodash/internal/tui/layout"
	"github.com/Dicklesworthstone/shokodash/internal/tui/theme"
)

// QueuePanel renders the live command queue status.
type QueuePanel struct {
	PanelBase
	status    queue.Status
	connected bool
}

// NewQueuePanel creates the queue processor panel.
func NewQueuePanel(cfg PanelConfig, styles theme.Styles) *QueuePanel {
	return &QueuePanel{PanelBase: NewPanelBase(cfg, styles)}
}

// SetStatus replaces the displayed queue status.
func (m *QueuePanel) SetStatus(status queue.Status) {
	m.status = status
	m.SetLastUpdate(time.Now())
}

// SetConnected records whether the push channel is open.
func (m *QueuePanel) SetConnected(connected bool) {
	m.connected = connected
}

// Update implements tea.Model.
func (m *QueuePanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m *QueuePanel) header() string {
	s := m.Styles()
	title := s.PanelTitle.Render(m.Config().Title)
	if !m.connected {
		title += " " + s.Warning.Render("offline")
	}
	total := s.Dim.Render(fmt.Sprintf("%d queued", m.status.Total()))
	gap := m.Width() - lipgloss.Width(title) - lipgloss.Width(total)
	if gap < 1 {
		return tuilayout.Truncate(title, m.Width())
	}
	return title + strings.Repeat(" ", gap) + total
}

func (m *QueuePanel) stateStyle(state string) lipgloss.Style {
	s := m.Styles()
	switch strings.ToLower(state) {
	case "running", "processing":
		return s.Success
	case "paused", "waiting":
		return s.Warning
	case "failed", "error":
		return s.Error
	default:
		return s.Dim
	}
}

// View implements tea.Model.
func (m *QueuePanel) View() string {
	w, h := m.Width(), m.Height()
	if w <= 0 || h <= 0 {
		return ""
	}
	s := m.Styles()

	var content strings.Builder
	content.WriteString(m.header())

	names := m.status.Names()
	if len(names) == 0 {
		content.WriteString("\n" + s.Dim.Render(tuilayout.Truncate("No queue activity", w)))
		return FitToHeight(content.String(), h)
	}

	nameWidth := 0
	for _, name := range names {
		if n := runewidth.StringWidth(name); n > nameWidth {
			nameWidth = n
		}
	}
	for _, name := range names {
		info := m.status[name]
		line := fmt.Sprintf("%s  %s  %d", runewidth.FillRight(name, nameWidth), m.stateStyle(info.State).Render(info.State), info.Count)
		content.WriteString("\n" + tuilayout.Truncate(line, w))
	}
	return FitToHeight(content.String(), h)
}
