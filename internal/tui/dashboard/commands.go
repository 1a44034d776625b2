package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	editflow "github.com/Dicklesworthstone/shokodash/internal/dashboard"
	"github.com/Dicklesworthstone/shokodash/internal/layout"
	"github.com/Dicklesworthstone/shokodash/internal/queue"
	"github.com/Dicklesworthstone/shokodash/internal/settings"
)

// TickMsg drives toast expiry and the channel indicator.
type TickMsg time.Time

// SettingsLoadedMsg carries the persisted layout and dashboard flags.
type SettingsLoadedMsg struct {
	Layout layout.Layouts
	Flags  settings.Flags
	Err    error
}

// SaveDoneMsg reports the outcome of a pending layout save.
type SaveDoneMsg struct {
	Pending *editflow.PendingSave
	Err     error
}

// QueueUpdateMsg carries a new queue status from the store.
type QueueUpdateMsg struct {
	Status queue.Status
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// loadSettingsCmd fetches the settings document, bypassing the cache.
func (m Model) loadSettingsCmd() tea.Cmd {
	src := m.opts.Settings
	ctx := m.ctx
	return func() tea.Msg {
		doc, err := src.Refresh(ctx)
		if err != nil {
			return SettingsLoadedMsg{Err: err}
		}
		l, err := doc.LayoutOrDefault()
		if err != nil {
			return SettingsLoadedMsg{Err: err}
		}
		flags, err := doc.Flags()
		return SettingsLoadedMsg{Layout: l, Flags: flags, Err: err}
	}
}

// saveCmd persists a pending save off the event loop.
func (m Model) saveCmd(p *editflow.PendingSave) tea.Cmd {
	src := m.opts.Settings
	ctx := m.ctx
	return func() tea.Msg {
		return SaveDoneMsg{Pending: p, Err: src.SaveLayout(ctx, p.Layout)}
	}
}

// waitForQueue blocks until the store publishes a new status.
func (m Model) waitForQueue() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	ch := m.bridge.ch
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case s := <-ch:
			return QueueUpdateMsg{Status: s}
		case <-ctx.Done():
			return nil
		}
	}
}

// queueBridge moves store notifications onto the event loop. Only the
// latest status is kept.
type queueBridge struct {
	ch chan queue.Status
}

func newQueueBridge() *queueBridge {
	return &queueBridge{ch: make(chan queue.Status, 1)}
}

func (b *queueBridge) push(s queue.Status) {
	for {
		select {
		case b.ch <- s:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}
