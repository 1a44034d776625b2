// Package dashboard is the terminal dashboard: the panel grid, the layout
// edit keys, toasts and the live queue panel.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	editflow "github.com/Dicklesworthstone/shokodash/internal/dashboard"
	"github.com/Dicklesworthstone/shokodash/internal/layout"
	"github.com/Dicklesworthstone/shokodash/internal/notify"
	"github.com/Dicklesworthstone/shokodash/internal/queue"
	"github.com/Dicklesworthstone/shokodash/internal/settings"
	"github.com/Dicklesworthstone/shokodash/internal/signalr"
	"github.com/Dicklesworthstone/shokodash/internal/store"
	"github.com/Dicklesworthstone/shokodash/internal/tui/dashboard/panels"
	tuilayout "github.com/Dicklesworthstone/shokodash/internal/tui/layout"
	"github.com/Dicklesworthstone/shokodash/internal/tui/theme"
)

// DefaultTickInterval is how often toasts are pruned and the channel
// indicator refreshed.
const DefaultTickInterval = 500 * time.Millisecond

// Settings is the settings source the dashboard reads and saves through.
type Settings interface {
	Refresh(ctx context.Context) (settings.Document, error)
	Layout(ctx context.Context) (layout.Layouts, error)
	SaveLayout(ctx context.Context, l layout.Layouts) error
}

// ChannelState reports the push channel state.
type ChannelState interface {
	State() signalr.State
}

// Options wires the dashboard to its collaborators.
type Options struct {
	Settings    Settings
	Toasts      *notify.Center
	Queue       *store.Store[queue.Status] // optional
	Channel     ChannelState               // optional
	Styles      theme.Styles
	ServerURL   string
	ToastsOnTop bool
	Logger      *slog.Logger
}

// gridState holds the layout last published by the workflow's recalc hook.
type gridState struct {
	mu      sync.Mutex
	layouts layout.Layouts
	recalcs int
}

func (g *gridState) set(l layout.Layouts) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.layouts = l
	g.recalcs++
}

func (g *gridState) get() layout.Layouts {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.layouts
}

// Model is the dashboard's bubbletea model.
type Model struct {
	opts     Options
	ctx      context.Context
	logger   *slog.Logger
	keys     KeyMap
	workflow *editflow.Workflow
	grid     *gridState
	bridge   *queueBridge
	unsub    store.UnsubscribeFunc

	panels []panels.Panel
	status queue.Status
	focus  int
	offset int

	width, height int
	channel       signalr.State
	loaded        bool
	loadErr       error

	tickInterval time.Duration
	rowHeight    int
}

// New creates the dashboard model. Call Close when the program exits.
func New(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Toasts == nil {
		opts.Toasts = notify.New()
	}
	grid := &gridState{layouts: layout.Default()}
	m := Model{
		opts:         opts,
		ctx:          ctx,
		logger:       opts.Logger,
		keys:         dashKeys,
		grid:         grid,
		channel:      signalr.StateClosed,
		tickInterval: DefaultTickInterval,
		rowHeight:    tuilayout.DefaultRowHeight,
	}
	m.workflow = editflow.New(opts.Settings, opts.Toasts,
		editflow.WithRecalc(grid.set),
		editflow.WithLogger(opts.Logger),
	)
	m.panels = panels.Build(nil, opts.Styles)
	m.applyFocus()

	if opts.Queue != nil {
		m.bridge = newQueueBridge()
		m.status = opts.Queue.State()
		bridge := m.bridge
		m.unsub = opts.Queue.Subscribe(func(s queue.Status, _ store.Action) {
			bridge.push(s)
		})
	}
	m.pushStatus()

	applyDashboardEnvOverrides(&m)
	return m
}

// Workflow returns the edit workflow driven by the model.
func (m Model) Workflow() *editflow.Workflow {
	return m.workflow
}

// Close releases the store subscription and cancels an open edit session.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.workflow.Close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSettingsCmd(), m.tick(), m.waitForQueue())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case TickMsg:
		m.opts.Toasts.Prune()
		if m.opts.Channel != nil {
			m.channel = m.opts.Channel.State()
			m.pushConnected()
		}
		return m, m.tick()

	case SettingsLoadedMsg:
		if msg.Err != nil {
			m.loadErr = msg.Err
			m.logger.Warn("loading dashboard settings failed", "error", msg.Err)
			m.opts.Toasts.Error("Settings", msg.Err.Error())
			return m, nil
		}
		m.loaded = true
		m.loadErr = nil
		m.workflow.SetPersisted(msg.Layout)
		m.setFlags(msg.Flags)
		return m, nil

	case SaveDoneMsg:
		_ = m.workflow.Finish(msg.Pending, msg.Err)
		return m, nil

	case QueueUpdateMsg:
		m.status = msg.Status
		m.pushStatus()
		return m, m.waitForQueue()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.scroll(-m.pageSize())
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.scroll(m.pageSize())
		return m, nil
	}

	if !m.workflow.Editing() {
		switch {
		case key.Matches(msg, m.keys.Edit):
			m.workflow.Enter()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadSettingsCmd()
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Left):
			m.moveFocus(-1)
		case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Right):
			m.moveFocus(1)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		p, err := m.workflow.BeginSave()
		if err != nil {
			m.reportEditError(err)
			return m, nil
		}
		return m, m.saveCmd(p)
	case key.Matches(msg, m.keys.Reset):
		p, err := m.workflow.BeginReset()
		if err != nil {
			m.reportEditError(err)
			return m, nil
		}
		return m, m.saveCmd(p)
	case key.Matches(msg, m.keys.Cancel):
		m.reportEditError(m.workflow.Cancel())
	case key.Matches(msg, m.keys.GrowW):
		m.reportEditError(m.resizeFocused(1, 0))
	case key.Matches(msg, m.keys.ShrinkW):
		m.reportEditError(m.resizeFocused(-1, 0))
	case key.Matches(msg, m.keys.GrowH):
		m.reportEditError(m.resizeFocused(0, 1))
	case key.Matches(msg, m.keys.ShrinkH):
		m.reportEditError(m.resizeFocused(0, -1))
	case key.Matches(msg, m.keys.Up):
		m.reportEditError(m.moveFocused(0, -1))
	case key.Matches(msg, m.keys.Down):
		m.reportEditError(m.moveFocused(0, 1))
	case key.Matches(msg, m.keys.Left):
		m.reportEditError(m.moveFocused(-1, 0))
	case key.Matches(msg, m.keys.Right):
		m.reportEditError(m.moveFocused(1, 0))
	}
	m.followFocus()
	return m, nil
}

func (m Model) reportEditError(err error) {
	switch {
	case err == nil, errors.Is(err, editflow.ErrNotEditing):
	case errors.Is(err, editflow.ErrSaveInFlight):
		m.opts.Toasts.Info("", "Save in progress")
	default:
		m.logger.Debug("layout edit rejected", "error", err)
	}
}

func (m Model) breakpoint() layout.Breakpoint {
	return tuilayout.BreakpointForWidth(m.width)
}

func (m Model) focusedID() string {
	if m.focus < 0 || m.focus >= len(m.panels) {
		return ""
	}
	return m.panels[m.focus].Config().ID
}

func (m Model) focusedPlacement() (layout.Placement, bool) {
	id := m.focusedID()
	if id == "" {
		return layout.Placement{}, false
	}
	return m.grid.get().Find(m.breakpoint(), id)
}

func (m *Model) moveFocused(dx, dy int) error {
	p, ok := m.focusedPlacement()
	if !ok {
		return nil
	}
	bp := m.breakpoint()
	y := p.Y + dy
	// Vertical moves step over the neighbouring panel so compaction does
	// not pull the panel straight back.
	items := m.grid.get()[bp]
	switch {
	case dy < 0:
		if above, ok := neighbourAbove(items, p); ok {
			y = above.Y
		}
	case dy > 0:
		if below, ok := neighbourBelow(items, p); ok {
			y = below.Y + below.H
		}
	}
	return m.workflow.Move(bp, p.I, p.X+dx, y)
}

func (m *Model) resizeFocused(dw, dh int) error {
	p, ok := m.focusedPlacement()
	if !ok {
		return nil
	}
	return m.workflow.Resize(m.breakpoint(), p.I, p.W+dw, p.H+dh)
}

func overlapsColumns(a, b layout.Placement) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W
}

// neighbourAbove returns the lowest panel ending at or above p's top edge
// that shares a column with p.
func neighbourAbove(items []layout.Placement, p layout.Placement) (layout.Placement, bool) {
	var best layout.Placement
	found := false
	for _, q := range items {
		if q.I == p.I || !overlapsColumns(p, q) || q.Y+q.H > p.Y {
			continue
		}
		if !found || q.Y+q.H > best.Y+best.H {
			best, found = q, true
		}
	}
	return best, found
}

// neighbourBelow returns the highest panel starting at or below p's bottom
// edge that shares a column with p.
func neighbourBelow(items []layout.Placement, p layout.Placement) (layout.Placement, bool) {
	var best layout.Placement
	found := false
	for _, q := range items {
		if q.I == p.I || !overlapsColumns(p, q) || q.Y < p.Y+p.H {
			continue
		}
		if !found || q.Y < best.Y {
			best, found = q, true
		}
	}
	return best, found
}

func (m *Model) setFlags(flags settings.Flags) {
	focused := m.focusedID()
	m.panels = panels.Build(flags, m.opts.Styles)
	m.focus = 0
	for i, p := range m.panels {
		if p.Config().ID == focused {
			m.focus = i
		}
	}
	m.applyFocus()
	m.pushStatus()
}

func (m *Model) queuePanel() *panels.QueuePanel {
	for _, p := range m.panels {
		if qp, ok := p.(*panels.QueuePanel); ok {
			return qp
		}
	}
	return nil
}

func (m *Model) pushStatus() {
	if qp := m.queuePanel(); qp != nil {
		qp.SetStatus(m.status)
		qp.SetConnected(m.channel == signalr.StateOpen)
	}
}

func (m *Model) pushConnected() {
	if qp := m.queuePanel(); qp != nil {
		qp.SetConnected(m.channel == signalr.StateOpen)
	}
}

func (m *Model) applyFocus() {
	for i, p := range m.panels {
		if i == m.focus {
			p.Focus()
		} else {
			p.Blur()
		}
	}
}

func (m *Model) moveFocus(delta int) {
	if len(m.panels) == 0 {
		return
	}
	m.focus = (m.focus + delta + len(m.panels)) % len(m.panels)
	m.applyFocus()
	m.followFocus()
}

// followFocus scrolls so the focused panel's top edge is visible.
func (m *Model) followFocus() {
	p, ok := m.focusedPlacement()
	if !ok || m.height <= 0 {
		return
	}
	top := p.Y * m.rowHeight
	if top < m.offset || top >= m.offset+m.pageSize() {
		m.offset = top
	}
	m.clampOffset()
}

func (m Model) pageSize() int {
	return max(1, m.height-chromeLines)
}

func (m *Model) scroll(delta int) {
	m.offset += delta
	m.clampOffset()
}

func (m *Model) clampOffset() {
	limit := m.canvas().Height(m.grid.get()[m.breakpoint()]) - m.pageSize()
	m.offset = max(0, min(m.offset, limit))
}

func (m Model) canvas() tuilayout.Canvas {
	c := tuilayout.NewCanvas(m.width)
	c.RowHeight = m.rowHeight
	return c
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	model := New(ctx, opts)
	defer model.Close()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
