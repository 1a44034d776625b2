package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	editflow "github.com/Dicklesworthstone/shokodash/internal/dashboard"
	"github.com/Dicklesworthstone/shokodash/internal/notify"
	"github.com/Dicklesworthstone/shokodash/internal/signalr"
	tuilayout "github.com/Dicklesworthstone/shokodash/internal/tui/layout"
)

// chromeLines is the status bar plus the help bar.
const chromeLines = 2

// segment is one rendered panel positioned on the canvas.
type segment struct {
	rect  tuilayout.Rect
	lines []string
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Loading…"
	}

	page := m.pageSize()
	grid := m.renderGrid()
	visible := make([]string, page)
	for i := range visible {
		if y := m.offset + i; y < len(grid) {
			visible[i] = grid[y]
		}
	}
	m.overlayToasts(visible)

	var b strings.Builder
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(strings.Join(visible, "\n"))
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

// renderGrid draws every visible panel into full-canvas lines.
func (m Model) renderGrid() []string {
	c := m.canvas()
	items := m.grid.get()[c.Breakpoint]
	editing := m.workflow.Editing()
	s := m.opts.Styles

	var segs []segment
	for i, p := range m.panels {
		pl, ok := m.grid.get().Find(c.Breakpoint, p.Config().ID)
		if !ok {
			continue
		}
		r := c.Rect(pl)
		if r.W < 3 || r.H < 3 {
			continue
		}
		p.SetSize(r.W-2, r.H-2)

		style := s.Panel
		if i == m.focus {
			style = s.PanelFocused
			if editing {
				style = s.PanelEditing
			}
		}
		box := style.Width(r.W - 2).Height(r.H - 2).MaxWidth(r.W).Render(p.View())
		segs = append(segs, segment{rect: r, lines: strings.Split(box, "\n")})
	}
	sort.Slice(segs, func(a, b int) bool { return segs[a].rect.X < segs[b].rect.X })

	height := c.Height(items)
	out := make([]string, height)
	for y := 0; y < height; y++ {
		var line strings.Builder
		cursor := 0
		for _, seg := range segs {
			if !seg.rect.Contains(seg.rect.X, y) {
				continue
			}
			if seg.rect.X > cursor {
				line.WriteString(strings.Repeat(" ", seg.rect.X-cursor))
				cursor = seg.rect.X
			}
			row := y - seg.rect.Y
			text := ""
			if row < len(seg.lines) {
				text = seg.lines[row]
			}
			line.WriteString(text)
			if pad := seg.rect.W - lipgloss.Width(text); pad > 0 {
				line.WriteString(strings.Repeat(" ", pad))
			}
			cursor = seg.rect.X + seg.rect.W
		}
		out[y] = line.String()
	}
	return out
}

func (m Model) renderToast(t notify.Toast) string {
	s := m.opts.Styles
	style := s.Info
	icon := "ℹ"
	switch t.Kind {
	case notify.KindSuccess:
		style, icon = s.Success, "✓"
	case notify.KindError:
		style, icon = s.Error, "✗"
	}
	text := style.Render(icon) + " " + s.Normal.Render(t.Text())
	if t.ID == editflow.EditToastID {
		text += "  " + s.Dim.Render(
			helpText(m.keys.Reset)+" · "+helpText(m.keys.Cancel)+" · "+helpText(m.keys.Save))
	}
	return tuilayout.Truncate(text, m.width)
}

// overlayToasts replaces the bottom (or top) lines of the visible area
// with the active toasts, right aligned.
func (m Model) overlayToasts(visible []string) {
	toasts := m.opts.Toasts.Active()
	if len(toasts) > len(visible) {
		toasts = toasts[len(toasts)-len(visible):]
	}
	for i, t := range toasts {
		line := lipgloss.PlaceHorizontal(m.width, lipgloss.Right, m.renderToast(t))
		if m.opts.ToastsOnTop {
			visible[i] = line
		} else {
			visible[len(visible)-len(toasts)+i] = line
		}
	}
}

func (m Model) renderStatusBar() string {
	s := m.opts.Styles
	bp := m.breakpoint()

	channel := s.Warning.Render("○ " + m.channel.String())
	if m.channel == signalr.StateOpen {
		channel = s.Success.Render("● live")
	}

	mode := m.workflow.State().String()
	if m.workflow.State() != editflow.Viewing && m.workflow.Dirty() {
		mode += "*"
	}

	parts := []string{
		s.Header.Render("shokodash"),
		m.opts.ServerURL,
		channel,
		fmt.Sprintf("%s · %d cols", bp, bp.Cols()),
		mode,
	}
	if !m.loaded && m.loadErr == nil {
		parts = append(parts, s.Dim.Render("loading settings…"))
	}
	bar := strings.Join(parts, "  ")
	return s.StatusBar.Width(m.width).MaxWidth(m.width).Render(tuilayout.Truncate(bar, m.width-2))
}

func (m Model) renderHelpBar() string {
	var bindings []key.Binding
	if m.workflow.Editing() {
		bindings = []key.Binding{
			m.keys.Left, m.keys.GrowW, m.keys.GrowH, m.keys.Next,
			m.keys.Save, m.keys.Reset, m.keys.Cancel, m.keys.Quit,
		}
	} else {
		bindings = []key.Binding{
			m.keys.Next, m.keys.Edit, m.keys.Refresh, m.keys.PageDown, m.keys.Quit,
		}
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, helpText(b))
	}
	return m.opts.Styles.Help.Render(tuilayout.Truncate(strings.Join(parts, "  "), m.width))
}

func helpText(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
