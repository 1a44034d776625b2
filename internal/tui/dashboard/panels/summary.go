package panels

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	tuilayout "github.com/Dicklesworthstone/shokodash/internal/tui/layout"
	"github.com/Dicklesworthstone/shokodash/internal/tui/theme"
)

// SummaryPanel shows a panel's title and its one-line summary.
type SummaryPanel struct {
	PanelBase
}

// NewSummaryPanel creates a panel rendering cfg.Summary.
func NewSummaryPanel(cfg PanelConfig, styles theme.Styles) *SummaryPanel {
	return &SummaryPanel{PanelBase: NewPanelBase(cfg, styles)}
}

// Update implements tea.Model.
func (m *SummaryPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View implements tea.Model.
func (m *SummaryPanel) View() string {
	w, h := m.Width(), m.Height()
	if w <= 0 || h <= 0 {
		return ""
	}
	s := m.Styles()
	cfg := m.Config()

	var content strings.Builder
	content.WriteString(tuilayout.Truncate(s.PanelTitle.Render(cfg.Title), w))
	if cfg.Summary != "" {
		body := TruncateToHeight(tuilayout.Wrap(cfg.Summary, w), h-1)
		for _, line := range strings.Split(body, "\n") {
			content.WriteString("\n" + s.Dim.Render(tuilayout.Truncate(line, w)))
		}
	}
	return FitToHeight(content.String(), h)
}
