package panels

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/shokodash/internal/tui/theme"
)

// PanelConfig holds configuration for panel behavior and display.
type PanelConfig struct {
	// ID is the layout key of the panel (e.g., "queueProcessor")
	ID string

	// Title is the display title for the panel header
	Title string

	// HideFlag names the dashboard setting that hides the panel
	HideFlag string

	// Summary is the one-line description shown by panels without live data
	Summary string

	// MinWidth is the minimum width the panel needs to render its body
	MinWidth int
}

// Panel defines a dashboard panel component.
// Embeds tea.Model for Bubble Tea integration and adds panel-specific methods.
type Panel interface {
	tea.Model

	// SetSize sets the inner panel dimensions for rendering
	SetSize(width, height int)

	// Focus marks the panel as focused (target of edit keys)
	Focus()

	// Blur marks the panel as unfocused
	Blur()

	// Config returns the panel's configuration
	Config() PanelConfig
}

// PanelBase provides common functionality for panel implementations.
// Embed this in concrete panel types to get default implementations.
type PanelBase struct {
	config     PanelConfig
	styles     theme.Styles
	width      int
	height     int
	focused    bool
	lastUpdate time.Time
}

// NewPanelBase creates a new PanelBase with the given config.
func NewPanelBase(cfg PanelConfig, styles theme.Styles) PanelBase {
	return PanelBase{config: cfg, styles: styles}
}

// SetSize implements Panel.SetSize
func (b *PanelBase) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// Focus implements Panel.Focus
func (b *PanelBase) Focus() {
	b.focused = true
}

// Blur implements Panel.Blur
func (b *PanelBase) Blur() {
	b.focused = false
}

// Config implements Panel.Config
func (b *PanelBase) Config() PanelConfig {
	return b.config
}

// Init implements tea.Model.
func (b *PanelBase) Init() tea.Cmd {
	return nil
}

// IsFocused returns whether the panel is focused
func (b *PanelBase) IsFocused() bool {
	return b.focused
}

// Width returns the current panel width
func (b *PanelBase) Width() int {
	return b.width
}

// Height returns the current panel height
func (b *PanelBase) Height() int {
	return b.height
}

// Styles returns the styles the panel renders with.
func (b *PanelBase) Styles() theme.Styles {
	return b.styles
}

// LastUpdate returns the time of the last data update.
func (b *PanelBase) LastUpdate() time.Time {
	return b.lastUpdate
}

// SetLastUpdate records when data was last updated.
func (b *PanelBase) SetLastUpdate(t time.Time) {
	b.lastUpdate = t
}

// PadToHeight pads content with empty lines to fill the specified height.
// This prevents layout jitter when content varies in length.
func PadToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for len(lines) < targetHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// TruncateToHeight truncates content to fit within targetHeight lines.
func TruncateToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= targetHeight {
		return content
	}
	return strings.Join(lines[:targetHeight], "\n")
}

// FitToHeight ensures content exactly fills targetHeight lines,
// truncating if too long or padding if too short.
func FitToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return ""
	}
	return PadToHeight(TruncateToHeight(content, targetHeight), targetHeight)
}
