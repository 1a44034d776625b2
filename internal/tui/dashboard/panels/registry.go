package panels

import (
	"github.com/Dicklesworthstone/shokodash/internal/layout"
	"github.com/Dicklesworthstone/shokodash/internal/settings"
	"github.com/Dicklesworthstone/shokodash/internal/tui/theme"
)

// CombineContinueWatching folds the continue watching panel into next up.
const CombineContinueWatching = "combineContinueWatching"

// Registry lists every dashboard panel in display order.
var Registry = []PanelConfig{
	{ID: layout.QueueProcessor, Title: "Queue Processor", HideFlag: "hideQueueProcessor", MinWidth: 24},
	{ID: layout.UnrecognizedFiles, Title: "Unrecognized Files", HideFlag: "hideUnrecognizedFiles",
		Summary: "Files the server could not match to a series"},
	{ID: layout.RecentlyImported, Title: "Recently Imported", HideFlag: "hideRecentlyImported",
		Summary: "Episodes and series added most recently"},
	{ID: layout.CollectionBreakdown, Title: "Collection Breakdown", HideFlag: "hideCollectionStats",
		Summary: "File, series and size totals"},
	{ID: layout.CollectionTypeBreakdown, Title: "Collection Type", HideFlag: "hideMediaType",
		Summary: "Series split by media type"},
	{ID: layout.ImportFolders, Title: "Import Folders", HideFlag: "hideImportFolders",
		Summary: "Configured drop and destination folders"},
	{ID: layout.ShokoNews, Title: "Shoko News", HideFlag: "hideShokoNews",
		Summary: "Latest project announcements"},
	{ID: layout.ContinueWatching, Title: "Continue Watching", HideFlag: "hideContinueWatching",
		Summary: "Episodes in progress"},
	{ID: layout.NextUp, Title: "Next Up", HideFlag: "hideNextUp",
		Summary: "Next unwatched episode per series"},
	{ID: layout.UpcomingAnime, Title: "Upcoming Anime", HideFlag: "hideUpcomingAnime",
		Summary: "Airing soon in your collection"},
	{ID: layout.RecommendedAnime, Title: "Recommended Anime", HideFlag: "hideRecommendedAnime",
		Summary: "Suggestions based on your votes"},
}

// Lookup returns the registry entry for a layout key.
func Lookup(id string) (PanelConfig, bool) {
	for _, cfg := range Registry {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return PanelConfig{}, false
}

// Hidden reports whether the flags hide the panel.
func Hidden(cfg PanelConfig, flags settings.Flags) bool {
	if flags[cfg.HideFlag] {
		return true
	}
	return cfg.ID == layout.ContinueWatching && flags[CombineContinueWatching]
}

// Visible returns the registry entries not hidden by flags, in registry
// order. Hidden panels keep their layout placement.
func Visible(flags settings.Flags) []PanelConfig {
	out := make([]PanelConfig, 0, len(Registry))
	for _, cfg := range Registry {
		if !Hidden(cfg, flags) {
			out = append(out, cfg)
		}
	}
	return out
}

// Build constructs the panels for the visible registry entries.
func Build(flags settings.Flags, styles theme.Styles) []Panel {
	visible := Visible(flags)
	out := make([]Panel, 0, len(visible))
	for _, cfg := range visible {
		if cfg.ID == layout.QueueProcessor {
			out = append(out, NewQueuePanel(cfg, styles))
			continue
		}
		out = append(out, NewSummaryPanel(cfg, styles))
	}
	return out
}
