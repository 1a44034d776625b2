package layout

// Panel keys known to the dashboard.
const (
	QueueProcessor          = "queueProcessor"
	UnrecognizedFiles       = "unrecognizedFiles"
	RecentlyImported        = "recentlyImported"
	CollectionBreakdown     = "collectionBreakdown"
	CollectionTypeBreakdown = "collectionTypeBreakdown"
	ImportFolders           = "importFolders"
	ShokoNews               = "shokoNews"
	ContinueWatching        = "continueWatching"
	NextUp                  = "nextUp"
	UpcomingAnime           = "upcomingAnime"
	RecommendedAnime        = "recommendedAnime"
)

// Default returns the layout used when nothing is persisted and by Reset.
// Every call returns a fresh copy.
func Default() Layouts {
	lg := []Placement{
		{I: QueueProcessor, X: 0, Y: 0, W: 6, H: 11, MinW: 5, MinH: 8},
		{I: UnrecognizedFiles, X: 6, Y: 0, W: 6, H: 11, MinW: 5, MinH: 8},
		{I: RecentlyImported, X: 0, Y: 11, W: 12, H: 11, MinW: 5, MinH: 8},
		{I: CollectionBreakdown, X: 0, Y: 22, W: 3, H: 6, MinW: 3, MinH: 5},
		{I: CollectionTypeBreakdown, X: 3, Y: 22, W: 3, H: 6, MinW: 3, MinH: 5},
		{I: ImportFolders, X: 6, Y: 22, W: 3, H: 6, MinW: 3, MinH: 5},
		{I: ShokoNews, X: 9, Y: 22, W: 3, H: 6, MinW: 3, MinH: 5},
		{I: ContinueWatching, X: 0, Y: 28, W: 12, H: 11, MinW: 5, MinH: 8},
		{I: NextUp, X: 0, Y: 39, W: 12, H: 11, MinW: 5, MinH: 8},
		{I: UpcomingAnime, X: 0, Y: 50, W: 12, H: 11, MinW: 5, MinH: 8},
		{I: RecommendedAnime, X: 0, Y: 61, W: 12, H: 11, MinW: 5, MinH: 8},
	}
	md := []Placement{
		{I: QueueProcessor, X: 0, Y: 0, W: 5, H: 11, MinW: 4, MinH: 8},
		{I: UnrecognizedFiles, X: 5, Y: 0, W: 5, H: 11, MinW: 4, MinH: 8},
		{I: RecentlyImported, X: 0, Y: 11, W: 10, H: 11, MinW: 4, MinH: 8},
		{I: CollectionBreakdown, X: 0, Y: 22, W: 5, H: 6, MinW: 3, MinH: 5},
		{I: CollectionTypeBreakdown, X: 5, Y: 22, W: 5, H: 6, MinW: 3, MinH: 5},
		{I: ImportFolders, X: 0, Y: 28, W: 5, H: 6, MinW: 3, MinH: 5},
		{I: ShokoNews, X: 5, Y: 28, W: 5, H: 6, MinW: 3, MinH: 5},
		{I: ContinueWatching, X: 0, Y: 34, W: 10, H: 11, MinW: 4, MinH: 8},
		{I: NextUp, X: 0, Y: 45, W: 10, H: 11, MinW: 4, MinH: 8},
		{I: UpcomingAnime, X: 0, Y: 56, W: 10, H: 11, MinW: 4, MinH: 8},
		{I: RecommendedAnime, X: 0, Y: 67, W: 10, H: 11, MinW: 4, MinH: 8},
	}
	sm := make([]Placement, 0, len(lg))
	y := 0
	for _, p := range lg {
		h := p.H
		sm = append(sm, Placement{I: p.I, X: 0, Y: y, W: 6, H: h, MinW: 3, MinH: p.MinH})
		y += h
	}
	return Layouts{LG: lg, MD: md, SM: sm}
}
