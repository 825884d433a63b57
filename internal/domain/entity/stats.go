package entity

// Sentinel values reported by the stats aggregator when the underlying
// aggregate views have no row for the user. Renderers key off these to
// decide whether to show the corresponding section.
const (
	// NoLeader is reported when the ranked weekly totals are empty.
	NoLeader = "No leader yet"

	// NoTopCategory is reported when the user has no top-category row.
	// The top-category section is omitted entirely when this is set.
	NoTopCategory = "None"
)

// WeeklyStats is a user's standing for the current week, derived from
// precomputed aggregate views. It is never persisted by this pipeline;
// it exists only to feed the weekly_reminder renderers.
type WeeklyStats struct {
	KudosReceived int
	KudosGiven    int
	Rank          int // 1-indexed position by total points, 0 when absent from the ranking
	TotalPoints   int
	Leader        string // "<name> (<points> points)" or NoLeader
	TopCategory   string // category label or NoTopCategory
}
