// Package activity stores the event history of editing sessions, indexed
// by the session, field and program type each event refers to.
package activity

import "time"

// QueryOptions controls filtering and pagination for entity activity queries.
type QueryOptions struct {
	Since      *time.Time
	Until      *time.Time
	Categories []string // "session", "field", "options"
	MinWeight  string   // minimum weight threshold (default: "info")
	Limit      int      // max results (default: 100, max: 500)
	Cursor     string   // occurred_at of the last entry of the previous page
}

// SearchOptions controls filtering for full-text activity search.
type SearchOptions struct {
	EntityType string
	Since      *time.Time
	Categories []string
	Limit      int // default: 20
}

// DefaultQueryOptions returns QueryOptions covering the last day.
func DefaultQueryOptions() QueryOptions {
	since := time.Now().Add(-24 * time.Hour)
	return QueryOptions{
		Since:     &since,
		MinWeight: "info",
		Limit:     100,
	}
}

// DefaultSearchOptions returns SearchOptions with sensible defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: 20}
}

// weightOrder ranks weights, most severe first.
var weightOrder = map[string]int{
	"major": 0,
	"minor": 1,
	"info":  2,
}

// IsAtLeastWeight reports whether actual is at least as severe as minimum.
// Unknown weights rank below "info".
func IsAtLeastWeight(actual, minimum string) bool {
	return severity(actual) <= severity(minimum)
}

func severity(weight string) int {
	if s, ok := weightOrder[weight]; ok {
		return s
	}
	return len(weightOrder)
}

func limitOr(limit, def, max int) int {
	if limit <= 0 || limit > max {
		return def
	}
	return limit
}
