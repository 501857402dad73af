package signals

import (
	"sort"
	"time"

	"github.com/matthewbaird/taskform/internal/types"
)

// CategorySummary aggregates the entries of one category.
type CategorySummary struct {
	Category    string         `json:"category"`
	Count       int            `json:"count"`
	ByWeight    map[string]int `json:"by_weight"`
	ByEventType map[string]int `json:"by_event_type"`
	Trend       string         `json:"trend"` // "rising", "stable", "falling"
}

// Escalation is a triggered rule with context.
type Escalation struct {
	Rule             Rule      `json:"rule"`
	TriggeringCount  int       `json:"triggering_count"`
	EarliestOccurred time.Time `json:"earliest_occurred"`
	LatestOccurred   time.Time `json:"latest_occurred"`
}

// Summary is the aggregated overview of one entity.
type Summary struct {
	EntityType   string                     `json:"entity_type"`
	EntityID     string                     `json:"entity_id"`
	Since        time.Time                  `json:"since"`
	Until        time.Time                  `json:"until"`
	Categories   map[string]CategorySummary `json:"categories"`
	Health       string                     `json:"health"` // "healthy", "degraded", "failing"
	HealthReason string                     `json:"health_reason"`
	Escalations  []Escalation               `json:"escalations"`
}

// Aggregate summarizes entries of one entity between since and until.
func Aggregate(entries []types.ActivityEntry, entityType, entityID string, since, until time.Time) Summary {
	categories := make(map[string]*CategorySummary)
	for _, e := range entries {
		cs, ok := categories[e.Category]
		if !ok {
			cs = &CategorySummary{
				Category:    e.Category,
				ByWeight:    make(map[string]int),
				ByEventType: make(map[string]int),
			}
			categories[e.Category] = cs
		}
		cs.Count++
		cs.ByWeight[e.Weight]++
		cs.ByEventType[e.EventType]++
	}

	result := make(map[string]CategorySummary, len(categories))
	for cat, cs := range categories {
		cs.Trend = computeTrend(entries, cat, since, until)
		result[cat] = *cs
	}

	escalations := EvaluateEscalations(entries, until)
	health, reason := computeHealth(result, escalations)

	if escalations == nil {
		escalations = []Escalation{}
	}
	return Summary{
		EntityType:   entityType,
		EntityID:     entityID,
		Since:        since,
		Until:        until,
		Categories:   result,
		Health:       health,
		HealthReason: reason,
		Escalations:  escalations,
	}
}

// EvaluateEscalations checks every registered rule against entries, with
// rule windows ending at now.
func EvaluateEscalations(entries []types.ActivityEntry, now time.Time) []Escalation {
	var escalated []Escalation
	for _, rule := range Rules {
		if es, ok := evaluateRule(rule, entries, now); ok {
			escalated = append(escalated, es)
		}
	}
	return escalated
}

func evaluateRule(rule Rule, entries []types.ActivityEntry, now time.Time) (Escalation, bool) {
	switch rule.TriggerType {
	case "count":
		return evaluateCountRule(rule, entries, now)
	case "cross_category":
		return evaluateCrossCategoryRule(rule, entries, now)
	default:
		return Escalation{}, false
	}
}

func evaluateCountRule(rule Rule, entries []types.ActivityEntry, now time.Time) (Escalation, bool) {
	windowStart := now.Add(-rule.Within)

	var matching []types.ActivityEntry
	for _, e := range entries {
		if e.OccurredAt.Before(windowStart) || e.OccurredAt.After(now) {
			continue
		}
		if rule.EventType != "" && e.EventType != rule.EventType {
			continue
		}
		if rule.Category != "" && e.Category != rule.Category {
			continue
		}
		matching = append(matching, e)
	}
	if len(matching) < rule.Count {
		return Escalation{}, false
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].OccurredAt.Before(matching[j].OccurredAt)
	})
	return Escalation{
		Rule:             rule,
		TriggeringCount:  len(matching),
		EarliestOccurred: matching[0].OccurredAt,
		LatestOccurred:   matching[len(matching)-1].OccurredAt,
	}, true
}

func evaluateCrossCategoryRule(rule Rule, entries []types.ActivityEntry, now time.Time) (Escalation, bool) {
	windowStart := now.Add(-rule.Within)

	counts := make(map[int]int)
	var earliest, latest time.Time
	for _, e := range entries {
		if e.OccurredAt.Before(windowStart) || e.OccurredAt.After(now) {
			continue
		}
		for i, req := range rule.RequiredCategories {
			if e.Category != req.Category || (req.Weight != "" && e.Weight != req.Weight) {
				continue
			}
			counts[i]++
			if earliest.IsZero() || e.OccurredAt.Before(earliest) {
				earliest = e.OccurredAt
			}
			if e.OccurredAt.After(latest) {
				latest = e.OccurredAt
			}
		}
	}

	total := 0
	for i, req := range rule.RequiredCategories {
		if counts[i] < req.MinCount {
			return Escalation{}, false
		}
		total += counts[i]
	}
	return Escalation{
		Rule:             rule,
		TriggeringCount:  total,
		EarliestOccurred: earliest,
		LatestOccurred:   latest,
	}, true
}

// computeTrend compares volume in the first and second half of the window.
func computeTrend(entries []types.ActivityEntry, category string, since, until time.Time) string {
	mid := since.Add(until.Sub(since) / 2)
	var firstHalf, secondHalf int
	for _, e := range entries {
		if e.Category != category {
			continue
		}
		if e.OccurredAt.Before(mid) {
			firstHalf++
		} else {
			secondHalf++
		}
	}
	if secondHalf > firstHalf+1 {
		return "rising"
	}
	if firstHalf > secondHalf+1 {
		return "falling"
	}
	return "stable"
}

func computeHealth(categories map[string]CategorySummary, escalations []Escalation) (string, string) {
	for _, e := range escalations {
		if e.Rule.EscalatedWeight == "major" {
			return "failing", "Escalation triggered: " + e.Rule.EscalatedDescription
		}
	}
	major := 0
	for _, cs := range categories {
		major += cs.ByWeight["major"]
	}
	if major > 0 {
		return "degraded", "Major events present without a sustained pattern."
	}
	for _, e := range escalations {
		if e.Rule.EscalatedWeight == "minor" {
			return "degraded", "Escalation triggered: " + e.Rule.EscalatedDescription
		}
	}
	return "healthy", "No major events in the window."
}
