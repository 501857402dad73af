// Package signals condenses the activity of a session, field or program
// type into a health summary, escalating patterns such as a resource center
// that keeps failing while the user edits.
package signals

import "time"

// Rule escalates when enough matching activity entries fall inside a window
// ending at the summary's Until.
type Rule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	TriggerType string `json:"trigger_type"` // "count", "cross_category"

	// count rules
	EventType string `json:"event_type,omitempty"`
	Category  string `json:"category,omitempty"`
	Count     int    `json:"count,omitempty"`

	// cross_category rules
	RequiredCategories []CategoryRequirement `json:"required_categories,omitempty"`

	Within               time.Duration `json:"within"`
	EscalatedWeight      string        `json:"escalated_weight"`
	EscalatedDescription string        `json:"escalated_description"`
	RecommendedAction    string        `json:"recommended_action,omitempty"`
}

// CategoryRequirement is one leg of a cross_category rule. An empty Weight
// matches any weight.
type CategoryRequirement struct {
	Category string `json:"category"`
	Weight   string `json:"weight,omitempty"`
	MinCount int    `json:"min_count"`
}

// Rules is the registry evaluated by Aggregate.
var Rules = []Rule{
	{
		ID:                   "options_fetch_repeated",
		Description:          "Option fetches keep failing",
		TriggerType:          "count",
		EventType:            "options_fetch_failed",
		Count:                3,
		Within:               10 * time.Minute,
		EscalatedWeight:      "major",
		EscalatedDescription: "3+ failed option fetches in 10 minutes. The resource center is likely down.",
		RecommendedAction:    "Check the resource store; pickers keep showing their previous options.",
	},
	{
		ID:          "editing_with_stale_options",
		Description: "Fields keep changing while option fetches fail",
		TriggerType: "cross_category",
		RequiredCategories: []CategoryRequirement{
			{Category: "options", Weight: "major", MinCount: 1},
			{Category: "field", MinCount: 5},
		},
		Within:               30 * time.Minute,
		EscalatedWeight:      "minor",
		EscalatedDescription: "The record is being edited against stale option trees.",
		RecommendedAction:    "Re-validate the main package and resources once the resource store recovers.",
	},
	{
		ID:                   "program_type_churn",
		Description:          "Program type switched back and forth",
		TriggerType:          "count",
		EventType:            "options_loaded",
		Count:                6,
		Within:               5 * time.Minute,
		EscalatedWeight:      "info",
		EscalatedDescription: "Frequent program type switches; each one clears the main class and package.",
	},
}
