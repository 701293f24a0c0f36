package domain

import "time"

// Category is the kind of work an issue represents.
type Category string

const (
	CategoryBug           Category = "bug"
	CategoryFeature       Category = "feature"
	CategoryDocumentation Category = "documentation"
	CategoryQuestion      Category = "question"
	CategoryOther         Category = "other"
)

// Priority is the suggested urgency of an issue.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TriageResult is the classification of a single issue. Confidence is the
// winning category's share of all scored evidence, in [0, 1]; an issue with
// no matched signals is classified as "other" with confidence 0.
type TriageResult struct {
	Owner           string    `json:"owner"`
	Repo            string    `json:"repo"`
	Number          int       `json:"number"`
	Title           string    `json:"title"`
	Category        Category  `json:"category"`
	Priority        Priority  `json:"priority"`
	Confidence      float64   `json:"confidence"`
	Rationale       []string  `json:"rationale,omitempty"`
	SuggestedLabels []string  `json:"suggested_labels,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}
