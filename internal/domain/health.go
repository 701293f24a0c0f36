package domain

import "time"

// RepoMetadata captures the repository facts the health scorer consumes.
// The booleans are derived from a root content listing rather than trusting
// the repository settings payload, so a README that was deleted but still
// cached by the API does not count.
type RepoMetadata struct {
	Owner         string    `json:"owner"`
	Repo          string    `json:"repo"`
	Description   string    `json:"description,omitempty"`
	DefaultBranch string    `json:"default_branch,omitempty"`
	Archived      bool      `json:"archived"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	HasReadme     bool      `json:"has_readme"`
	HasLicense    bool      `json:"has_license"`
	HasCI         bool      `json:"has_ci"`
	HasTests      bool      `json:"has_tests"`
	PushedAt      time.Time `json:"pushed_at"`
}

// ActivitySummary condenses recent repository activity for scoring.
type ActivitySummary struct {
	LastCommitAt time.Time `json:"last_commit_at"`
	OpenIssues   int       `json:"open_issues"`
	ClosedIssues int       `json:"closed_issues"`
	Contributors int       `json:"contributors"`
}

// HealthSignal is one scored dimension of repository health. Ratio is the
// raw sub-score in [0, 1]; Points is Ratio scaled by Weight.
type HealthSignal struct {
	Name     string  `json:"name"`
	Weight   int     `json:"weight"`
	Ratio    float64 `json:"ratio"`
	Points   float64 `json:"points"`
	Evidence string  `json:"evidence,omitempty"`
}

// HealthReport is the scored health assessment of a single repository.
// Score is the weighted sum of all signals, rounded and clamped to [0, 100].
type HealthReport struct {
	Owner           string         `json:"owner"`
	Repo            string         `json:"repo"`
	Score           int            `json:"score"`
	Rating          string         `json:"rating"`
	Signals         []HealthSignal `json:"signals"`
	Recommendations []string       `json:"recommendations,omitempty"`
	GeneratedAt     time.Time      `json:"generated_at"`
}
