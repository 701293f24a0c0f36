package domain

import "time"

// ReviewStatus is the aggregate review state of a pull request.
type ReviewStatus string

const (
	StatusReadyToMerge     ReviewStatus = "ready-to-merge"
	StatusChangesRequested ReviewStatus = "changes-requested"
	StatusUnderReview      ReviewStatus = "under-review"
	StatusAwaitingReview   ReviewStatus = "awaiting-review"
)

// ReviewReport is the derived review summary for a single pull request.
// Complexity is a heuristic score in [0, 100] computed from the size and
// spread of the change; the factors that contributed are listed alongside.
type ReviewReport struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Author string `json:"author"`
	State  string `json:"state"`
	Draft  bool   `json:"draft"`
	Merged bool   `json:"merged"`

	FilesChanged int      `json:"files_changed"`
	Additions    int      `json:"additions"`
	Deletions    int      `json:"deletions"`
	Commits      int      `json:"commits"`
	Languages    []string `json:"languages,omitempty"`

	Complexity        int          `json:"complexity"`
	ComplexityFactors []string     `json:"complexity_factors,omitempty"`
	Status            ReviewStatus `json:"status"`
	RiskFactors       []string     `json:"risk_factors,omitempty"`

	Approvals        int      `json:"approvals"`
	ChangesRequested int      `json:"changes_requested"`
	ReviewComments   int      `json:"review_comments"`
	Reviewers        []string `json:"reviewers,omitempty"`

	// Latency is nil when the pull request has no submitted reviews.
	Latency *ReviewLatency `json:"review_latency,omitempty"`

	Recommendations []string  `json:"recommendations,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// ReviewLatency summarizes how long reviews took to arrive, in seconds
// measured from the pull request's creation.
type ReviewLatency struct {
	FirstSeconds  float64 `json:"first_seconds"`
	LastSeconds   float64 `json:"last_seconds"`
	MedianSeconds float64 `json:"median_seconds"`
	P90Seconds    float64 `json:"p90_seconds"`
}
