// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Actor is a GitHub account referenced by activity events. ID is the
// numeric account ID and is the identity used for grouping, so a login
// rename mid-window does not split an actor's counts. Login is carried
// for display only.
type Actor struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// CommitEvent is a single authored commit.
type CommitEvent struct {
	Author Actor
	When   time.Time
}

// IssueEvent is the lifecycle of a single issue within the analysis window.
type IssueEvent struct {
	Author   Actor
	OpenedAt time.Time
	ClosedAt *time.Time
	ClosedBy *Actor
}

// PullEvent is the lifecycle of a single pull request.
type PullEvent struct {
	Author   Actor
	OpenedAt time.Time
	MergedAt *time.Time
	MergedBy *Actor
}

// ReviewEvent is a single submitted pull request review.
type ReviewEvent struct {
	Reviewer Actor
	When     time.Time
}

// ActivityCounts holds per-actor activity tallies for one time bucket.
type ActivityCounts struct {
	Commits      int `json:"commits"`
	IssuesOpened int `json:"issues_opened"`
	IssuesClosed int `json:"issues_closed"`
	PRsOpened    int `json:"prs_opened"`
	PRsMerged    int `json:"prs_merged"`
	PRsReviewed  int `json:"prs_reviewed"`
}

// Total is the sum of all counts in the bucket.
func (c ActivityCounts) Total() int {
	return c.Commits + c.IssuesOpened + c.IssuesClosed + c.PRsOpened + c.PRsMerged + c.PRsReviewed
}

// Add accumulates other into c.
func (c *ActivityCounts) Add(other ActivityCounts) {
	c.Commits += other.Commits
	c.IssuesOpened += other.IssuesOpened
	c.IssuesClosed += other.IssuesClosed
	c.PRsOpened += other.PRsOpened
	c.PRsMerged += other.PRsMerged
	c.PRsReviewed += other.PRsReviewed
}

// Granularity selects the bucket width for contribution aggregation.
type Granularity string

const (
	BucketDaily  Granularity = "daily"
	BucketWeekly Granularity = "weekly"
)

// ContributionRow is one (bucket, actor) cell of the aggregation, flattened
// for output. Rows are ordered by window start ascending, then total
// descending, then login ascending.
type ContributionRow struct {
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Actor       Actor          `json:"actor"`
	Counts      ActivityCounts `json:"counts"`
	Total       int            `json:"total"`
}

// TrendSummary describes the distribution of per-bucket activity totals.
type TrendSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// ContributionReport is the bucketed activity aggregation for a repository.
type ContributionReport struct {
	Owner       string            `json:"owner"`
	Repo        string            `json:"repo"`
	WindowDays  int               `json:"window_days"`
	Granularity Granularity       `json:"granularity"`
	Rows        []ContributionRow `json:"rows"`
	Totals      ActivityCounts    `json:"totals"`
	Trend       TrendSummary      `json:"trend"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// UserRepoActivity is one repository's share of a user's activity.
type UserRepoActivity struct {
	Repo   string         `json:"repo"`
	Counts ActivityCounts `json:"counts"`
	Total  int            `json:"total"`
}

// UserContributionReport summarizes a single user's activity across all
// repositories within the window. Repos are ordered by total descending,
// then name ascending.
type UserContributionReport struct {
	Login       string             `json:"login"`
	Name        string             `json:"name,omitempty"`
	WindowDays  int                `json:"window_days"`
	Totals      ActivityCounts     `json:"totals"`
	Repos       []UserRepoActivity `json:"repos"`
	GeneratedAt time.Time          `json:"generated_at"`
}
