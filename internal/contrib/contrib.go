// Package contrib buckets repository activity events into fixed time
// windows per actor. Aggregation is pure: events in, rows out, no I/O.
package contrib

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// Window describes the analysis range. Buckets are laid out forward from
// Now minus Days in fixed steps; the last bucket is truncated at Now.
// Membership is half-open: start <= t < end.
type Window struct {
	Days        int
	Granularity domain.Granularity
	Now         time.Time
}

func (w Window) step() time.Duration {
	if w.Granularity == domain.BucketWeekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

func (w Window) start() time.Time {
	return w.Now.Add(-time.Duration(w.Days) * 24 * time.Hour)
}

func (w Window) bucketCount() int {
	span := time.Duration(w.Days) * 24 * time.Hour
	step := w.step()
	n := int(span / step)
	if span%step != 0 {
		n++
	}
	return n
}

// Bounds returns the half-open interval of bucket i.
func (w Window) Bounds(i int) (start, end time.Time) {
	step := w.step()
	start = w.start().Add(time.Duration(i) * step)
	end = start.Add(step)
	if end.After(w.Now) {
		end = w.Now
	}
	return start, end
}

// Events carries the normalized activity records to aggregate.
type Events struct {
	Commits []domain.CommitEvent
	Issues  []domain.IssueEvent
	Pulls   []domain.PullEvent
	Reviews []domain.ReviewEvent
}

// Result is the bucketed aggregation.
type Result struct {
	Rows   []domain.ContributionRow
	Totals domain.ActivityCounts
	Trend  domain.TrendSummary
}

// Aggregate distributes events into (bucket, actor) cells. Actors are keyed
// by their numeric account ID, so login renames inside the window cannot
// split anyone's counts. Actors without any in-window activity produce no
// rows.
func Aggregate(events Events, window Window) Result {
	n := window.bucketCount()
	if n <= 0 {
		return Result{}
	}

	type cellKey struct {
		bucket int
		actor  int64
	}
	cells := make(map[cellKey]*domain.ActivityCounts)
	logins := make(map[int64]string)
	bucketTotals := make([]int, n)

	bucketOf := func(t time.Time) (int, bool) {
		if t.Before(window.start()) || !t.Before(window.Now) {
			return 0, false
		}
		i := int(t.Sub(window.start()) / window.step())
		if i < 0 || i >= n {
			return 0, false
		}
		return i, true
	}

	credit := func(actor domain.Actor, t time.Time, bump func(*domain.ActivityCounts)) {
		i, ok := bucketOf(t)
		if !ok {
			return
		}
		if actor.Login != "" {
			logins[actor.ID] = actor.Login
		}
		key := cellKey{bucket: i, actor: actor.ID}
		counts, ok := cells[key]
		if !ok {
			counts = &domain.ActivityCounts{}
			cells[key] = counts
		}
		bump(counts)
		bucketTotals[i]++
	}

	for _, c := range events.Commits {
		credit(c.Author, c.When, func(counts *domain.ActivityCounts) { counts.Commits++ })
	}
	for _, issue := range events.Issues {
		credit(issue.Author, issue.OpenedAt, func(counts *domain.ActivityCounts) { counts.IssuesOpened++ })
		if issue.ClosedAt != nil {
			closer := issue.Author
			if issue.ClosedBy != nil {
				closer = *issue.ClosedBy
			}
			credit(closer, *issue.ClosedAt, func(counts *domain.ActivityCounts) { counts.IssuesClosed++ })
		}
	}
	for _, pull := range events.Pulls {
		credit(pull.Author, pull.OpenedAt, func(counts *domain.ActivityCounts) { counts.PRsOpened++ })
		if pull.MergedAt != nil {
			merger := pull.Author
			if pull.MergedBy != nil {
				merger = *pull.MergedBy
			}
			credit(merger, *pull.MergedAt, func(counts *domain.ActivityCounts) { counts.PRsMerged++ })
		}
	}
	for _, review := range events.Reviews {
		credit(review.Reviewer, review.When, func(counts *domain.ActivityCounts) { counts.PRsReviewed++ })
	}

	var result Result
	for i := 0; i < n; i++ {
		start, end := window.Bounds(i)
		var bucketRows []domain.ContributionRow
		for key, counts := range cells {
			if key.bucket != i {
				continue
			}
			bucketRows = append(bucketRows, domain.ContributionRow{
				WindowStart: start,
				WindowEnd:   end,
				Actor:       domain.Actor{ID: key.actor, Login: logins[key.actor]},
				Counts:      *counts,
				Total:       counts.Total(),
			})
			result.Totals.Add(*counts)
		}
		sort.Slice(bucketRows, func(a, b int) bool {
			if bucketRows[a].Total != bucketRows[b].Total {
				return bucketRows[a].Total > bucketRows[b].Total
			}
			return bucketRows[a].Actor.Login < bucketRows[b].Actor.Login
		})
		result.Rows = append(result.Rows, bucketRows...)
	}

	result.Trend = trend(bucketTotals)
	return result
}

// trend summarizes the distribution of per-bucket activity totals. Empty
// buckets count as zeros; a dormant fortnight should drag the median down.
func trend(bucketTotals []int) domain.TrendSummary {
	if len(bucketTotals) == 0 {
		return domain.TrendSummary{}
	}
	data := make(stats.Float64Data, len(bucketTotals))
	for i, total := range bucketTotals {
		data[i] = float64(total)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return domain.TrendSummary{}
	}
	median, err := stats.Median(data)
	if err != nil {
		return domain.TrendSummary{}
	}
	p90, err := stats.Percentile(data, 90)
	if err != nil {
		return domain.TrendSummary{Mean: mean, Median: median}
	}
	return domain.TrendSummary{Mean: mean, Median: median, P90: p90}
}

// ByRepo folds a per-repository activity map into sorted rows, most active
// repository first, ties broken by name.
func ByRepo(activity map[string]domain.ActivityCounts) []domain.UserRepoActivity {
	rows := make([]domain.UserRepoActivity, 0, len(activity))
	for repo, counts := range activity {
		rows = append(rows, domain.UserRepoActivity{
			Repo:   repo,
			Counts: counts,
			Total:  counts.Total(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Repo < rows[j].Repo
	})
	return rows
}
