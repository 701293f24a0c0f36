// Package review condenses a pull request's raw activity into a review
// summary with a complexity score, review status, and risk factors.
package review

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// Complexity thresholds. Each breached tier contributes a fixed number of
// points; the total is capped at 100.
const (
	manyFiles     = 20
	someFiles     = 10
	hugeChange    = 1000
	largeChange   = 500
	manyLanguages = 3
	largeFileSize = 100
	manyCommits   = 10
)

// Input carries the raw pull request data the summarizer condenses. State
// and review states use the REST API's wire values verbatim.
type Input struct {
	Owner  string
	Repo   string
	Number int
	Title  string
	Author string
	State  string
	Draft  bool
	Merged bool

	// Mergeable is nil while the merge state is still being computed.
	Mergeable *bool

	Body      string
	CreatedAt time.Time
	Commits   int
	Files     []FileChange
	Reviews   []Review

	// InlineComments is the number of review comments on the diff.
	InlineComments int
}

// FileChange is one changed file in the pull request.
type FileChange struct {
	Path      string
	Additions int
	Deletions int
}

// Review is one submitted review.
type Review struct {
	Reviewer    string
	State       string
	SubmittedAt time.Time
}

// Summarize derives the review report. It is a pure function of its input,
// so the same pull request data always yields the same report.
func Summarize(in Input, generatedAt time.Time) domain.ReviewReport {
	additions, deletions, largeFiles := 0, 0, 0
	for _, f := range in.Files {
		additions += f.Additions
		deletions += f.Deletions
		if f.Additions+f.Deletions > largeFileSize {
			largeFiles++
		}
	}
	languages := detectLanguages(in.Files)

	complexity, factors := scoreComplexity(len(in.Files), additions+deletions, len(languages), largeFiles, in.Commits)
	approvals, changesRequested, reviewers := tallyReviews(in.Reviews)
	status := reviewStatus(approvals, changesRequested, len(in.Reviews), in.InlineComments)
	risks, recommendations := assessRisks(in, additions+deletions, len(languages))

	return domain.ReviewReport{
		Owner:  in.Owner,
		Repo:   in.Repo,
		Number: in.Number,
		Title:  in.Title,
		Author: in.Author,
		State:  in.State,
		Draft:  in.Draft,
		Merged: in.Merged,

		FilesChanged: len(in.Files),
		Additions:    additions,
		Deletions:    deletions,
		Commits:      in.Commits,
		Languages:    languages,

		Complexity:        complexity,
		ComplexityFactors: factors,
		Status:            status,
		RiskFactors:       risks,

		Approvals:        approvals,
		ChangesRequested: changesRequested,
		ReviewComments:   in.InlineComments,
		Reviewers:        reviewers,

		Latency:         reviewLatency(in.CreatedAt, in.Reviews),
		Recommendations: recommendations,
		GeneratedAt:     generatedAt,
	}
}

func scoreComplexity(files, changes, languages, largeFiles, commits int) (int, []string) {
	score := 0
	var factors []string
	bump := func(points int, format string, args ...interface{}) {
		score += points
		factors = append(factors, fmt.Sprintf(format, args...))
	}

	switch {
	case files > manyFiles:
		bump(30, "%d files changed", files)
	case files > someFiles:
		bump(15, "%d files changed", files)
	}
	switch {
	case changes > hugeChange:
		bump(40, "%d lines changed", changes)
	case changes > largeChange:
		bump(20, "%d lines changed", changes)
	}
	if languages > manyLanguages {
		bump(15, "spans %d languages", languages)
	}
	if largeFiles > 0 {
		bump(15, "%d files with more than %d changed lines", largeFiles, largeFileSize)
	}
	if commits > manyCommits {
		bump(10, "%d commits", commits)
	}
	if score > 100 {
		score = 100
	}
	return score, factors
}

// tallyReviews counts each reviewer's latest verdict. A later approval
// supersedes an earlier change request and vice versa; comment-only and
// dismissed reviews carry no verdict.
func tallyReviews(reviews []Review) (approvals, changesRequested int, reviewers []string) {
	verdicts := make(map[string]Review)
	seen := make(map[string]bool)
	for _, r := range reviews {
		if r.Reviewer == "" {
			continue
		}
		if !seen[r.Reviewer] {
			seen[r.Reviewer] = true
			reviewers = append(reviewers, r.Reviewer)
		}
		switch r.State {
		case "APPROVED", "CHANGES_REQUESTED":
			if prev, ok := verdicts[r.Reviewer]; !ok || r.SubmittedAt.After(prev.SubmittedAt) {
				verdicts[r.Reviewer] = r
			}
		}
	}
	for _, v := range verdicts {
		if v.State == "APPROVED" {
			approvals++
		} else {
			changesRequested++
		}
	}
	sort.Strings(reviewers)
	return approvals, changesRequested, reviewers
}

func reviewStatus(approvals, changesRequested, reviews, comments int) domain.ReviewStatus {
	switch {
	case changesRequested > 0:
		return domain.StatusChangesRequested
	case approvals > 0:
		return domain.StatusReadyToMerge
	case reviews > 0 || comments > 0:
		return domain.StatusUnderReview
	default:
		return domain.StatusAwaitingReview
	}
}

func assessRisks(in Input, changes, languages int) (risks, recommendations []string) {
	flag := func(risk, recommendation string) {
		risks = append(risks, risk)
		recommendations = append(recommendations, recommendation)
	}

	if strings.TrimSpace(in.Body) == "" {
		flag("no description provided",
			"Add a description covering the intent and scope of the change.")
	}
	if in.Mergeable != nil && !*in.Mergeable {
		flag("has merge conflicts with the base branch",
			"Rebase onto the base branch and resolve the conflicts.")
	}
	if changes > hugeChange {
		flag(fmt.Sprintf("large change set (%d lines)", changes),
			"Split the change into smaller pull requests.")
	}
	if in.Commits > manyCommits {
		flag(fmt.Sprintf("%d commits on one branch", in.Commits),
			"Reorganize the history into fewer, self-contained commits.")
	}
	if languages > manyLanguages {
		flag(fmt.Sprintf("touches %d languages", languages),
			"Consider separating the changes per component.")
	}
	return risks, recommendations
}

// reviewLatency measures each review's delay from the pull request's
// creation. Reviews without a submission time are skipped.
func reviewLatency(createdAt time.Time, reviews []Review) *domain.ReviewLatency {
	var latencies []float64
	for _, r := range reviews {
		if r.SubmittedAt.IsZero() {
			continue
		}
		seconds := r.SubmittedAt.Sub(createdAt).Seconds()
		if seconds < 0 {
			seconds = 0
		}
		latencies = append(latencies, seconds)
	}
	if len(latencies) == 0 {
		return nil
	}
	sort.Float64s(latencies)
	out := &domain.ReviewLatency{
		FirstSeconds: latencies[0],
		LastSeconds:  latencies[len(latencies)-1],
	}
	if median, err := stats.Median(latencies); err == nil {
		out.MedianSeconds = median
	}
	if p90, err := stats.Percentile(latencies, 90); err == nil {
		out.P90Seconds = p90
	}
	return out
}

var languageByExt = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".mjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".rb":    "Ruby",
	".java":  "Java",
	".rs":    "Rust",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".hpp":   "C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".scala": "Scala",
	".md":    "Markdown",
	".yml":   "YAML",
	".yaml":  "YAML",
	".json":  "JSON",
	".toml":  "TOML",
	".sh":    "Shell",
	".sql":   "SQL",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "CSS",
	".proto": "Protocol Buffers",
}

// detectLanguages maps file extensions to language names. Files with an
// unrecognized extension are ignored.
func detectLanguages(files []FileChange) []string {
	seen := make(map[string]bool)
	for _, f := range files {
		ext := strings.ToLower(path.Ext(f.Path))
		if lang, ok := languageByExt[ext]; ok && !seen[lang] {
			seen[lang] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for lang := range seen {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
