// Package health scores repository health from presence signals, recent
// activity, and dependency freshness. Scoring is deterministic for a fixed
// clock; the only collaborator that can block is the version lookup.
package health

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/verlookup"
)

// Weights assigns each signal its share of the 100-point scale.
type Weights struct {
	Readme              int `yaml:"readme"`
	License             int `yaml:"license"`
	CI                  int `yaml:"ci"`
	Tests               int `yaml:"tests"`
	CommitRecency       int `yaml:"commit_recency"`
	IssueHygiene        int `yaml:"issue_hygiene"`
	DependencyFreshness int `yaml:"dependency_freshness"`
	ContributorBase     int `yaml:"contributor_base"`
}

// DefaultWeights returns the standard weight table. The entries sum to 100.
func DefaultWeights() Weights {
	return Weights{
		Readme:              10,
		License:             10,
		CI:                  10,
		Tests:               10,
		CommitRecency:       15,
		IssueHygiene:        15,
		DependencyFreshness: 15,
		ContributorBase:     15,
	}
}

// Total is the sum of all weights.
func (w Weights) Total() int {
	return w.Readme + w.License + w.CI + w.Tests +
		w.CommitRecency + w.IssueHygiene + w.DependencyFreshness + w.ContributorBase
}

// LoadWeights parses a YAML weight table. Entries omitted from the document
// keep their default weight, and the result must still distribute the full
// 100-point scale.
func LoadWeights(data []byte) (Weights, error) {
	w := DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("failed to parse health weights: %w", err)
	}
	entries := []struct {
		name  string
		value int
	}{
		{"readme", w.Readme},
		{"license", w.License},
		{"ci", w.CI},
		{"tests", w.Tests},
		{"commit_recency", w.CommitRecency},
		{"issue_hygiene", w.IssueHygiene},
		{"dependency_freshness", w.DependencyFreshness},
		{"contributor_base", w.ContributorBase},
	}
	for _, entry := range entries {
		if entry.value < 0 {
			return Weights{}, fmt.Errorf("health weight %s must not be negative", entry.name)
		}
	}
	if total := w.Total(); total != 100 {
		return Weights{}, fmt.Errorf("health weights must sum to 100, got %d", total)
	}
	return w, nil
}

const (
	// recencyHorizonDays is the window over which commit recency decays
	// from full credit to zero.
	recencyHorizonDays = 365
	// contributorTarget is the contributor count that earns full credit.
	contributorTarget = 10
	// recommendThreshold triggers a recommendation for any signal scoring
	// below half credit.
	recommendThreshold = 0.5
)

// Scorer computes health reports. A nil lookup means dependency staleness
// cannot be judged, which is scored as "no known stale dependencies".
type Scorer struct {
	weights Weights
	lookup  verlookup.Lookup
	logger  *log.Logger
	now     func() time.Time
}

// NewScorer creates a Scorer. lookup may be nil.
func NewScorer(weights Weights, lookup verlookup.Lookup, logger *log.Logger) *Scorer {
	return &Scorer{
		weights: weights,
		lookup:  lookup,
		logger:  logger,
		now:     time.Now,
	}
}

// Score produces the health report for one repository. The context is only
// consulted while resolving dependency versions, the single step that can
// involve I/O.
func (s *Scorer) Score(ctx context.Context, meta domain.RepoMetadata, deps []domain.DependencyEntry, activity domain.ActivitySummary) (domain.HealthReport, error) {
	staleCount, err := s.countStale(ctx, deps)
	if err != nil {
		return domain.HealthReport{}, err
	}

	signals := []domain.HealthSignal{
		presenceSignal("readme", s.weights.Readme, meta.HasReadme, "README present", "no README found"),
		presenceSignal("license", s.weights.License, meta.HasLicense, "license file present", "no license file found"),
		presenceSignal("ci", s.weights.CI, meta.HasCI, "CI workflow configured", "no CI workflow found"),
		presenceSignal("tests", s.weights.Tests, meta.HasTests, "test files present", "no test files found"),
		s.recencySignal(activity.LastCommitAt),
		hygieneSignal(s.weights.IssueHygiene, activity.OpenIssues, activity.ClosedIssues),
		s.freshnessSignal(deps, staleCount),
		contributorSignal(s.weights.ContributorBase, activity.Contributors),
	}

	total := 0.0
	for i := range signals {
		signals[i].Points = signals[i].Ratio * float64(signals[i].Weight)
		total += signals[i].Points
	}
	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	report := domain.HealthReport{
		Owner:           meta.Owner,
		Repo:            meta.Repo,
		Score:           score,
		Rating:          rating(score),
		Signals:         signals,
		Recommendations: recommendations(signals, activity, len(deps), staleCount),
		GeneratedAt:     s.now().UTC(),
	}
	s.logger.Printf("Scored %s/%s: %d (%s)", meta.Owner, meta.Repo, score, report.Rating)
	return report, nil
}

func (s *Scorer) countStale(ctx context.Context, deps []domain.DependencyEntry) (int, error) {
	if s.lookup == nil || len(deps) == 0 {
		return 0, nil
	}
	stale := 0
	for _, dep := range deps {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		latest, ok, err := s.lookup.Latest(ctx, dep.Ecosystem, dep.Name)
		if err != nil {
			s.logger.Printf("  Version lookup failed for %s/%s: %v", dep.Ecosystem, dep.Name, err)
			continue
		}
		if ok && verlookup.Outdated(dep.Version, latest) {
			stale++
		}
	}
	return stale, nil
}

func presenceSignal(name string, weight int, present bool, yes, no string) domain.HealthSignal {
	sig := domain.HealthSignal{Name: name, Weight: weight, Evidence: no}
	if present {
		sig.Ratio = 1
		sig.Evidence = yes
	}
	return sig
}

func (s *Scorer) recencySignal(lastCommit time.Time) domain.HealthSignal {
	sig := domain.HealthSignal{Name: "commit_recency", Weight: s.weights.CommitRecency}
	if lastCommit.IsZero() {
		sig.Evidence = "no commits found"
		return sig
	}
	days := s.now().Sub(lastCommit).Hours() / 24
	if days < 0 {
		days = 0
	}
	sig.Ratio = 1 - math.Min(days/recencyHorizonDays, 1)
	sig.Evidence = fmt.Sprintf("last commit %d days ago", int(days))
	return sig
}

func hygieneSignal(weight, open, closed int) domain.HealthSignal {
	sig := domain.HealthSignal{Name: "issue_hygiene", Weight: weight}
	if open+closed == 0 {
		sig.Evidence = "no issues found"
		return sig
	}
	sig.Ratio = float64(closed) / float64(open+closed)
	sig.Evidence = fmt.Sprintf("%d of %d issues closed", closed, open+closed)
	return sig
}

func (s *Scorer) freshnessSignal(deps []domain.DependencyEntry, stale int) domain.HealthSignal {
	sig := domain.HealthSignal{Name: "dependency_freshness", Weight: s.weights.DependencyFreshness}
	if len(deps) == 0 {
		sig.Evidence = "no declared dependencies found"
		return sig
	}
	if s.lookup == nil {
		sig.Ratio = 1
		sig.Evidence = fmt.Sprintf("%d dependencies, no version inventory to compare against", len(deps))
		return sig
	}
	sig.Ratio = 1 - float64(stale)/float64(len(deps))
	sig.Evidence = fmt.Sprintf("%d of %d dependencies behind their latest known version", stale, len(deps))
	return sig
}

func contributorSignal(weight, contributors int) domain.HealthSignal {
	sig := domain.HealthSignal{Name: "contributor_base", Weight: weight}
	n := contributors
	if n > contributorTarget {
		n = contributorTarget
	}
	sig.Ratio = float64(n) / contributorTarget
	sig.Evidence = fmt.Sprintf("%d contributors", contributors)
	return sig
}

func rating(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "poor"
	}
}

func recommendations(signals []domain.HealthSignal, activity domain.ActivitySummary, depCount, staleCount int) []string {
	var recs []string
	for _, sig := range signals {
		if sig.Ratio >= recommendThreshold {
			continue
		}
		switch sig.Name {
		case "readme":
			recs = append(recs, "Add a README to explain what the project does and how to use it.")
		case "license":
			recs = append(recs, "Add a license so consumers know how they may use the code.")
		case "ci":
			recs = append(recs, "Set up a continuous integration workflow.")
		case "tests":
			recs = append(recs, "Add automated tests.")
		case "commit_recency":
			recs = append(recs, "Commit activity has gone quiet; revive development or archive the repository.")
		case "issue_hygiene":
			recs = append(recs, fmt.Sprintf("Triage the issue backlog; only %d of %d issues are closed.", activity.ClosedIssues, activity.OpenIssues+activity.ClosedIssues))
		case "dependency_freshness":
			if depCount == 0 {
				recs = append(recs, "Declare dependencies in a manifest so freshness can be assessed.")
			} else {
				recs = append(recs, fmt.Sprintf("Update outdated dependencies; %d of %d are behind their latest known version.", staleCount, depCount))
			}
		case "contributor_base":
			recs = append(recs, "Grow the contributor base; the project depends on very few people.")
		}
	}
	return recs
}
