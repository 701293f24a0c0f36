// Package usecase contains the business logic of the application. Each
// service orchestrates one operation: it validates input, drives the
// gateway for the raw resources, and hands them to the pure analysis
// packages.
package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"github.com/Amama-Fatima/github-insights/internal/contrib"
	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/gateway"
)

// ContributionService computes bucketed contribution analytics for a
// repository.
type ContributionService struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewContributionService creates a new ContributionService instance.
func NewContributionService(fetcher gateway.Fetcher, logger *log.Logger) *ContributionService {
	return &ContributionService{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// RepoContributions buckets the repository's commit, issue, pull request,
// and review activity of the last days into per-actor rows.
func (s *ContributionService) RepoContributions(ctx context.Context, owner, repo string, days int, granularity domain.Granularity) (domain.ContributionReport, error) {
	if err := domain.ValidateRepoRef(owner, repo); err != nil {
		return domain.ContributionReport{}, err
	}
	if err := domain.ValidateWindowDays(days); err != nil {
		return domain.ContributionReport{}, err
	}
	if granularity == "" {
		granularity = domain.BucketDaily
	}
	s.logger.Printf("Usecase: Aggregating %s contributions for %s/%s over %d days...", granularity, owner, repo, days)

	window := contrib.Window{Days: days, Granularity: granularity, Now: s.now().UTC()}
	since := window.Now.Add(-time.Duration(days) * 24 * time.Hour)

	var (
		commits []*github.RepositoryCommit
		issues  []*github.Issue
		pulls   []*github.PullRequest
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		commits, err = s.fetcher.FetchCommits(egCtx, owner, repo, since, window.Now, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		issues, err = s.fetcher.FetchIssues(egCtx, owner, repo, "all", since, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		pulls, err = s.fetcher.FetchPulls(egCtx, owner, repo, "all", 0)
		return err
	})
	if err := eg.Wait(); err != nil {
		return domain.ContributionReport{}, err
	}

	events := contrib.Events{
		Commits: commitEvents(commits),
		Issues:  issueEvents(issues),
		Pulls:   pullEvents(pulls),
	}

	// Reviews live one call behind each pull request. Only pulls touched
	// since the window start can carry in-window reviews.
	for _, pr := range pulls {
		if pr.GetUpdatedAt().Time.Before(since) {
			continue
		}
		reviews, err := s.fetcher.FetchPullReviews(ctx, owner, repo, pr.GetNumber(), 0)
		if err != nil {
			return domain.ContributionReport{}, fmt.Errorf("fetching reviews of %s/%s#%d: %w", owner, repo, pr.GetNumber(), err)
		}
		events.Reviews = append(events.Reviews, reviewEvents(reviews)...)
	}

	result := contrib.Aggregate(events, window)
	s.logger.Printf("Usecase: Aggregated %d activity events into %d rows.", result.Totals.Total(), len(result.Rows))

	return domain.ContributionReport{
		Owner:       owner,
		Repo:        repo,
		WindowDays:  days,
		Granularity: granularity,
		Rows:        result.Rows,
		Totals:      result.Totals,
		Trend:       result.Trend,
		GeneratedAt: window.Now,
	}, nil
}

func actorOf(user *github.User) domain.Actor {
	return domain.Actor{ID: user.GetID(), Login: user.GetLogin()}
}

// commitEvents keeps commits whose author maps to a platform account.
// Commits with an unlinked author cannot be attributed to anyone.
func commitEvents(commits []*github.RepositoryCommit) []domain.CommitEvent {
	var events []domain.CommitEvent
	for _, c := range commits {
		if c.GetAuthor() == nil {
			continue
		}
		events = append(events, domain.CommitEvent{
			Author: actorOf(c.GetAuthor()),
			When:   c.GetCommit().GetAuthor().GetDate().Time,
		})
	}
	return events
}

// issueEvents drops pull requests from the issues listing; they are
// counted through pullEvents instead.
func issueEvents(issues []*github.Issue) []domain.IssueEvent {
	var events []domain.IssueEvent
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		event := domain.IssueEvent{
			Author:   actorOf(issue.GetUser()),
			OpenedAt: issue.GetCreatedAt().Time,
		}
		if issue.ClosedAt != nil {
			closedAt := issue.ClosedAt.Time
			event.ClosedAt = &closedAt
		}
		if issue.ClosedBy != nil {
			closedBy := actorOf(issue.ClosedBy)
			event.ClosedBy = &closedBy
		}
		events = append(events, event)
	}
	return events
}

func pullEvents(pulls []*github.PullRequest) []domain.PullEvent {
	var events []domain.PullEvent
	for _, pr := range pulls {
		event := domain.PullEvent{
			Author:   actorOf(pr.GetUser()),
			OpenedAt: pr.GetCreatedAt().Time,
		}
		if pr.MergedAt != nil {
			mergedAt := pr.MergedAt.Time
			event.MergedAt = &mergedAt
		}
		if pr.MergedBy != nil {
			mergedBy := actorOf(pr.MergedBy)
			event.MergedBy = &mergedBy
		}
		events = append(events, event)
	}
	return events
}

func reviewEvents(reviews []*github.PullRequestReview) []domain.ReviewEvent {
	var events []domain.ReviewEvent
	for _, r := range reviews {
		if r.GetUser() == nil || r.GetSubmittedAt().IsZero() {
			continue
		}
		events = append(events, domain.ReviewEvent{
			Reviewer: actorOf(r.GetUser()),
			When:     r.GetSubmittedAt().Time,
		})
	}
	return events
}
