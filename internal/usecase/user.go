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

// UserActivityService aggregates a single user's activity across all
// repositories via the search API.
type UserActivityService struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewUserActivityService creates a new UserActivityService instance.
func NewUserActivityService(fetcher gateway.Fetcher, logger *log.Logger) *UserActivityService {
	return &UserActivityService{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// UserContributions sums the user's commits, authored issues and pull
// requests, and reviewed pull requests of the last days, grouped by
// repository. Closed and merged counts track the user's own items reaching
// that state inside the window.
func (s *UserActivityService) UserContributions(ctx context.Context, login string, days int) (domain.UserContributionReport, error) {
	if err := domain.ValidateOwner(login); err != nil {
		return domain.UserContributionReport{}, err
	}
	if err := domain.ValidateWindowDays(days); err != nil {
		return domain.UserContributionReport{}, err
	}
	s.logger.Printf("Usecase: Aggregating activity of %s over %d days...", login, days)

	now := s.now().UTC()
	since := now.AddDate(0, 0, -days)
	sinceDate := since.Format("2006-01-02")
	term := domain.SanitizeQueryTerm(login)

	user, err := s.fetcher.FetchUser(ctx, login)
	if err != nil {
		return domain.UserContributionReport{}, err
	}

	var (
		commitHits []*github.CommitResult
		authored   []gateway.ActivityItem
		reviewed   []gateway.ActivityItem
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		commitHits, err = s.fetcher.SearchCommits(egCtx, fmt.Sprintf("author:%s committer-date:>=%s", term, sinceDate), 0)
		return err
	})
	eg.Go(func() error {
		var err error
		authored, err = s.fetcher.SearchUserActivity(egCtx, fmt.Sprintf("author:%s created:>=%s", term, sinceDate), 0)
		return err
	})
	eg.Go(func() error {
		var err error
		reviewed, err = s.fetcher.SearchUserActivity(egCtx, fmt.Sprintf("type:pr reviewed-by:%s -author:%s updated:>=%s", term, term, sinceDate), 0)
		return err
	})
	if err := eg.Wait(); err != nil {
		return domain.UserContributionReport{}, err
	}

	inWindow := func(t time.Time) bool {
		return !t.IsZero() && !t.Before(since) && t.Before(now)
	}

	perRepo := make(map[string]domain.ActivityCounts)
	for _, hit := range commitHits {
		repoName := hit.GetRepository().GetFullName()
		if repoName == "" {
			continue
		}
		counts := perRepo[repoName]
		counts.Commits++
		perRepo[repoName] = counts
	}
	for _, item := range authored {
		counts := perRepo[item.Repo]
		switch item.Type {
		case "Issue":
			if inWindow(item.CreatedAt) {
				counts.IssuesOpened++
			}
			if inWindow(item.ClosedAt) {
				counts.IssuesClosed++
			}
		case "PullRequest":
			if inWindow(item.CreatedAt) {
				counts.PRsOpened++
			}
			if item.Merged && inWindow(item.MergedAt) {
				counts.PRsMerged++
			}
		}
		perRepo[item.Repo] = counts
	}
	for _, item := range reviewed {
		if item.Type != "PullRequest" {
			continue
		}
		counts := perRepo[item.Repo]
		counts.PRsReviewed++
		perRepo[item.Repo] = counts
	}
	delete(perRepo, "")

	var totals domain.ActivityCounts
	for _, counts := range perRepo {
		totals.Add(counts)
	}
	s.logger.Printf("Usecase: Found %d activity events across %d repositories.", totals.Total(), len(perRepo))

	return domain.UserContributionReport{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		WindowDays:  days,
		Totals:      totals,
		Repos:       contrib.ByRepo(perRepo),
		GeneratedAt: now,
	}, nil
}
