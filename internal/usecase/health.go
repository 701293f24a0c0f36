package usecase

import (
	"context"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/gateway"
	"github.com/Amama-Fatima/github-insights/internal/health"
)

// hygieneWindowDays bounds the closed-issues sample used for the issue
// hygiene signal. Hygiene is about recent upkeep, not all of history.
const hygieneWindowDays = 365

// HealthService assembles the raw inputs for health scoring.
type HealthService struct {
	fetcher gateway.Fetcher
	deps    *DependencyService
	scorer  *health.Scorer
	logger  *log.Logger
}

// NewHealthService creates a new HealthService instance. The dependency
// service supplies the declared dependencies for the freshness signal.
func NewHealthService(fetcher gateway.Fetcher, deps *DependencyService, scorer *health.Scorer, logger *log.Logger) *HealthService {
	return &HealthService{
		fetcher: fetcher,
		deps:    deps,
		scorer:  scorer,
		logger:  logger,
	}
}

// CheckHealth scores the repository's health from its metadata, tree,
// recent activity, and declared dependencies.
func (s *HealthService) CheckHealth(ctx context.Context, owner, repo string) (domain.HealthReport, error) {
	if err := domain.ValidateRepoRef(owner, repo); err != nil {
		return domain.HealthReport{}, err
	}
	s.logger.Printf("Usecase: Checking health of %s/%s...", owner, repo)

	repository, err := s.fetcher.FetchRepository(ctx, owner, repo)
	if err != nil {
		return domain.HealthReport{}, err
	}
	meta := domain.RepoMetadata{
		Owner:         owner,
		Repo:          repo,
		Description:   repository.GetDescription(),
		DefaultBranch: repository.GetDefaultBranch(),
		Archived:      repository.GetArchived(),
		Stars:         repository.GetStargazersCount(),
		Forks:         repository.GetForksCount(),
		PushedAt:      repository.GetPushedAt().Time,
	}

	var (
		tree         *github.Tree
		latestCommit []*github.RepositoryCommit
		openIssues   []*github.Issue
		closedIssues []*github.Issue
		contributors []*github.Contributor
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		tree, err = s.fetcher.FetchTree(egCtx, owner, repo, meta.DefaultBranch)
		return err
	})
	eg.Go(func() error {
		var err error
		latestCommit, err = s.fetcher.FetchCommits(egCtx, owner, repo, time.Time{}, time.Time{}, 1)
		return err
	})
	eg.Go(func() error {
		var err error
		openIssues, err = s.fetcher.FetchIssues(egCtx, owner, repo, "open", time.Time{}, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		since := time.Now().AddDate(0, 0, -hygieneWindowDays)
		closedIssues, err = s.fetcher.FetchIssues(egCtx, owner, repo, "closed", since, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		contributors, err = s.fetcher.FetchContributors(egCtx, owner, repo, 0)
		return err
	})
	if err := eg.Wait(); err != nil {
		return domain.HealthReport{}, err
	}
	s.logger.Println("Usecase: All health inputs fetched.")

	paths := blobPaths(tree)
	meta.HasReadme, meta.HasLicense, meta.HasCI, meta.HasTests = classifyPaths(paths)

	_, entries, _, err := s.deps.scanTree(ctx, owner, repo, paths)
	if err != nil {
		return domain.HealthReport{}, err
	}

	activity := domain.ActivitySummary{
		LastCommitAt: lastCommitTime(latestCommit),
		OpenIssues:   countIssues(openIssues),
		ClosedIssues: countIssues(closedIssues),
		Contributors: len(contributors),
	}
	return s.scorer.Score(ctx, meta, entries, activity)
}

func lastCommitTime(commits []*github.RepositoryCommit) time.Time {
	if len(commits) == 0 {
		return time.Time{}
	}
	return commits[0].GetCommit().GetCommitter().GetDate().Time
}

// countIssues counts real issues; the issues listing also returns pull
// requests.
func countIssues(issues []*github.Issue) int {
	count := 0
	for _, issue := range issues {
		if !issue.IsPullRequest() {
			count++
		}
	}
	return count
}

// classifyPaths derives the presence booleans from a recursive file
// listing. README and license files only count at the repository root.
func classifyPaths(paths []string) (readme, license, ci, tests bool) {
	for _, p := range paths {
		lower := strings.ToLower(p)
		base := path.Base(lower)
		atRoot := !strings.Contains(lower, "/")

		if atRoot && strings.HasPrefix(base, "readme") {
			readme = true
		}
		if atRoot && (strings.HasPrefix(base, "license") || strings.HasPrefix(base, "licence") || strings.HasPrefix(base, "copying")) {
			license = true
		}
		if isCIPath(lower, base) {
			ci = true
		}
		if isTestPath(lower, base) {
			tests = true
		}
	}
	return readme, license, ci, tests
}

func isCIPath(lower, base string) bool {
	if strings.HasPrefix(lower, ".github/workflows/") && (strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")) {
		return true
	}
	switch lower {
	case ".travis.yml", ".gitlab-ci.yml", ".circleci/config.yml", ".drone.yml", "azure-pipelines.yml":
		return true
	}
	return base == "jenkinsfile"
}

var testPathMarkers = []string{"test/", "tests/", "spec/", "__tests__/"}

func isTestPath(lower, base string) bool {
	for _, marker := range testPathMarkers {
		if strings.HasPrefix(lower, marker) || strings.Contains(lower, "/"+marker) {
			return true
		}
	}
	switch {
	case strings.HasSuffix(lower, "_test.go"),
		strings.HasSuffix(lower, "_test.py"),
		strings.HasSuffix(lower, "_spec.rb"),
		strings.HasSuffix(lower, ".test.js"),
		strings.HasSuffix(lower, ".test.ts"),
		strings.HasSuffix(lower, ".test.jsx"),
		strings.HasSuffix(lower, ".test.tsx"),
		strings.HasSuffix(lower, ".spec.js"),
		strings.HasSuffix(lower, ".spec.ts"):
		return true
	}
	return strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py")
}
