package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/gateway"
	"github.com/Amama-Fatima/github-insights/internal/review"
)

// ReviewService summarizes the review state of a pull request.
type ReviewService struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewReviewService creates a new ReviewService instance.
func NewReviewService(fetcher gateway.Fetcher, logger *log.Logger) *ReviewService {
	return &ReviewService{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// SummarizePull fetches the pull request with its files, commits, reviews,
// and comments, and condenses them into a review report.
func (s *ReviewService) SummarizePull(ctx context.Context, owner, repo string, number int) (domain.ReviewReport, error) {
	if err := domain.ValidateRepoRef(owner, repo); err != nil {
		return domain.ReviewReport{}, err
	}
	if err := domain.ValidateIssueNumber(number); err != nil {
		return domain.ReviewReport{}, err
	}
	s.logger.Printf("Usecase: Summarizing reviews of %s/%s#%d...", owner, repo, number)

	pull, err := s.fetcher.FetchPull(ctx, owner, repo, number)
	if err != nil {
		return domain.ReviewReport{}, err
	}

	var (
		files    []*github.CommitFile
		commits  []*github.RepositoryCommit
		reviews  []*github.PullRequestReview
		comments []*github.PullRequestComment
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		files, err = s.fetcher.FetchPullFiles(egCtx, owner, repo, number, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		commits, err = s.fetcher.FetchPullCommits(egCtx, owner, repo, number, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		reviews, err = s.fetcher.FetchPullReviews(egCtx, owner, repo, number, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		comments, err = s.fetcher.FetchPullComments(egCtx, owner, repo, number, 0)
		return err
	})
	if err := eg.Wait(); err != nil {
		return domain.ReviewReport{}, err
	}
	s.logger.Println("Usecase: All pull request data fetched.")

	input := review.Input{
		Owner:          owner,
		Repo:           repo,
		Number:         number,
		Title:          pull.GetTitle(),
		Author:         pull.GetUser().GetLogin(),
		State:          pull.GetState(),
		Draft:          pull.GetDraft(),
		Merged:         pull.GetMerged(),
		Mergeable:      pull.Mergeable,
		Body:           pull.GetBody(),
		CreatedAt:      pull.GetCreatedAt().Time,
		Commits:        len(commits),
		Files:          changedFiles(files),
		Reviews:        submittedReviews(reviews),
		InlineComments: len(comments),
	}
	return review.Summarize(input, s.now().UTC()), nil
}

func changedFiles(files []*github.CommitFile) []review.FileChange {
	var changes []review.FileChange
	for _, f := range files {
		changes = append(changes, review.FileChange{
			Path:      f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}
	return changes
}

func submittedReviews(reviews []*github.PullRequestReview) []review.Review {
	var out []review.Review
	for _, r := range reviews {
		out = append(out, review.Review{
			Reviewer:    r.GetUser().GetLogin(),
			State:       r.GetState(),
			SubmittedAt: r.GetSubmittedAt().Time,
		})
	}
	return out
}
