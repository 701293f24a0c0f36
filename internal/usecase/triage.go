package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/gateway"
	"github.com/Amama-Fatima/github-insights/internal/triage"
)

// TriageService classifies a single issue.
type TriageService struct {
	fetcher    gateway.Fetcher
	classifier *triage.Classifier
	logger     *log.Logger
	now        func() time.Time
}

// NewTriageService creates a new TriageService instance.
func NewTriageService(fetcher gateway.Fetcher, classifier *triage.Classifier, logger *log.Logger) *TriageService {
	return &TriageService{
		fetcher:    fetcher,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// TriageIssue fetches the issue with its comments and classifies it.
func (s *TriageService) TriageIssue(ctx context.Context, owner, repo string, number int) (domain.TriageResult, error) {
	if err := domain.ValidateRepoRef(owner, repo); err != nil {
		return domain.TriageResult{}, err
	}
	if err := domain.ValidateIssueNumber(number); err != nil {
		return domain.TriageResult{}, err
	}
	s.logger.Printf("Usecase: Triaging %s/%s#%d...", owner, repo, number)

	var (
		issue    *github.Issue
		comments []*github.IssueComment
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		issue, err = s.fetcher.FetchIssue(egCtx, owner, repo, number)
		return err
	})
	eg.Go(func() error {
		var err error
		comments, err = s.fetcher.FetchIssueComments(egCtx, owner, repo, number, 0)
		return err
	})
	if err := eg.Wait(); err != nil {
		return domain.TriageResult{}, err
	}

	input := triage.Input{
		Title:    issue.GetTitle(),
		Body:     issue.GetBody(),
		Comments: commentBodies(comments),
		Labels:   labelNames(issue.Labels),
	}
	classification := s.classifier.Classify(input)
	s.logger.Printf("Usecase: Classified #%d as %s/%s (confidence %.2f).",
		number, classification.Category, classification.Priority, classification.Confidence)

	return domain.TriageResult{
		Owner:           owner,
		Repo:            repo,
		Number:          number,
		Title:           issue.GetTitle(),
		Category:        classification.Category,
		Priority:        classification.Priority,
		Confidence:      classification.Confidence,
		Rationale:       classification.Rationale,
		SuggestedLabels: classification.SuggestedLabels,
		GeneratedAt:     s.now().UTC(),
	}, nil
}

func commentBodies(comments []*github.IssueComment) []string {
	var bodies []string
	for _, c := range comments {
		if body := c.GetBody(); body != "" {
			bodies = append(bodies, body)
		}
	}
	return bodies
}

func labelNames(labels []*github.Label) []string {
	var names []string
	for _, l := range labels {
		if name := l.GetName(); name != "" {
			names = append(names, name)
		}
	}
	return names
}
