package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/triage"
)

func newTestTriageService(t *testing.T, fetcher *mockFetcher) *TriageService {
	t.Helper()
	classifier, err := triage.NewClassifier(triage.DefaultRules())
	require.NoError(t, err)
	svc := NewTriageService(fetcher, classifier, testLogger())
	svc.now = func() time.Time { return testGeneratedAt }
	return svc
}

func TestTriageService_TriageIssue(t *testing.T) {
	issue := &github.Issue{
		Number: github.Int(42),
		Title:  github.String("Crash on startup"),
		Body: github.String("The app dies immediately.\n\n" +
			"panic: runtime error: invalid memory address\n" +
			"goroutine 1 [running]:\nmain.main()\n"),
		Labels: []*github.Label{{Name: github.String("bug")}},
	}
	comments := []*github.IssueComment{
		{Body: github.String("Same here on 1.2.3.")},
		{},
	}

	fetcher := new(mockFetcher)
	fetcher.On("FetchIssue", mock.Anything, "octo", "widgets", 42).Return(issue, nil)
	fetcher.On("FetchIssueComments", mock.Anything, "octo", "widgets", 42, 0).Return(comments, nil)

	svc := newTestTriageService(t, fetcher)
	result, err := svc.TriageIssue(context.Background(), "octo", "widgets", 42)

	require.NoError(t, err)
	assert.Equal(t, "octo", result.Owner)
	assert.Equal(t, "widgets", result.Repo)
	assert.Equal(t, 42, result.Number)
	assert.Equal(t, "Crash on startup", result.Title)
	assert.Equal(t, domain.CategoryBug, result.Category)
	assert.Equal(t, domain.PriorityHigh, result.Priority)
	assert.Greater(t, result.Confidence, 0.6)
	assert.Contains(t, result.Rationale, "stack trace detected")
	assert.Equal(t, []string{"priority: high"}, result.SuggestedLabels)
	assert.Equal(t, testGeneratedAt, result.GeneratedAt)
	fetcher.AssertExpectations(t)
}

func TestTriageService_RejectsInvalidNumber(t *testing.T) {
	fetcher := new(mockFetcher)
	svc := newTestTriageService(t, fetcher)

	_, err := svc.TriageIssue(context.Background(), "octo", "widgets", 0)

	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "number", invalid.Field)
	fetcher.AssertNotCalled(t, "FetchIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTriageService_PropagatesNotFound(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchIssue", mock.Anything, "octo", "widgets", 404).
		Return(nil, fmt.Errorf("fetching issue: %w", domain.ErrNotFound))
	fetcher.On("FetchIssueComments", mock.Anything, "octo", "widgets", 404, 0).
		Return([]*github.IssueComment{}, nil)

	svc := newTestTriageService(t, fetcher)
	_, err := svc.TriageIssue(context.Background(), "octo", "widgets", 404)

	require.ErrorIs(t, err, domain.ErrNotFound)
}
