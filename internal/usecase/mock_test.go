package usecase

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/mock"

	"github.com/Amama-Fatima/github-insights/internal/gateway"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows the services to be tested without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Repository), args.Error(1)
}

func (m *mockFetcher) FetchUser(ctx context.Context, login string) (*github.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.User), args.Error(1)
}

func (m *mockFetcher) FetchTree(ctx context.Context, owner, repo, ref string) (*github.Tree, error) {
	args := m.Called(ctx, owner, repo, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Tree), args.Error(1)
}

func (m *mockFetcher) FetchFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	args := m.Called(ctx, owner, repo, path)
	return args.String(0), args.Error(1)
}

func (m *mockFetcher) FetchCommits(ctx context.Context, owner, repo string, since, until time.Time, limit int) ([]*github.RepositoryCommit, error) {
	args := m.Called(ctx, owner, repo, since, until, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.RepositoryCommit), args.Error(1)
}

func (m *mockFetcher) FetchIssues(ctx context.Context, owner, repo, state string, since time.Time, limit int) ([]*github.Issue, error) {
	args := m.Called(ctx, owner, repo, state, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Issue), args.Error(1)
}

func (m *mockFetcher) FetchPulls(ctx context.Context, owner, repo, state string, limit int) ([]*github.PullRequest, error) {
	args := m.Called(ctx, owner, repo, state, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.PullRequest), args.Error(1)
}

func (m *mockFetcher) FetchContributors(ctx context.Context, owner, repo string, limit int) ([]*github.Contributor, error) {
	args := m.Called(ctx, owner, repo, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Contributor), args.Error(1)
}

func (m *mockFetcher) FetchIssue(ctx context.Context, owner, repo string, number int) (*github.Issue, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Issue), args.Error(1)
}

func (m *mockFetcher) FetchIssueComments(ctx context.Context, owner, repo string, number, limit int) ([]*github.IssueComment, error) {
	args := m.Called(ctx, owner, repo, number, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.IssueComment), args.Error(1)
}

func (m *mockFetcher) FetchPull(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.PullRequest), args.Error(1)
}

func (m *mockFetcher) FetchPullFiles(ctx context.Context, owner, repo string, number, limit int) ([]*github.CommitFile, error) {
	args := m.Called(ctx, owner, repo, number, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.CommitFile), args.Error(1)
}

func (m *mockFetcher) FetchPullCommits(ctx context.Context, owner, repo string, number, limit int) ([]*github.RepositoryCommit, error) {
	args := m.Called(ctx, owner, repo, number, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.RepositoryCommit), args.Error(1)
}

func (m *mockFetcher) FetchPullReviews(ctx context.Context, owner, repo string, number, limit int) ([]*github.PullRequestReview, error) {
	args := m.Called(ctx, owner, repo, number, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.PullRequestReview), args.Error(1)
}

func (m *mockFetcher) FetchPullComments(ctx context.Context, owner, repo string, number, limit int) ([]*github.PullRequestComment, error) {
	args := m.Called(ctx, owner, repo, number, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.PullRequestComment), args.Error(1)
}

func (m *mockFetcher) SearchCommits(ctx context.Context, query string, limit int) ([]*github.CommitResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.CommitResult), args.Error(1)
}

func (m *mockFetcher) SearchUserActivity(ctx context.Context, query string, limit int) ([]gateway.ActivityItem, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.ActivityItem), args.Error(1)
}

var _ gateway.Fetcher = (*mockFetcher)(nil)
