// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

const (
	defaultPageSize = 100
	// defaultMaxItems caps how many records a single listing will collect
	// when the caller does not supply its own limit.
	defaultMaxItems = 1000
)

// ActivityItem is one issue or pull request surfaced by the GraphQL
// activity search. Zero timestamps mean the event has not happened.
type ActivityItem struct {
	Type      string
	Repo      string
	Number    int
	CreatedAt time.Time
	ClosedAt  time.Time
	MergedAt  time.Time
	Merged    bool
}

// Fetcher defines the behavior of a gateway for fetching information from
// GitHub. All listings return at most limit records; limit <= 0 selects the
// gateway's default cap.
type Fetcher interface {
	FetchRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	FetchUser(ctx context.Context, login string) (*github.User, error)
	FetchTree(ctx context.Context, owner, repo, ref string) (*github.Tree, error)
	FetchFileContent(ctx context.Context, owner, repo, path string) (string, error)
	FetchCommits(ctx context.Context, owner, repo string, since, until time.Time, limit int) ([]*github.RepositoryCommit, error)
	FetchIssues(ctx context.Context, owner, repo, state string, since time.Time, limit int) ([]*github.Issue, error)
	FetchPulls(ctx context.Context, owner, repo, state string, limit int) ([]*github.PullRequest, error)
	FetchContributors(ctx context.Context, owner, repo string, limit int) ([]*github.Contributor, error)
	FetchIssue(ctx context.Context, owner, repo string, number int) (*github.Issue, error)
	FetchIssueComments(ctx context.Context, owner, repo string, number, limit int) ([]*github.IssueComment, error)
	FetchPull(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	FetchPullFiles(ctx context.Context, owner, repo string, number, limit int) ([]*github.CommitFile, error)
	FetchPullCommits(ctx context.Context, owner, repo string, number, limit int) ([]*github.RepositoryCommit, error)
	FetchPullReviews(ctx context.Context, owner, repo string, number, limit int) ([]*github.PullRequestReview, error)
	FetchPullComments(ctx context.Context, owner, repo string, number, limit int) ([]*github.PullRequestComment, error)
	SearchCommits(ctx context.Context, query string, limit int) ([]*github.CommitResult, error)
	SearchUserActivity(ctx context.Context, query string, limit int) ([]ActivityItem, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// Rate limit state is tracked per instance, so two gateways never interfere
// with each other's pacing decisions.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
	policy        RatePolicy
	pageSize      int
	maxItems      int

	quota quotaState

	// Seams for tests. Production instances sleep and read the clock
	// for real.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

var _ Fetcher = (*GitHubGateway)(nil)

// NewGitHubGateway is a constructor that creates a new instance of
// GitHubGateway authenticated with the given token.
func NewGitHubGateway(token string, policy RatePolicy, logger *log.Logger) (*GitHubGateway, error) {
	httpClient, err := newAuthClient(token)
	if err != nil {
		return nil, err
	}
	return newGateway(github.NewClient(httpClient), githubv4.NewClient(httpClient), policy, logger), nil
}

// NewEnterpriseGateway targets a GitHub Enterprise Server instance. baseURL
// is the instance root (scheme and host); the REST and GraphQL endpoint
// paths are derived from it.
func NewEnterpriseGateway(token, baseURL string, policy RatePolicy, logger *log.Logger) (*GitHubGateway, error) {
	httpClient, err := newAuthClient(token)
	if err != nil {
		return nil, err
	}
	restClient, err := github.NewClient(httpClient).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure enterprise endpoints: %w", err)
	}
	graphqlURL := strings.TrimSuffix(baseURL, "/") + "/api/graphql"
	return newGateway(restClient, githubv4.NewEnterpriseClient(graphqlURL, httpClient), policy, logger), nil
}

// WithMaxItems overrides the default cap on records collected per listing
// and returns the same gateway for chaining. n <= 0 keeps the current cap.
func (g *GitHubGateway) WithMaxItems(n int) *GitHubGateway {
	if n > 0 {
		g.maxItems = n
	}
	return g
}

func newAuthClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

func newGateway(restClient *github.Client, graphqlClient *githubv4.Client, policy RatePolicy, logger *log.Logger) *GitHubGateway {
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
		policy:        policy.withDefaults(),
		pageSize:      defaultPageSize,
		maxItems:      defaultMaxItems,
		sleep:         sleepContext,
		now:           time.Now,
	}
}

func (g *GitHubGateway) FetchRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	g.logger.Printf("Fetching repository %s/%s...", owner, repo)
	repository, _, err := doPage(ctx, g, func(ctx context.Context) (*github.Repository, *github.Response, error) {
		return g.restClient.Repositories.Get(ctx, owner, repo)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching repository %s/%s: %w", owner, repo, err)
	}
	return repository, nil
}

func (g *GitHubGateway) FetchUser(ctx context.Context, login string) (*github.User, error) {
	g.logger.Printf("Fetching user %s...", login)
	user, _, err := doPage(ctx, g, func(ctx context.Context) (*github.User, *github.Response, error) {
		return g.restClient.Users.Get(ctx, login)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", login, err)
	}
	return user, nil
}

// FetchTree returns the recursive file listing of the given ref. The
// Truncated flag is preserved so callers can warn when a very large
// repository was only partially listed.
func (g *GitHubGateway) FetchTree(ctx context.Context, owner, repo, ref string) (*github.Tree, error) {
	g.logger.Printf("Fetching file tree for %s/%s@%s...", owner, repo, ref)
	tree, _, err := doPage(ctx, g, func(ctx context.Context) (*github.Tree, *github.Response, error) {
		return g.restClient.Git.GetTree(ctx, owner, repo, ref, true)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching tree for %s/%s: %w", owner, repo, err)
	}
	return tree, nil
}

func (g *GitHubGateway) FetchFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	g.logger.Printf("Fetching file %s from %s/%s...", path, owner, repo)
	file, _, err := doPage(ctx, g, func(ctx context.Context) (*github.RepositoryContent, *github.Response, error) {
		file, _, resp, err := g.restClient.Repositories.GetContents(ctx, owner, repo, path, nil)
		return file, resp, err
	})
	if err != nil {
		return "", fmt.Errorf("fetching file %s from %s/%s: %w", path, owner, repo, err)
	}
	if file == nil {
		return "", fmt.Errorf("path %s in %s/%s is not a file", path, owner, repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding file %s from %s/%s: %w", path, owner, repo, err)
	}
	return content, nil
}

func (g *GitHubGateway) FetchCommits(ctx context.Context, owner, repo string, since, until time.Time, limit int) ([]*github.RepositoryCommit, error) {
	g.logger.Printf("Fetching commits for %s/%s...", owner, repo)
	opts := &github.CommitsListOptions{
		Since:       since,
		Until:       until,
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	commits, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.RepositoryCommit, *github.Response, error) {
		opts.Page = page
		return g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	})
	if err != nil {
		// An empty repository answers 409 on the commits listing.
		if isStatus(err, http.StatusConflict) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing commits for %s/%s: %w", owner, repo, err)
	}
	return commits, nil
}

// FetchIssues lists issues in the given state ("open", "closed", or "all")
// updated since the given time. The result still contains pull requests,
// which GitHub models as issues; callers filter them as needed.
func (g *GitHubGateway) FetchIssues(ctx context.Context, owner, repo, state string, since time.Time, limit int) ([]*github.Issue, error) {
	g.logger.Printf("Fetching %s issues for %s/%s...", state, owner, repo)
	opts := &github.IssueListByRepoOptions{
		State:       state,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	issues, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.Issue, *github.Response, error) {
		opts.Page = page
		return g.restClient.Issues.ListByRepo(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("listing issues for %s/%s: %w", owner, repo, err)
	}
	return issues, nil
}

func (g *GitHubGateway) FetchPulls(ctx context.Context, owner, repo, state string, limit int) ([]*github.PullRequest, error) {
	g.logger.Printf("Fetching %s pull requests for %s/%s...", state, owner, repo)
	opts := &github.PullRequestListOptions{
		State:       state,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	pulls, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.PullRequest, *github.Response, error) {
		opts.Page = page
		return g.restClient.PullRequests.List(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for %s/%s: %w", owner, repo, err)
	}
	return pulls, nil
}

func (g *GitHubGateway) FetchContributors(ctx context.Context, owner, repo string, limit int) ([]*github.Contributor, error) {
	g.logger.Printf("Fetching contributors for %s/%s...", owner, repo)
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	contributors, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.Contributor, *github.Response, error) {
		opts.Page = page
		return g.restClient.Repositories.ListContributors(ctx, owner, repo, opts)
	})
	if err != nil {
		// 204 means an empty repository; go-github surfaces no error for
		// it, but a freshly initialized repo can also answer 409.
		if isStatus(err, http.StatusConflict) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing contributors for %s/%s: %w", owner, repo, err)
	}
	return contributors, nil
}

func (g *GitHubGateway) FetchIssue(ctx context.Context, owner, repo string, number int) (*github.Issue, error) {
	g.logger.Printf("Fetching issue %s/%s#%d...", owner, repo, number)
	issue, _, err := doPage(ctx, g, func(ctx context.Context) (*github.Issue, *github.Response, error) {
		return g.restClient.Issues.Get(ctx, owner, repo, number)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching issue %s/%s#%d: %w", owner, repo, number, err)
	}
	return issue, nil
}

func (g *GitHubGateway) FetchIssueComments(ctx context.Context, owner, repo string, number, limit int) ([]*github.IssueComment, error) {
	g.logger.Printf("Fetching comments for issue %s/%s#%d...", owner, repo, number)
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	comments, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.IssueComment, *github.Response, error) {
		opts.Page = page
		return g.restClient.Issues.ListComments(ctx, owner, repo, number, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("listing comments for issue %s/%s#%d: %w", owner, repo, number, err)
	}
	return comments, nil
}

func (g *GitHubGateway) FetchPull(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	g.logger.Printf("Fetching pull request %s/%s#%d...", owner, repo, number)
	pull, _, err := doPage(ctx, g, func(ctx context.Context) (*github.PullRequest, *github.Response, error) {
		return g.restClient.PullRequests.Get(ctx, owner, repo, number)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return pull, nil
}

func (g *GitHubGateway) FetchPullFiles(ctx context.Context, owner, repo string, number, limit int) ([]*github.CommitFile, error) {
	g.logger.Printf("Fetching changed files for %s/%s#%d...", owner, repo, number)
	opts := &github.ListOptions{PerPage: g.pageSize}
	files, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.CommitFile, *github.Response, error) {
		opts.Page = page
		return g.restClient.PullRequests.ListFiles(ctx, owner, repo, number, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("listing files for %s/%s#%d: %w", owner, repo, number, err)
	}
	return files, nil
}

func (g *GitHubGateway) FetchPullCommits(ctx context.Context, owner, repo string, number, limit int) ([]*github.RepositoryCommit, error) {
	g.logger.Printf("Fetching commits for %s/%s#%d...", owner, repo, number)
	opts := &github.ListOptions{PerPage: g.pageSize}
	commits, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.RepositoryCommit, *github.Response, error) {
		opts.Page = page
		return g.restClient.PullRequests.ListCommits(ctx, owner, repo, number, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("listing commits for %s/%s#%d: %w", owner, repo, number, err)
	}
	return commits, nil
}

func (g *GitHubGateway) FetchPullReviews(ctx context.Context, owner, repo string, number, limit int) ([]*github.PullRequestReview, error) {
	g.logger.Printf("Fetching reviews for %s/%s#%d...", owner, repo, number)
	opts := &github.ListOptions{PerPage: g.pageSize}
	reviews, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.PullRequestReview, *github.Response, error) {
		opts.Page = page
		return g.restClient.PullRequests.ListReviews(ctx, owner, repo, number, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("listing reviews for %s/%s#%d: %w", owner, repo, number, err)
	}
	return reviews, nil
}

func (g *GitHubGateway) FetchPullComments(ctx context.Context, owner, repo string, number, limit int) ([]*github.PullRequestComment, error) {
	g.logger.Printf("Fetching review comments for %s/%s#%d...", owner, repo, number)
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	comments, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.PullRequestComment, *github.Response, error) {
		opts.Page = page
		return g.restClient.PullRequests.ListComments(ctx, owner, repo, number, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("listing review comments for %s/%s#%d: %w", owner, repo, number, err)
	}
	return comments, nil
}

func (g *GitHubGateway) SearchCommits(ctx context.Context, query string, limit int) ([]*github.CommitResult, error) {
	g.logger.Printf("Searching commits with query %q...", query)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: g.pageSize}}
	commits, err := collectPages(ctx, g, limit, func(ctx context.Context, page int) ([]*github.CommitResult, *github.Response, error) {
		opts.Page = page
		result, resp, err := g.restClient.Search.Commits(ctx, query, opts)
		if result == nil {
			return nil, resp, err
		}
		return result.Commits, resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("searching commits: %w", err)
	}
	return commits, nil
}
