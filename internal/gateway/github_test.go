package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amama-Fatima/github-insights/internal/domain"
)

// sleepRecorder captures the durations the gateway wanted to sleep so tests
// can assert on waits without actually waiting.
type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return nil
}

func (s *sleepRecorder) durations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}

// setupTestGateway creates a GitHubGateway that communicates with a mock
// HTTP server. Sleeps are recorded instead of executed.
func setupTestGateway(t *testing.T, handler http.Handler, policy RatePolicy) (*GitHubGateway, *httptest.Server, *sleepRecorder) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// Point the REST client at the mock server.
	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// Use NewEnterpriseClient to point the GraphQL client at the mock
	// server as well.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())

	recorder := &sleepRecorder{}
	gw := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        log.New(io.Discard, "", 0),
		policy:        policy.withDefaults(),
		pageSize:      100,
		maxItems:      defaultMaxItems,
		sleep:         recorder.sleep,
		now:           time.Now,
	}
	return gw, server, recorder
}

func TestGitHubGateway_FetchRepository(t *testing.T) {
	testCases := []struct {
		name        string
		handlerFunc func(w http.ResponseWriter, r *http.Request)
		expectName  string
		expectErr   error
	}{
		{
			name: "happy path - returns repository metadata",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/repos/octocat/hello-world")
				fmt.Fprint(w, `{"name": "hello-world", "full_name": "octocat/hello-world", "stargazers_count": 42}`)
			},
			expectName: "hello-world",
		},
		{
			name: "missing repository maps to not found",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectErr: domain.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw, _, _ := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc), RatePolicy{})

			repo, err := gw.FetchRepository(context.Background(), "octocat", "hello-world")

			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectName, repo.GetName())
		})
	}
}

func TestGitHubGateway_FetchCommits_Pagination(t *testing.T) {
	var pagesServed []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		if page == "" || page == "1" {
			w.Header().Set("Link", `</repos/o/r/commits?page=2>; rel="next"`)
			fmt.Fprint(w, `[{"sha": "aaa"}, {"sha": "bbb"}]`)
			return
		}
		fmt.Fprint(w, `[{"sha": "ccc"}]`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	commits, err := gw.FetchCommits(context.Background(), "o", "r", time.Time{}, time.Time{}, 0)

	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, "ccc", commits[2].GetSHA())
	assert.Len(t, pagesServed, 2)
}

func TestGitHubGateway_FetchCommits_LimitStopsEarly(t *testing.T) {
	requests := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Link", `</repos/o/r/commits?page=99>; rel="next"`)
		fmt.Fprint(w, `[{"sha": "aaa"}, {"sha": "bbb"}]`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	commits, err := gw.FetchCommits(context.Background(), "o", "r", time.Time{}, time.Time{}, 2)

	require.NoError(t, err)
	assert.Len(t, commits, 2)
	assert.Equal(t, 1, requests, "limit reached on the first page, no further pages should be fetched")
}

func TestGitHubGateway_FetchCommits_EmptyRepository(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message": "Git Repository is empty."}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	commits, err := gw.FetchCommits(context.Background(), "o", "r", time.Time{}, time.Time{}, 0)

	assert.NoError(t, err)
	assert.Empty(t, commits)
}

func TestGitHubGateway_RateLimit_WaitsForReset(t *testing.T) {
	// First request answers 403 with an exhausted quota resetting in 5
	// seconds; the retry succeeds. The gateway must wait out the reset
	// rather than fail.
	var calls int
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-RateLimit-Limit", "5000")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(5*time.Second).Unix()))
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", "4999")
		fmt.Fprint(w, `[{"number": 1, "title": "hello"}]`)
	}
	gw, _, recorder := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{Mode: RateWait})

	issues, err := gw.FetchIssues(context.Background(), "o", "r", "open", time.Time{}, 0)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, calls)

	slept := recorder.durations()
	require.Len(t, slept, 1)
	assert.GreaterOrEqual(t, slept[0], 5*time.Second, "must wait at least until the advertised reset")
	assert.Less(t, slept[0], 30*time.Second)
}

func TestGitHubGateway_RateLimit_FailFast(t *testing.T) {
	reset := time.Now().Add(10 * time.Minute)
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(reset.Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}
	gw, _, recorder := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{Mode: RateFailFast})

	_, err := gw.FetchIssues(context.Background(), "o", "r", "open", time.Time{}, 0)

	var rateErr *domain.RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	assert.WithinDuration(t, reset, rateErr.ResetAt, 2*time.Second)
	assert.Empty(t, recorder.durations(), "fail-fast must not sleep")
}

func TestGitHubGateway_RateLimit_BoundedWait(t *testing.T) {
	// A reset further away than MaxWait surfaces the rate limit error
	// even under the waiting policy.
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}
	policy := RatePolicy{Mode: RateWait, MaxWait: time.Minute}
	gw, _, recorder := setupTestGateway(t, http.HandlerFunc(handler), policy)

	_, err := gw.FetchIssues(context.Background(), "o", "r", "open", time.Time{}, 0)

	var rateErr *domain.RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	assert.Empty(t, recorder.durations())
}

func TestGitHubGateway_RetriesTransientErrors(t *testing.T) {
	var calls int
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"message": "Bad Gateway"}`)
			return
		}
		fmt.Fprint(w, `{"login": "octocat", "id": 1}`)
	}
	gw, _, recorder := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	user, err := gw.FetchUser(context.Background(), "octocat")

	require.NoError(t, err)
	assert.Equal(t, "octocat", user.GetLogin())
	assert.Equal(t, 3, calls)
	// Exponential backoff: 1s then 2s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, recorder.durations())
}

func TestGitHubGateway_PersistentServerErrorSurfaces(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "Internal Server Error"}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	_, err := gw.FetchUser(context.Background(), "octocat")

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
}

func TestGitHubGateway_QuotaPreflightPauses(t *testing.T) {
	// The first response reports one remaining request. The preflight
	// check before the second call should pause until the reset instead
	// of burning the last request and triggering a 403.
	reset := time.Now().Add(10 * time.Second)
	var calls int
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "1")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(reset.Unix()))
		fmt.Fprint(w, `{"login": "octocat", "id": 1}`)
	}
	gw, _, recorder := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	_, err := gw.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)
	require.Empty(t, recorder.durations())

	_, err = gw.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)
	slept := recorder.durations()
	require.Len(t, slept, 1)
	assert.Greater(t, slept[0], 5*time.Second)
}

func TestGitHubGateway_FetchFileContent(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/o/r/contents/package.json")
		// "hello" base64-encoded.
		fmt.Fprint(w, `{"type": "file", "name": "package.json", "path": "package.json", "encoding": "base64", "content": "aGVsbG8="}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	content, err := gw.FetchFileContent(context.Background(), "o", "r", "package.json")

	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestGitHubGateway_FetchTree(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/o/r/git/trees/main")
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{"sha": "abc", "truncated": false, "tree": [{"path": "README.md", "type": "blob"}, {"path": "go.mod", "type": "blob"}]}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	tree, err := gw.FetchTree(context.Background(), "o", "r", "main")

	require.NoError(t, err)
	require.Len(t, tree.Entries, 2)
	assert.Equal(t, "README.md", tree.Entries[0].GetPath())
}

func TestGitHubGateway_ContextDeadlineMapsToTimeout(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, `{"login": "octocat"}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := gw.FetchUser(ctx, "octocat")
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestGitHubGateway_SearchUserActivity(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "author:octocat")
		fmt.Fprint(w, `{"data":{"search":{"pageInfo":{"hasNextPage":false,"endCursor":""},"edges":[`+
			`{"node":{"__typename":"Issue","number":7,"repository":{"nameWithOwner":"o/alpha"},"createdAt":"2025-03-01T10:00:00Z","closedAt":null}},`+
			`{"node":{"__typename":"PullRequest","number":12,"repository":{"nameWithOwner":"o/beta"},"createdAt":"2025-03-02T09:00:00Z","closedAt":"2025-03-03T09:00:00Z","mergedAt":"2025-03-03T09:00:00Z","merged":true}}`+
			`]}}}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	items, err := gw.SearchUserActivity(context.Background(), "author:octocat created:>2025-01-01", 0)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Issue", items[0].Type)
	assert.Equal(t, "o/alpha", items[0].Repo)
	assert.True(t, items[0].ClosedAt.IsZero())
	assert.Equal(t, "PullRequest", items[1].Type)
	assert.True(t, items[1].Merged)
	assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), items[1].MergedAt)
}

func TestGitHubGateway_SearchUserActivity_Error(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"Something went wrong"}]}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	_, err := gw.SearchUserActivity(context.Background(), "author:octocat", 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute GraphQL query")
}

func TestGitHubGateway_SearchCommits(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.String(), "/search/commits")
		fmt.Fprint(w, `{"total_count": 2, "items": [{"repository": {"full_name": "org/repo-a"}}, {"repository": {"full_name": "org/repo-b"}}]}`)
	}
	gw, _, _ := setupTestGateway(t, http.HandlerFunc(handler), RatePolicy{})

	results, err := gw.SearchCommits(context.Background(), "author:octocat", 0)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "org/repo-a", results[0].GetRepository().GetFullName())
}

func TestRatePolicy_Defaults(t *testing.T) {
	p := RatePolicy{}.withDefaults()
	assert.Equal(t, RateWait, p.Mode)
	assert.Equal(t, defaultMaxRateWait, p.MaxWait)
	assert.Equal(t, defaultLowWater, p.LowWater)

	disabled := RatePolicy{LowWater: -1}.withDefaults()
	assert.Equal(t, -1, disabled.LowWater)
}

func TestMapError(t *testing.T) {
	notFound := &github.ErrorResponse{Response: &http.Response{StatusCode: 404}, Message: "Not Found"}
	assert.ErrorIs(t, mapError(notFound), domain.ErrNotFound)

	gone := &github.ErrorResponse{Response: &http.Response{StatusCode: 410}, Message: "Gone"}
	assert.ErrorIs(t, mapError(gone), domain.ErrNotFound)

	rejected := &github.ErrorResponse{Response: &http.Response{StatusCode: 422}, Message: "Validation Failed"}
	var upstream *domain.UpstreamError
	require.ErrorAs(t, mapError(rejected), &upstream)
	assert.Equal(t, 422, upstream.StatusCode)
	assert.Equal(t, "Validation Failed", upstream.Body)

	assert.ErrorIs(t, mapError(context.DeadlineExceeded), domain.ErrTimeout)

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
}
