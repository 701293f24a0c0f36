package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/shurcooL/githubv4"
)

// userActivityQuery pages through the issue search, pulling the lifecycle
// timestamps needed to bucket a user's activity. Issues and pull requests
// share the search index, so one query covers both.
type userActivityQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename string `graphql:"__typename"`
				Issue    struct {
					Number     int
					Repository struct {
						NameWithOwner string
					}
					CreatedAt githubv4.DateTime
					ClosedAt  *githubv4.DateTime
				} `graphql:"... on Issue"`
				PullRequest struct {
					Number     int
					Repository struct {
						NameWithOwner string
					}
					CreatedAt githubv4.DateTime
					ClosedAt  *githubv4.DateTime
					MergedAt  *githubv4.DateTime
					Merged    bool
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// SearchUserActivity runs an issue search and returns the matching issues
// and pull requests with their lifecycle timestamps.
func (g *GitHubGateway) SearchUserActivity(ctx context.Context, query string, limit int) ([]ActivityItem, error) {
	g.logger.Printf("Searching user activity with query %q...", query)
	if limit <= 0 {
		limit = g.maxItems
	}
	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"cursor": (*githubv4.String)(nil),
	}

	var items []ActivityItem
	for {
		var q userActivityQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for user activity: %w", err)
		}
		for _, edge := range q.Search.Edges {
			node := edge.Node
			switch node.Typename {
			case "Issue":
				items = append(items, ActivityItem{
					Type:      "Issue",
					Repo:      node.Issue.Repository.NameWithOwner,
					Number:    node.Issue.Number,
					CreatedAt: node.Issue.CreatedAt.Time,
					ClosedAt:  dateTimeOrZero(node.Issue.ClosedAt),
				})
			case "PullRequest":
				items = append(items, ActivityItem{
					Type:      "PullRequest",
					Repo:      node.PullRequest.Repository.NameWithOwner,
					Number:    node.PullRequest.Number,
					CreatedAt: node.PullRequest.CreatedAt.Time,
					ClosedAt:  dateTimeOrZero(node.PullRequest.ClosedAt),
					MergedAt:  dateTimeOrZero(node.PullRequest.MergedAt),
					Merged:    node.PullRequest.Merged,
				})
			}
			if len(items) >= limit {
				return items[:limit], nil
			}
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of user activity...")
	}
	g.logger.Printf("Completed user activity search, %d items.", len(items))
	return items, nil
}

func dateTimeOrZero(dt *githubv4.DateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	return dt.Time
}
