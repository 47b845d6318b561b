package dashboard

import (
	"context"
	"fmt"

	"team-insights/internal/jira"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PageSize is the number of issues requested per Jira page.
const PageSize = 100

// PageFunc fetches one page of issues.
type PageFunc func(ctx context.Context, startAt, maxResults int) (*jira.SearchResponse, error)

// FetchAllIssues reads the first page to learn the total, then fetches the remaining
// pages with at most concurrency requests in flight. Issues are returned in page
// order regardless of completion order.
func FetchAllIssues(ctx context.Context, concurrency int, fetch PageFunc) ([]jira.Issue, error) {
	first, err := fetch(ctx, 0, PageSize)
	if err != nil {
		return nil, err
	}

	total := first.Total
	if total <= len(first.Issues) || len(first.Issues) == 0 {
		return jira.MapIssues(first.Issues), nil
	}

	// Jira may cap maxResults below PageSize; step by what the first page returned.
	pageLen := len(first.Issues)
	pages := (total - 1) / pageLen
	results := make([][]jira.IssueDTO, pages+1)
	results[0] = first.Issues

	log.Debug().Int("total", total).Int("pages", pages+1).Msg("Fetching remaining issue pages")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i := 1; i <= pages; i++ {
		startAt := i * pageLen
		g.Go(func() error {
			resp, err := fetch(gctx, startAt, PageSize)
			if err != nil {
				return fmt.Errorf("page at %d: %w", startAt, err)
			}
			results[i] = resp.Issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	issues := make([]jira.Issue, 0, total)
	for _, page := range results {
		issues = append(issues, jira.MapIssues(page)...)
	}
	return issues, nil
}
