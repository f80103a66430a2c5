package search

import (
	"context"
	"strings"
	"time"

	"brainstormer/backend/pkg/errors"
	"brainstormer/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is one search hit from the collaborator
type Result struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Provider is a remote search collaborator
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Client fronts a provider with query validation and a TTL cache so
// repeated queries within the window never hit the rate-limited service
type Client struct {
	provider   Provider
	cache      *ttlCache
	maxResults int
	logger     *zap.Logger
}

// NewClient wraps a provider. ttl bounds how long results are reused;
// maxResults caps each request.
func NewClient(provider Provider, ttl time.Duration, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		provider:   provider,
		cache:      newTTLCache(ttl),
		maxResults: maxResults,
		logger:     logger.Get(),
	}
}

// Search runs one query. A blank query fails explicitly rather than
// returning silently empty results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.ErrEmptyQuery
	}

	if cached, ok := c.cache.get(query); ok {
		c.logger.Debug("Search cache hit", zap.String("query", query))
		return cached, nil
	}

	results, err := c.provider.Search(ctx, query, c.maxResults)
	if err != nil {
		return nil, errors.NewSearchFailed(query, err)
	}

	c.cache.set(query, results)
	c.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// SearchAll fans out one request per term concurrently and flattens the
// results in term order. Any failing term fails the whole batch.
func (c *Client) SearchAll(ctx context.Context, terms []string) ([]Result, error) {
	valid := make([]string, 0, len(terms))
	for _, term := range terms {
		if strings.TrimSpace(term) != "" {
			valid = append(valid, term)
		}
	}
	if len(valid) == 0 {
		return nil, errors.ErrEmptyQuery
	}

	perTerm := make([][]Result, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	for i, term := range valid {
		i, term := i, term
		g.Go(func() error {
			results, err := c.Search(gctx, term)
			if err != nil {
				return err
			}
			perTerm[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []Result
	for _, results := range perTerm {
		flat = append(flat, results...)
	}
	return flat, nil
}
