package insights

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"brainstormer/backend/internal/adapter"
	"brainstormer/backend/internal/extract"
	"brainstormer/backend/internal/relay"
	"brainstormer/backend/internal/search"
	"brainstormer/backend/pkg/errors"
	"brainstormer/backend/pkg/logger"
)

const trendsSystemPrompt = "You are a helpful AI assistant that provides information about current industry trends. Use the provided search results to inform your response."

const trendsQuery = "current industry trends with growth percentages"

// finalIdeaSections fixes the document's heading order; the extractor
// keys off these exact headings
const finalIdeaSections = `1. Business Name:
2. One-Sentence pitch:
3. Detailed description of the concept:
4. Target market:
5. Key features or services:
6. Potential revenue streams:
7. Initial steps to launch:`

// Generator covers the non-streaming generation calls
type Generator interface {
	Complete(ctx context.Context, req adapter.Request) (string, error)
}

// Streamer covers the streaming document generation
type Streamer interface {
	Stream(ctx context.Context, req adapter.Request) (adapter.TokenSource, error)
}

// Searcher supplies web results for the trends report and the
// analysis fan-out
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
	SearchAll(ctx context.Context, terms []string) ([]search.Result, error)
}

// Trend is one parsed industry trend line
type Trend struct {
	Name   string `json:"name"`
	Growth int    `json:"growth"`
}

// Service produces the session's summary artifacts: the final business
// document, the generation-time estimate and the trends report
type Service struct {
	generator Generator
	streamer  Streamer
	searcher  Searcher
	logger    *zap.Logger
}

func NewService(generator Generator, streamer Streamer, searcher Searcher) *Service {
	return &Service{
		generator: generator,
		streamer:  streamer,
		searcher:  searcher,
		logger:    logger.Get(),
	}
}

// FinalIdeaStream opens the token stream for the structured business
// document built from the session's clicked concepts
func (s *Service) FinalIdeaStream(ctx context.Context, clicked []string, seedIdea string) (adapter.TokenSource, error) {
	return s.streamer.Stream(ctx, adapter.Request{
		Messages: []adapter.Message{
			{Content: buildFinalIdeaPrompt(clicked, seedIdea)},
		},
	})
}

// FinalIdea generates the document in one shot and extracts the plan
// from it. The document comes back alongside the plan so callers can
// show the raw text.
func (s *Service) FinalIdea(ctx context.Context, clicked []string, seedIdea string) (extract.BusinessPlan, string, error) {
	source, err := s.FinalIdeaStream(ctx, clicked, seedIdea)
	if err != nil {
		return extract.BusinessPlan{}, "", err
	}
	document, err := relay.Collect(ctx, relay.Open(ctx, source))
	if err != nil {
		return extract.BusinessPlan{}, "", err
	}
	return extract.Extract(document), document, nil
}

// EstimateGenerationTime predicts how long the final document will
// take, in seconds. Two seconds per concept, capped at thirty.
func (s *Service) EstimateGenerationTime(nodeCount int) int {
	estimate := 2 * nodeCount
	if estimate > 30 {
		return 30
	}
	return estimate
}

// IndustryTrends searches for current trends and has the generator
// condense the results into name/growth pairs
func (s *Service) IndustryTrends(ctx context.Context) ([]Trend, error) {
	results, err := s.searcher.Search(ctx, trendsQuery)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.NewSearchFailed(trendsQuery, nil)
	}

	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.Title + ": " + r.Content
	}

	content, err := s.generator.Complete(ctx, adapter.Request{
		System: trendsSystemPrompt,
		Messages: []adapter.Message{
			{Content: "Here are some relevant search results:\n" + strings.Join(lines, "\n")},
			{Content: "Based on these search results, list 5 current industry trends with their growth percentages."},
		},
		Fast: true,
	})
	if err != nil {
		return nil, err
	}

	trends := parseTrends(content)
	s.logger.Info("Industry trends generated", zap.Int("count", len(trends)))
	return trends, nil
}

func buildFinalIdeaPrompt(clicked []string, seedIdea string) string {
	return fmt.Sprintf(
		"Based on the initial business idea %q and the following related concepts: %s, "+
			"generate a cohesive and innovative final business concept. "+
			"Structure the response with exactly these numbered sections:\n%s",
		seedIdea, strings.Join(clicked, ", "), finalIdeaSections,
	)
}

// parseTrends reads "name: NN%" lines. Lines without a name are
// skipped; an unparsable growth figure degrades to zero rather than
// dropping the trend.
func parseTrends(content string) []Trend {
	var trends []Trend
	for _, line := range strings.Split(content, "\n") {
		name, growthStr, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		growthStr = strings.TrimSpace(strings.ReplaceAll(growthStr, "%", ""))
		growth, err := strconv.Atoi(growthStr)
		if err != nil {
			growth = 0
		}
		trends = append(trends, Trend{Name: name, Growth: growth})
	}
	return trends
}
