package insights

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"brainstormer/backend/internal/adapter"
	"brainstormer/backend/pkg/errors"
)

const distillSystemPrompt = "You are a business idea analyst."

const marketAnalysisSystemPrompt = "You are a market analysis expert. Provide brief, impactful insights based on the given information."

// MarketAnalysis is the condensed market picture produced from the
// fan-out search over a business idea's distilled terms
type MarketAnalysis struct {
	Summary              string   `json:"summary"`
	KeyProducts          []string `json:"keyProducts"`
	MarketTrends         []string `json:"marketTrends"`
	PotentialCompetitors []string `json:"potentialCompetitors"`
	SuccessPrediction    string   `json:"successPrediction"`
}

// Competitor is one entry in the competitor landscape. Strength is a
// rough 60-100 score; the search surface gives no real signal for it.
type Competitor struct {
	Name     string `json:"name"`
	Strength int    `json:"strength"`
}

// DistillSearchTerms asks the generator for searchable terms covering
// the idea's industry, technology and consumer-need angles. One term
// per response line; blank lines are dropped.
func (s *Service) DistillSearchTerms(ctx context.Context, idea string) ([]string, error) {
	content, err := s.generator.Complete(ctx, adapter.Request{
		System: distillSystemPrompt,
		Messages: []adapter.Message{
			{Content: fmt.Sprintf(
				"Given the business idea: %q, provide 5 key searchable terms or phrases "+
					"that would help gather relevant market information, even if this exact "+
					"idea doesn't exist yet. Focus on industry sectors, technologies, or "+
					"consumer needs that this idea addresses.", idea)},
		},
		Fast:      true,
		MaxTokens: 200,
	})
	if err != nil {
		return nil, err
	}

	var terms []string
	for _, line := range strings.Split(content, "\n") {
		if term := strings.TrimSpace(line); term != "" {
			terms = append(terms, term)
		}
	}
	return terms, nil
}

// AnalyzeMarket distills the idea into search terms, fans out one web
// search per term and has the generator condense everything into the
// structured market picture. A failed or empty distillation degrades
// to searching for the idea verbatim rather than aborting.
func (s *Service) AnalyzeMarket(ctx context.Context, idea string) (MarketAnalysis, error) {
	terms, err := s.DistillSearchTerms(ctx, idea)
	if err != nil || len(terms) == 0 {
		if err != nil {
			s.logger.Warn("Term distillation failed, searching the raw idea", zap.Error(err))
		}
		terms = []string{idea}
	}

	results, err := s.searcher.SearchAll(ctx, terms)
	if err != nil {
		return MarketAnalysis{}, err
	}
	if len(results) == 0 {
		return MarketAnalysis{}, errors.NewSearchFailed(strings.Join(terms, ", "), nil)
	}

	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.Title + ": " + r.Content
	}

	content, err := s.generator.Complete(ctx, adapter.Request{
		System: marketAnalysisSystemPrompt,
		Messages: []adapter.Message{
			{Content: fmt.Sprintf(
				"Analyze the market for the business idea %q using this information:\n%s\n\n"+
					"Respond in exactly this format:\n"+
					"Summary: [one-sentence market summary]\n"+
					"Key Products/Services: [product 1], [product 2], [product 3]\n"+
					"Market Trends: [trend 1], [trend 2], [trend 3]\n"+
					"Potential Competitors: [competitor 1], [competitor 2], [competitor 3]\n"+
					"Success Prediction: [one-sentence prediction]",
				idea, strings.Join(lines, "\n\n"))},
		},
		MaxTokens: 200,
	})
	if err != nil {
		return MarketAnalysis{}, err
	}

	analysis := parseMarketAnalysis(content)
	s.logger.Info("Market analysis generated",
		zap.Int("terms", len(terms)),
		zap.Int("results", len(results)))
	return analysis, nil
}

// CompetitorLandscape searches for the idea's top competitors and
// scores each one
func (s *Service) CompetitorLandscape(ctx context.Context, idea string) ([]Competitor, error) {
	results, err := s.searcher.Search(ctx, "top 5 competitors for "+idea)
	if err != nil {
		return nil, err
	}

	competitors := make([]Competitor, 0, len(results))
	for _, r := range results {
		name, _, _ := strings.Cut(r.Title, " - ")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		competitors = append(competitors, Competitor{
			Name:     name,
			Strength: 60 + rand.Intn(41),
		})
	}
	return competitors, nil
}

// parseMarketAnalysis reads the generator's line-per-field response.
// List fields are comma-separated; unrecognized lines are ignored so a
// chatty preamble does not break the parse.
func parseMarketAnalysis(content string) MarketAnalysis {
	var analysis MarketAnalysis
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Summary:"):
			analysis.Summary = strings.TrimSpace(strings.TrimPrefix(line, "Summary:"))
		case strings.HasPrefix(line, "Key Products/Services:"):
			analysis.KeyProducts = splitList(strings.TrimPrefix(line, "Key Products/Services:"))
		case strings.HasPrefix(line, "Market Trends:"):
			analysis.MarketTrends = splitList(strings.TrimPrefix(line, "Market Trends:"))
		case strings.HasPrefix(line, "Potential Competitors:"):
			analysis.PotentialCompetitors = splitList(strings.TrimPrefix(line, "Potential Competitors:"))
		case strings.HasPrefix(line, "Success Prediction:"):
			analysis.SuccessPrediction = strings.TrimSpace(strings.TrimPrefix(line, "Success Prediction:"))
		}
	}
	return analysis
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
