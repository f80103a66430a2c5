package extract

import (
	"regexp"
	"strings"
)

// BusinessPlan is the fixed schema recovered from the generated
// free-text document
type BusinessPlan struct {
	BusinessName   string   `json:"businessName"`
	Pitch          string   `json:"pitch"`
	Description    string   `json:"description"`
	TargetMarket   string   `json:"targetMarket"`
	KeyFeatures    []string `json:"keyFeatures"`
	RevenueStreams []string `json:"revenueStreams"`
	InitialSteps   []string `json:"initialSteps"`
}

// Field defaults when a section is missing. Extraction never errors; a
// section the generator dropped or renamed only degrades its own field.
const (
	DefaultBusinessName = "Unnamed Business"
	DefaultScalar       = "N/A"
)

// Section-boundary heuristic: single-line fields take the remainder of
// the labeled line; block fields run from their heading to the next
// numbered heading ("N. ") at the start of a line, or end of document.
var (
	namePattern        = regexp.MustCompile(`(?i)Business Name[:\n]\s*(.*)`)
	pitchPattern       = regexp.MustCompile(`(?i)One-Sentence pitch[:\n]\s*(.*)`)
	descriptionPattern = regexp.MustCompile(`(?is)Detailed description[^:]*:(.*?)(?:\n\d+\.\s|$)`)
	marketPattern      = regexp.MustCompile(`(?i)Target market:\s*(.*)`)
	featuresPattern    = regexp.MustCompile(`(?is)Key features or services:(.*?)(?:\n\d+\.\s|$)`)
	revenuePattern     = regexp.MustCompile(`(?is)Potential revenue streams:(.*?)(?:\n\d+\.\s|$)`)
	stepsPattern       = regexp.MustCompile(`(?is)Initial steps to launch[^:]*:(.*)`)

	boldMarkers = regexp.MustCompile(`\*\*`)
)

// Extract recovers the schema from a free-form document. Every field is
// matched independently so a missing or mis-ordered section only blanks
// that field.
func Extract(document string) BusinessPlan {
	return BusinessPlan{
		BusinessName:   scalar(namePattern, document, DefaultBusinessName),
		Pitch:          scalar(pitchPattern, document, DefaultScalar),
		Description:    scalar(descriptionPattern, document, DefaultScalar),
		TargetMarket:   scalar(marketPattern, document, DefaultScalar),
		KeyFeatures:    list(featuresPattern, document),
		RevenueStreams: list(revenuePattern, document),
		InitialSteps:   list(stepsPattern, document),
	}
}

// scalar pulls a single-valued field, stripping bold markers the
// generator likes to add
func scalar(pattern *regexp.Regexp, document, fallback string) string {
	match := pattern.FindStringSubmatch(document)
	if match == nil {
		return fallback
	}
	value := strings.TrimSpace(boldMarkers.ReplaceAllString(match[1], ""))
	if value == "" {
		return fallback
	}
	return value
}

// list pulls a block field and splits it on line breaks, trimming each
// line and discarding blanks
func list(pattern *regexp.Regexp, document string) []string {
	match := pattern.FindStringSubmatch(document)
	if match == nil {
		return []string{}
	}

	items := []string{}
	for _, line := range strings.Split(match[1], "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
