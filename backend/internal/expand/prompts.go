package expand

import (
	"fmt"
	"strings"
)

const suggestionSystemPrompt = "You are a business idea development assistant. " +
	"Help users explore and refine their business concept by providing specific, " +
	"actionable suggestions for services and features at each stage of development. " +
	"Use the full context provided to inform your suggestions while focusing on the " +
	"current depth's goals. Ensure each suggestion is unique and not a duplicate of " +
	"any previous context or suggestion."

// depthInstruction maps the node's depth to the development stage the
// prompt asks for. This is a fixed five-tier table, not open-ended.
func depthInstruction(depth int) string {
	switch depth {
	case 1:
		return "Start with broad categories of services or features."
	case 2:
		return "Begin to specify the main services or features within the chosen category."
	case 3:
		return "Elaborate on specific aspects or components of the services or features."
	case 4:
		return "Provide detailed characteristics or functionalities of the services or features."
	default:
		return "Focus on refining and finalizing the details of the services or features."
	}
}

// buildSuggestionPrompt asks for the next batch of child concepts as a
// JSON array of {name} objects
func buildSuggestionPrompt(nodeName, initialIdea string, depth int, context []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Expand on the concept %q in the context of the initial business idea %q.\n", nodeName, initialIdea)
	fmt.Fprintf(&b, "Current depth: %d.\n", depth)
	fmt.Fprintf(&b, "Full context (including selected nodes): %s.\n", strings.Join(context, " > "))
	b.WriteString("Provide 3-5 specific, multi-word suggestions that build upon the idea and all the given context. ")
	b.WriteString("Focus on developing a clear baseline of services and/or features for the business. ")
	b.WriteString("Ensure each suggestion is unique and not a duplicate of any previous context or suggestion. ")
	b.WriteString(depthInstruction(depth))
	b.WriteString("\nRespond with a JSON array of objects, each containing a 'name' property. ")
	b.WriteString("Keep each name concise (2-3 words max). Ensure each name is unique and not present in the given context.")
	return b.String()
}
