package mindmap

import "strings"

// Filter removes candidates that duplicate any name in context, then
// collapses duplicates within the batch itself (first occurrence wins).
// Comparison is case-insensitive exact-string equality after trimming;
// no fuzzy matching. An empty result is surfaced as-is — retrying is the
// caller's decision.
func Filter(candidates, context []string) []string {
	seen := make(map[string]bool, len(context))
	for _, name := range context {
		seen[normalizeName(name)] = true
	}

	var unique []string
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		key := normalizeName(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, trimmed)
	}

	return unique
}

// normalizeName lowercases and trims a name for comparison
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
