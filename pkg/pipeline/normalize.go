package pipeline

import "strings"

// StripCodeFence removes a markdown code fence wrapping model output,
// if present. A leading fence may carry a language tag. Input without
// fence markers passes through unchanged, so the function is
// idempotent.
//
//	StripCodeFence("```json\n{\"a\":1}\n```") == "{\"a\":1}"
//	StripCodeFence("{\"a\":1}")               == "{\"a\":1}"
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line, e.g. "json" or "html".
		trimmed = trimmed[idx+1:]
	} else {
		// Single-line fence: the content follows any language tag
		// directly, which we cannot distinguish; keep it all.
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}

	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
