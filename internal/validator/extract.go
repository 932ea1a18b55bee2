package validator

import "strings"

// extractObject returns the span from the first '{' to the last '}' inclusive.
// Oracles routinely wrap the object in prose or markdown fences.
func extractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}
