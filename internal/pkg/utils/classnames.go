package utils

import "strings"

// ClassNames composes an HTML class attribute value from the given tokens,
// dropping empty and whitespace-only entries.
func ClassNames(classes ...string) string {
	parts := make([]string, 0, len(classes))
	for _, class := range classes {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
