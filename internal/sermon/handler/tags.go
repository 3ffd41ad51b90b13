package handler

import "strings"

const (
	maxTags      = 20
	maxTagLength = 30
)

// normalizeTags trims, truncates, and case-insensitively dedupes tags,
// preserving first-seen casing and order, capped at maxTags.
func normalizeTags(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))

	for _, raw := range input {
		cleaned := strings.TrimSpace(raw)
		if cleaned == "" {
			continue
		}

		if len(cleaned) > maxTagLength {
			cleaned = cleaned[:maxTagLength]
		}

		key := strings.ToLower(cleaned)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		result = append(result, cleaned)

		if len(result) >= maxTags {
			break
		}
	}

	return result
}
