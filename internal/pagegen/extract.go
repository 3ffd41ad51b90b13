package pagegen

import "strings"

// maxScanDepth bounds the recursive URL scan so a pathological payload
// cannot drive unbounded recursion.
const maxScanDepth = 6

// urlFields is the priority-ordered set of response fields checked for
// a result URL before falling back to a recursive scan. The generation
// service's response shape is not contractually stable across its
// endpoints, so extraction has to be tolerant.
var urlFields = []string{"pageUrl", "url", "shareUrl", "viewUrl", "publicUrl", "resultUrl"}

func extractURL(payload map[string]any) string {
	return scanURL(payload, 0)
}

func scanURL(payload map[string]any, depth int) string {
	if payload == nil || depth > maxScanDepth {
		return ""
	}

	for _, field := range urlFields {
		if url := maybeURL(payload[field]); url != "" {
			return url
		}
	}

	for _, value := range payload {
		nested, ok := value.(map[string]any)
		if !ok {
			continue
		}
		if url := scanURL(nested, depth+1); url != "" {
			return url
		}
	}

	return ""
}

func maybeURL(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}

	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return ""
	}

	return s
}

func extractGenerationID(payload map[string]any) string {
	if id, ok := payload["generationId"].(string); ok {
		return id
	}

	if id, ok := payload["id"].(string); ok {
		return id
	}

	return ""
}

func extractStatus(payload map[string]any) string {
	if status, ok := payload["status"].(string); ok {
		return strings.ToLower(status)
	}

	if state, ok := payload["state"].(string); ok {
		return strings.ToLower(state)
	}

	return ""
}
