package outline

import "strings"

// dedupeReferences removes case-insensitive duplicates while preserving
// first-seen casing and order. Blank entries are dropped.
func dedupeReferences(references []string) []string {
	seen := make(map[string]struct{}, len(references))
	result := make([]string, 0, len(references))

	for _, ref := range references {
		normalized := strings.TrimSpace(ref)
		if normalized == "" {
			continue
		}

		key := strings.ToLower(normalized)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		result = append(result, normalized)
	}

	return result
}

// filterGrounded keeps only references that appear verbatim
// (case-insensitive) in the source transcript, capped at max entries.
// The extraction service is instructed not to invent citations, but a
// generative model cannot be trusted to self-police factual grounding,
// so presence is re-verified here against the literal source text.
// Plain substring containment, no fuzzy matching: a dropped real
// citation is acceptable, a fabricated one is not.
func filterGrounded(references []string, transcript string, max int) []string {
	source := strings.ToLower(transcript)
	result := make([]string, 0, len(references))

	for _, ref := range references {
		if !strings.Contains(source, strings.ToLower(ref)) {
			continue
		}

		result = append(result, ref)
		if len(result) >= max {
			break
		}
	}

	return result
}

// resolveHeroVerse keeps the model-provided hero verse only when it is
// itself grounded in the transcript; otherwise it falls back to the
// first surviving reference, or nil when none survived.
func resolveHeroVerse(heroVerse *string, grounded []string, transcript string) *string {
	if heroVerse != nil {
		candidate := strings.TrimSpace(*heroVerse)
		if candidate != "" && strings.Contains(strings.ToLower(transcript), strings.ToLower(candidate)) {
			return &candidate
		}
	}

	if len(grounded) > 0 {
		first := grounded[0]
		return &first
	}

	return nil
}
