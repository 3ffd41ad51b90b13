package pagegen

import (
	"fmt"
	"strings"

	"github.com/pneumalabs/sermon-pages/internal/outline"
)

// BuildPrompt renders an outline into the plain-text generation prompt.
// The prompt forbids call-to-action content: the content-shape contract
// for the generated page is enforced by instruction text, the service
// offers no local validation hook.
func BuildPrompt(o *outline.Outline) string {
	points := make([]string, len(o.KeyPoints))
	for i, point := range o.KeyPoints {
		points[i] = fmt.Sprintf("%d. %s", i+1, point)
	}

	heroVerse := "None explicitly cited"
	if o.HeroVerse != nil {
		heroVerse = *o.HeroVerse
	}

	references := "None explicitly cited"
	if len(o.VerseReferences) > 0 {
		references = strings.Join(o.VerseReferences, ", ")
	}

	sections := []string{
		"Create a clean sermon summary webpage.",
		"Do not include any CTA/action buttons or sections.",
		"Do not include text like 'Watch Message', 'Share Sermon', 'Learn More', or similar actions.",
		"The page should contain only title, hero verse, scripture references, key points, and summary content.",
		"Sermon Title: " + o.Title,
		"Hero Verse: " + heroVerse,
		"Scripture References: " + references,
		"Key Points:",
		strings.Join(points, "\n"),
		"Summary:",
		o.Summary,
	}

	return strings.Join(sections, "\n\n")
}
