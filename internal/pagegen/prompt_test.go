package pagegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pneumalabs/sermon-pages/internal/outline"
)

func TestBuildPrompt(t *testing.T) {
	hero := "John 3:16"
	o := &outline.Outline{
		Title:           "The Love of God",
		HeroVerse:       &hero,
		VerseReferences: []string{"John 3:16", "Romans 5:8"},
		KeyPoints:       []string{"First point", "Second point", "Third point"},
		Summary:         "A summary of the sermon content for the page.",
	}

	prompt := BuildPrompt(o)

	assert.Contains(t, prompt, "Do not include any CTA/action buttons or sections.")
	assert.Contains(t, prompt, "Sermon Title: The Love of God")
	assert.Contains(t, prompt, "Hero Verse: John 3:16")
	assert.Contains(t, prompt, "Scripture References: John 3:16, Romans 5:8")
	assert.Contains(t, prompt, "1. First point\n2. Second point\n3. Third point")
	assert.Contains(t, prompt, "A summary of the sermon content for the page.")
}

func TestBuildPrompt_NoScripture(t *testing.T) {
	o := &outline.Outline{
		Title:     "On Gratitude",
		KeyPoints: []string{"One", "Two", "Three"},
		Summary:   "A sermon about gratitude in everyday life.",
	}

	prompt := BuildPrompt(o)

	assert.Contains(t, prompt, "Hero Verse: None explicitly cited")
	assert.Contains(t, prompt, "Scripture References: None explicitly cited")
}
