package outline

import (
	"fmt"
	"unicode/utf8"
)

const (
	MinTitleLength = 3
	MaxTitleLength = 140

	MinHeroVerseLength = 3
	MaxHeroVerseLength = 600

	MinReferenceLength = 2
	MaxReferenceLength = 120
	MaxVerseReferences = 20

	KeyPointCount     = 3
	MinKeyPointLength = 3
	MaxKeyPointLength = 1000

	MinSummaryLength = 20
	MaxSummaryLength = 3000
)

// Outline is the structured extraction of a sermon transcript: what the
// page generator renders and what gets persisted on the sermon record.
// It is transient and never stored standalone.
type Outline struct {
	Title           string   `json:"title"`
	HeroVerse       *string  `json:"heroVerse"`
	VerseReferences []string `json:"verseReferences"`
	KeyPoints       []string `json:"keyPoints"`
	Summary         string   `json:"summary"`
}

// Validate checks the outline against its schema bounds. An outline
// returned to callers must always pass this check.
func (o *Outline) Validate() error {
	if n := utf8.RuneCountInString(o.Title); n < MinTitleLength || n > MaxTitleLength {
		return fmt.Errorf("title length %d out of range [%d, %d]", n, MinTitleLength, MaxTitleLength)
	}

	if o.HeroVerse != nil {
		if n := utf8.RuneCountInString(*o.HeroVerse); n < MinHeroVerseLength || n > MaxHeroVerseLength {
			return fmt.Errorf("hero verse length %d out of range [%d, %d]", n, MinHeroVerseLength, MaxHeroVerseLength)
		}
	}

	if len(o.VerseReferences) > MaxVerseReferences {
		return fmt.Errorf("too many verse references: %d (max %d)", len(o.VerseReferences), MaxVerseReferences)
	}

	for i, ref := range o.VerseReferences {
		if n := utf8.RuneCountInString(ref); n < MinReferenceLength || n > MaxReferenceLength {
			return fmt.Errorf("verse reference %d length %d out of range [%d, %d]", i, n, MinReferenceLength, MaxReferenceLength)
		}
	}

	if len(o.KeyPoints) != KeyPointCount {
		return fmt.Errorf("expected exactly %d key points, got %d", KeyPointCount, len(o.KeyPoints))
	}

	for i, point := range o.KeyPoints {
		if n := utf8.RuneCountInString(point); n < MinKeyPointLength || n > MaxKeyPointLength {
			return fmt.Errorf("key point %d length %d out of range [%d, %d]", i, n, MinKeyPointLength, MaxKeyPointLength)
		}
	}

	if n := utf8.RuneCountInString(o.Summary); n < MinSummaryLength || n > MaxSummaryLength {
		return fmt.Errorf("summary length %d out of range [%d, %d]", n, MinSummaryLength, MaxSummaryLength)
	}

	return nil
}
