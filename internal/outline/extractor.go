package outline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// systemInstruction tells the model to report only scripture that is
// explicitly present in the transcript. This reduces but does not
// eliminate hallucination risk; the grounding filter below is the
// actual enforcement.
const systemInstruction = "You are Pneuma, a theological editor. Extract sermon structure from transcript text. " +
	"Important: only include scripture references that are explicitly present in the transcript. " +
	"Do not infer, guess, or hallucinate verses. If no verse is explicitly mentioned, " +
	"set heroVerse to null and verseReferences to an empty array. Always return exactly 3 key points."

// RawOutline is the unvalidated structured response from the extraction
// model. Nothing in it is trusted until it has been filtered and
// re-validated against the transcript.
type RawOutline struct {
	Title           string   `json:"title"`
	HeroVerse       *string  `json:"heroVerse"`
	VerseReferences []string `json:"verseReferences"`
	KeyPoints       []string `json:"keyPoints"`
	Summary         string   `json:"summary"`
}

// ModelClient is the structured-extraction call the Extractor depends
// on. The production implementation is GeminiClient; tests substitute
// a fake.
type ModelClient interface {
	ExtractOutline(ctx context.Context, instruction, transcript string) (*RawOutline, error)
}

// Extractor derives a grounded sermon outline from transcript text.
type Extractor struct {
	model  ModelClient
	logger *slog.Logger
}

// NewExtractor creates an Extractor backed by the given model client.
func NewExtractor(model ModelClient, logger *slog.Logger) *Extractor {
	return &Extractor{
		model:  model,
		logger: logger,
	}
}

// Extract submits the transcript to the extraction model and returns a
// validated outline. Every verse reference and any non-nil hero verse
// in the result is guaranteed to appear verbatim (case-insensitive) in
// the transcript.
func (e *Extractor) Extract(ctx context.Context, transcript string) (*Outline, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, &ExtractionError{Reason: "transcript is empty"}
	}

	raw, err := e.model.ExtractOutline(ctx, systemInstruction, transcript)
	if err != nil {
		return nil, &ExtractionError{Reason: "extraction model call failed", Err: err}
	}

	if raw == nil {
		return nil, &ExtractionError{Reason: "extraction model returned no structured result"}
	}

	deduped := dedupeReferences(raw.VerseReferences)
	grounded := filterGrounded(deduped, transcript, MaxVerseReferences)

	if dropped := len(deduped) - len(grounded); dropped > 0 {
		e.logger.Warn("Dropped ungrounded verse references",
			slog.Int("reported", len(deduped)),
			slog.Int("dropped", dropped),
		)
	}

	keyPoints := raw.KeyPoints
	if len(keyPoints) > KeyPointCount {
		keyPoints = keyPoints[:KeyPointCount]
	}

	result := &Outline{
		Title:           strings.TrimSpace(raw.Title),
		HeroVerse:       resolveHeroVerse(raw.HeroVerse, grounded, transcript),
		VerseReferences: grounded,
		KeyPoints:       keyPoints,
		Summary:         strings.TrimSpace(raw.Summary),
	}

	if err := result.Validate(); err != nil {
		return nil, &ExtractionError{Reason: fmt.Sprintf("extraction result failed validation: %v", err)}
	}

	e.logger.Info("Outline extracted",
		slog.String("title", result.Title),
		slog.Int("verse_references", len(result.VerseReferences)),
		slog.Bool("has_hero_verse", result.HeroVerse != nil),
	)

	return result, nil
}
