package transcribe

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const transcriptionInstruction = "Transcribe this sermon recording verbatim. " +
	"Return only the spoken words as plain text, with no speaker labels, timestamps, or commentary."

// Transcriber converts audio bytes into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// GeminiTranscriber implements Transcriber via the Gemini API using an
// inline audio part. One call, no retry; the orchestrator owns failure
// handling.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// NewGeminiTranscriber wraps an existing genai client for speech-to-text.
func NewGeminiTranscriber(client *genai.Client, model string) *GeminiTranscriber {
	return &GeminiTranscriber{
		client: client,
		model:  model,
	}
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(transcriptionInstruction),
		{
			InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     audio,
			},
		},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty transcription response from model %s", g.model)
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	transcript := strings.TrimSpace(text.String())
	if transcript == "" {
		return "", fmt.Errorf("model %s returned no transcript text", g.model)
	}

	return transcript, nil
}
