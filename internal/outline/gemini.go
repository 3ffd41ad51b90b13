package outline

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// responseSchema constrains the model to the raw outline shape. The
// exactly-3 key points bound is stated here and re-checked locally.
var responseSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"title", "heroVerse", "verseReferences", "keyPoints", "summary"},
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString},
		"heroVerse": {
			Type:     genai.TypeString,
			Nullable: genai.Ptr(true),
		},
		"verseReferences": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"keyPoints": {
			Type:     genai.TypeArray,
			MinItems: genai.Ptr(int64(KeyPointCount)),
			MaxItems: genai.Ptr(int64(KeyPointCount)),
			Items:    &genai.Schema{Type: genai.TypeString},
		},
		"summary": {Type: genai.TypeString},
	},
}

// GeminiClient implements ModelClient on top of the Gemini API using
// JSON-constrained structured output.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient wraps an existing genai client for outline extraction.
func NewGeminiClient(client *genai.Client, model string) *GeminiClient {
	return &GeminiClient{
		client: client,
		model:  model,
	}
}

// ExtractOutline sends the transcript to Gemini and decodes the
// JSON-schema-constrained response into a RawOutline.
func (g *GeminiClient) ExtractOutline(ctx context.Context, instruction, transcript string) (*RawOutline, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(transcript), config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from model %s", g.model)
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	if text == "" {
		return nil, fmt.Errorf("model %s returned no text parts", g.model)
	}

	var raw RawOutline
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode structured response: %w", err)
	}

	return &raw, nil
}
