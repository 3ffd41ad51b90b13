package pagegen

import (
	"encoding/json"
	"fmt"
)

// GenerationError reports that the generation service rejected the
// request or reported a terminal failure/cancellation for a generation.
type GenerationError struct {
	GenerationID string
	RequestID    string
	Status       string
	Payload      map[string]any
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("page generation failed. generation_id=%s request_id=%s status=%s payload=%s",
		orNA(e.GenerationID), orNA(e.RequestID), orNA(e.Status), compactJSON(e.Payload))
}

// TimeoutError reports that polling exhausted its attempt budget
// without the service reaching a terminal state.
type TimeoutError struct {
	GenerationID string
	RequestID    string
	Attempts     int
	LastPayload  map[string]any
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("page generation timed out after %d attempts. generation_id=%s request_id=%s payload=%s",
		e.Attempts, orNA(e.GenerationID), orNA(e.RequestID), compactJSON(e.LastPayload))
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func compactJSON(payload map[string]any) string {
	if payload == nil {
		return "{}"
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
