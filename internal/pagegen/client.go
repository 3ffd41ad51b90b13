package pagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultPollMaxAttempts = 24
	defaultPollInterval    = 2500 * time.Millisecond
)

// Config holds generation service client configuration.
type Config struct {
	BaseURL         string
	APIKey          string
	TemplateID      string
	ThemeID         string
	FolderID        string
	PollInterval    time.Duration
	PollMaxAttempts int
	HTTPClient      *http.Client
}

// Client calls the webpage-generation service. Generation may complete
// synchronously or require polling; Generate handles both.
type Client struct {
	baseURL         string
	apiKey          string
	templateID      string
	themeID         string
	folderID        string
	pollInterval    time.Duration
	pollMaxAttempts int
	httpClient      *http.Client
	logger          *slog.Logger
}

// Result is a completed page generation.
type Result struct {
	URL          string
	RequestID    string
	GenerationID string
}

// NewClient creates a generation service client.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	pollMaxAttempts := cfg.PollMaxAttempts
	if pollMaxAttempts <= 0 {
		pollMaxAttempts = defaultPollMaxAttempts
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		templateID:      cfg.TemplateID,
		themeID:         cfg.ThemeID,
		folderID:        cfg.FolderID,
		pollInterval:    pollInterval,
		pollMaxAttempts: pollMaxAttempts,
		httpClient:      httpClient,
		logger:          logger,
	}
}

// Generate submits the prompt to the generation service and waits for
// a shareable page URL. When a template id is configured, the request
// goes through the template endpoint; otherwise a from-scratch
// generation is requested. If the submit response does not already
// carry a result URL, the generation id is polled at a fixed interval
// for a bounded number of attempts.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	path := "/v1.0/generations"
	body := map[string]any{
		"inputText": prompt,
		"textMode":  "generate",
		"format":    "webpage",
	}

	if c.templateID != "" {
		path = "/v1.0/generations/from-template"
		body = map[string]any{
			"templateId": c.templateID,
			"prompt":     prompt,
		}
	}

	if c.themeID != "" {
		body["themeId"] = c.themeID
	}
	if c.folderID != "" {
		body["folderIds"] = []string{c.folderID}
	}

	payload, requestID, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	generationID := extractGenerationID(payload)

	if url := extractURL(payload); url != "" {
		c.logger.Info("Page generated synchronously",
			slog.String("generation_id", generationID),
			slog.String("request_id", requestID),
		)
		return &Result{URL: url, RequestID: requestID, GenerationID: generationID}, nil
	}

	if generationID == "" {
		return nil, &GenerationError{
			RequestID: requestID,
			Status:    "no generation id returned",
			Payload:   payload,
		}
	}

	return c.waitForURL(ctx, generationID, requestID)
}

// waitForURL polls the generation until it yields a URL, reports a
// terminal failure, or the attempt budget is exhausted. The budget is
// a hard timeout, not a retry policy.
func (c *Client) waitForURL(ctx context.Context, generationID, requestID string) (*Result, error) {
	var lastPayload map[string]any

	for attempt := 1; attempt <= c.pollMaxAttempts; attempt++ {
		payload, pollRequestID, err := c.doRequest(ctx, http.MethodGet, "/v1.0/generations/"+generationID, nil)
		if err != nil {
			return nil, err
		}

		if pollRequestID != "" {
			requestID = pollRequestID
		}
		lastPayload = payload

		if url := extractURL(payload); url != "" {
			c.logger.Info("Page generation completed",
				slog.String("generation_id", generationID),
				slog.Int("attempts", attempt),
			)
			return &Result{URL: url, RequestID: requestID, GenerationID: generationID}, nil
		}

		status := extractStatus(payload)
		if status == "failed" || status == "error" || status == "cancelled" {
			return nil, &GenerationError{
				GenerationID: generationID,
				RequestID:    requestID,
				Status:       status,
				Payload:      payload,
			}
		}

		if attempt < c.pollMaxAttempts {
			if err := sleepCtx(ctx, c.pollInterval); err != nil {
				return nil, err
			}
		}
	}

	return nil, &TimeoutError{
		GenerationID: generationID,
		RequestID:    requestID,
		Attempts:     c.pollMaxAttempts,
		LastPayload:  lastPayload,
	}
}

// doRequest issues one API call and decodes the JSON response into a
// generic map. The request id header is surfaced for diagnostics.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (map[string]any, string, error) {
	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("generation service request failed: %w", err)
	}
	defer resp.Body.Close()

	requestID := resp.Header.Get("X-Request-Id")

	payload := map[string]any{}
	// A body that fails to decode is treated as empty; the status code
	// decides whether the call succeeded.
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, requestID, &GenerationError{
			RequestID: requestID,
			Status:    fmt.Sprintf("http %d", resp.StatusCode),
			Payload:   payload,
		}
	}

	return payload, requestID, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
