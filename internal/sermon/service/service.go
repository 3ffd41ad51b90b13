package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pneumalabs/sermon-pages/internal/fingerprint"
	"github.com/pneumalabs/sermon-pages/internal/outline"
	"github.com/pneumalabs/sermon-pages/internal/pagegen"
	"github.com/pneumalabs/sermon-pages/internal/sermon/domain"
	"github.com/pneumalabs/sermon-pages/internal/sermon/model"
	"github.com/pneumalabs/sermon-pages/internal/sermon/storage"
	"github.com/pneumalabs/sermon-pages/internal/transcribe"
)

// MaxTranscriptExcerpt bounds the transcript prefix persisted on the
// sermon record.
const MaxTranscriptExcerpt = 3000

// Storage is the persistence surface the orchestrator needs.
type Storage interface {
	CreateSermon(ctx context.Context, sermon *model.Sermon) error
	FindByIdempotencyKey(ctx context.Context, userID, idempotencyKey string) (*model.Sermon, error)
	MarkReady(ctx context.Context, sermonID string, fields storage.ReadyFields) (*model.Sermon, error)
	MarkFailed(ctx context.Context, sermonID, title string) error
}

// OutlineExtractor derives a grounded outline from transcript text.
type OutlineExtractor interface {
	Extract(ctx context.Context, transcript string) (*outline.Outline, error)
}

// PageGenerator synthesizes a shareable page from a rendered prompt.
type PageGenerator interface {
	Generate(ctx context.Context, prompt string) (*pagegen.Result, error)
}

// EventPublisher receives terminal-state notifications. Publishing is
// best-effort and never fails a submission.
type EventPublisher interface {
	SermonReady(ctx context.Context, sermon *model.Sermon) error
	SermonFailed(ctx context.Context, userID, sermonID string) error
}

// Service orchestrates the sermon processing pipeline: fingerprint,
// dedup lookup, placeholder row, transcription (audio only), outline
// extraction, page generation, terminal persistence.
type Service struct {
	storage     Storage
	transcriber transcribe.Transcriber
	extractor   OutlineExtractor
	generator   PageGenerator
	events      EventPublisher
	logger      *slog.Logger
}

// Config holds the orchestrator's injected collaborators. Events may
// be nil when lifecycle publishing is disabled.
type Config struct {
	Storage     Storage
	Transcriber transcribe.Transcriber
	Extractor   OutlineExtractor
	Generator   PageGenerator
	Events      EventPublisher
	Logger      *slog.Logger
}

func New(cfg *Config) *Service {
	return &Service{
		storage:     cfg.Storage,
		transcriber: cfg.Transcriber,
		extractor:   cfg.Extractor,
		generator:   cfg.Generator,
		events:      cfg.Events,
		logger:      cfg.Logger,
	}
}

// processed is the pipeline output applied to the sermon row.
type processed struct {
	outline             *outline.Outline
	transcriptExcerpt   string
	pageURL             string
	generationRequestID *string
}

// SubmitText processes pasted transcript text. Returns the sermon, a
// reused flag (true when an existing sermon with the same content
// fingerprint was returned without reprocessing), and an error.
func (s *Service) SubmitText(ctx context.Context, userID, transcript string) (*model.Sermon, bool, error) {
	cleaned := strings.TrimSpace(transcript)
	if cleaned == "" {
		return nil, false, &domain.ValidationError{Message: "transcript is empty"}
	}

	key := fingerprint.FromTranscript(cleaned)

	return s.submit(ctx, userID, key, func(ctx context.Context) (*processed, error) {
		return s.runPipeline(ctx, cleaned)
	})
}

// SubmitAudio transcribes an audio recording and processes the result.
func (s *Service) SubmitAudio(ctx context.Context, userID string, audio []byte, mimeType string) (*model.Sermon, bool, error) {
	if len(audio) == 0 {
		return nil, false, &domain.ValidationError{Message: "audio content is empty"}
	}

	key := fingerprint.FromAudio(audio)

	return s.submit(ctx, userID, key, func(ctx context.Context) (*processed, error) {
		transcript, err := s.transcriber.Transcribe(ctx, audio, mimeType)
		if err != nil {
			return nil, err
		}
		return s.runPipeline(ctx, strings.TrimSpace(transcript))
	})
}

// submit runs the idempotent placeholder-first submission flow. The
// dedup lookup is advisory, not transactional: concurrent identical
// submissions race to the unique (user_id, idempotency_key) constraint
// and the loser reconciles by returning the winner's row.
func (s *Service) submit(ctx context.Context, userID, key string, run func(ctx context.Context) (*processed, error)) (*model.Sermon, bool, error) {
	existing, err := s.storage.FindByIdempotencyKey(ctx, userID, key)
	if err == nil {
		s.logger.Info("Reusing existing sermon for idempotency key",
			slog.String("sermon_id", existing.SermonID),
			slog.String("idempotency_key", key),
		)
		return existing, true, nil
	}
	if !errors.Is(err, domain.ErrSermonNotFound) {
		return nil, false, &domain.StorageError{Op: "lookup", Err: err}
	}

	now := time.Now()
	placeholder := &model.Sermon{
		SermonID:       uuid.New().String(),
		UserID:         userID,
		IdempotencyKey: key,
		Title:          domain.TitleProcessing,
		PageURL:        domain.PlaceholderURL,
		Status:         domain.StatusProcessing,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.storage.CreateSermon(ctx, placeholder); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			// Lost the insert race: someone else already owns this
			// fingerprint. Return their row instead of erroring.
			winner, findErr := s.storage.FindByIdempotencyKey(ctx, userID, key)
			if findErr != nil {
				return nil, false, &domain.StorageError{Op: "reconcile", Err: findErr}
			}
			return winner, true, nil
		}
		return nil, false, &domain.StorageError{Op: "create", Err: err}
	}

	result, err := run(ctx)
	if err != nil {
		s.logger.Error("Sermon pipeline failed",
			slog.String("sermon_id", placeholder.SermonID),
			slog.String("error", err.Error()),
		)

		if markErr := s.storage.MarkFailed(ctx, placeholder.SermonID, domain.TitleFailed); markErr != nil {
			s.logger.Error("Failed to mark sermon failed",
				slog.String("sermon_id", placeholder.SermonID),
				slog.String("error", markErr.Error()),
			)
		}

		s.publishFailed(ctx, userID, placeholder.SermonID)
		return nil, false, err
	}

	updated, err := s.storage.MarkReady(ctx, placeholder.SermonID, storage.ReadyFields{
		Title:               result.outline.Title,
		HeroVerse:           result.outline.HeroVerse,
		ScriptureReferences: result.outline.VerseReferences,
		KeyPoints:           result.outline.KeyPoints,
		Summary:             result.outline.Summary,
		TranscriptExcerpt:   result.transcriptExcerpt,
		PageURL:             result.pageURL,
		GenerationRequestID: result.generationRequestID,
	})
	if err != nil {
		return nil, false, &domain.StorageError{Op: "finalize", Err: err}
	}

	s.logger.Info("Sermon processed",
		slog.String("sermon_id", updated.SermonID),
		slog.String("title", updated.Title),
		slog.String("page_url", updated.PageURL),
	)

	s.publishReady(ctx, updated)
	return updated, false, nil
}

// runPipeline extracts an outline from the transcript and generates the
// shareable page.
func (s *Service) runPipeline(ctx context.Context, transcript string) (*processed, error) {
	extracted, err := s.extractor.Extract(ctx, transcript)
	if err != nil {
		return nil, err
	}

	generation, err := s.generator.Generate(ctx, pagegen.BuildPrompt(extracted))
	if err != nil {
		return nil, err
	}

	var requestID *string
	if generation.RequestID != "" {
		requestID = &generation.RequestID
	}

	return &processed{
		outline:             extracted,
		transcriptExcerpt:   excerpt(transcript, MaxTranscriptExcerpt),
		pageURL:             generation.URL,
		generationRequestID: requestID,
	}, nil
}

func (s *Service) publishReady(ctx context.Context, sermon *model.Sermon) {
	if s.events == nil {
		return
	}
	if err := s.events.SermonReady(ctx, sermon); err != nil {
		s.logger.Warn("Failed to publish sermon ready event",
			slog.String("sermon_id", sermon.SermonID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) publishFailed(ctx context.Context, userID, sermonID string) {
	if s.events == nil {
		return
	}
	if err := s.events.SermonFailed(ctx, userID, sermonID); err != nil {
		s.logger.Warn("Failed to publish sermon failed event",
			slog.String("sermon_id", sermonID),
			slog.String("error", err.Error()),
		)
	}
}

// excerpt returns a rune-safe prefix of the transcript.
func excerpt(transcript string, limit int) string {
	runes := []rune(transcript)
	if len(runes) <= limit {
		return transcript
	}
	return string(runes[:limit])
}
