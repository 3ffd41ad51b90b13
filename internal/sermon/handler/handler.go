package handler

import (
	"context"
	"log/slog"

	"github.com/pneumalabs/sermon-pages/internal/sermon/model"
	"github.com/pneumalabs/sermon-pages/internal/sermon/storage"
)

// Limits holds the request validation bounds applied before any
// external call is made.
type Limits struct {
	MaxAudioBytes      int64
	MinTranscriptChars int
	MaxTranscriptChars int
}

// Pipeline is the submission surface of the sermon orchestrator.
type Pipeline interface {
	SubmitText(ctx context.Context, userID, transcript string) (*model.Sermon, bool, error)
	SubmitAudio(ctx context.Context, userID string, audio []byte, mimeType string) (*model.Sermon, bool, error)
}

// Store is the read/edit surface of sermon storage used by handlers.
type Store interface {
	GetSermon(ctx context.Context, userID, sermonID string) (*model.Sermon, error)
	ListSermons(ctx context.Context, filter storage.SermonFilter) ([]model.Sermon, error)
	UpdateDetails(ctx context.Context, userID, sermonID string, update storage.DetailUpdate) (*model.Sermon, error)
	DeleteSermon(ctx context.Context, userID, sermonID string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	Pipeline Pipeline
	Store    Store
	Limits   Limits
}

// SermonHandler handles sermon-related HTTP requests
type SermonHandler struct {
	logger   *slog.Logger
	pipeline Pipeline
	store    Store
	limits   Limits
}

// NewSermonHandler creates a new SermonHandler instance
func NewSermonHandler(deps *Dependencies) *SermonHandler {
	return &SermonHandler{
		logger:   deps.Logger,
		pipeline: deps.Pipeline,
		store:    deps.Store,
		limits:   deps.Limits,
	}
}
