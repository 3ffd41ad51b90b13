package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pneumalabs/sermon-pages/internal/sermon/domain"
	"github.com/pneumalabs/sermon-pages/internal/sermon/model"
	"github.com/pneumalabs/sermon-pages/shared/postgresql"
)

const uniqueViolation = "23505"

const sermonColumns = `
		sermon_id, user_id, idempotency_key, title, pastor_name, tags,
		hero_verse, scripture_references, key_points, summary,
		transcript_excerpt, page_url, generation_request_id, status,
		created_at, updated_at
`

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

func (s *Storage) CreateSermon(ctx context.Context, sermon *model.Sermon) error {
	query := `
		INSERT INTO sermons (
			sermon_id, user_id, idempotency_key, title, pastor_name, tags,
			hero_verse, scripture_references, key_points, summary,
			transcript_excerpt, page_url, generation_request_id, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		sermon.SermonID,
		sermon.UserID,
		sermon.IdempotencyKey,
		sermon.Title,
		sermon.PastorName,
		sermon.Tags,
		sermon.HeroVerse,
		sermon.ScriptureReferences,
		sermon.KeyPoints,
		sermon.Summary,
		sermon.TranscriptExcerpt,
		sermon.PageURL,
		sermon.GenerationRequestID,
		sermon.Status,
		sermon.CreatedAt,
		sermon.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to create sermon: %w", err)
	}

	return nil
}

// FindByIdempotencyKey looks up a sermon by content fingerprint, scoped
// to its owner. Returns domain.ErrSermonNotFound when absent.
func (s *Storage) FindByIdempotencyKey(ctx context.Context, userID, idempotencyKey string) (*model.Sermon, error) {
	var sermon model.Sermon
	query := `
		SELECT ` + sermonColumns + `
		FROM sermons
		WHERE user_id = $1 AND idempotency_key = $2
	`

	err := s.db.GetContext(ctx, &sermon, query, userID, idempotencyKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSermonNotFound
		}
		return nil, fmt.Errorf("failed to find sermon by idempotency key: %w", err)
	}

	return &sermon, nil
}

func (s *Storage) GetSermon(ctx context.Context, userID, sermonID string) (*model.Sermon, error) {
	var sermon model.Sermon
	query := `
		SELECT ` + sermonColumns + `
		FROM sermons
		WHERE user_id = $1 AND sermon_id = $2
	`

	err := s.db.GetContext(ctx, &sermon, query, userID, sermonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSermonNotFound
		}
		return nil, fmt.Errorf("failed to get sermon: %w", err)
	}

	return &sermon, nil
}

// ReadyFields is the full content written when the pipeline succeeds.
type ReadyFields struct {
	Title               string
	HeroVerse           *string
	ScriptureReferences []string
	KeyPoints           []string
	Summary             string
	TranscriptExcerpt   string
	PageURL             string
	GenerationRequestID *string
}

// MarkReady transitions a processing sermon to ready with its final
// content. The status guard in the WHERE clause keeps terminal states
// terminal even under concurrent writers.
func (s *Storage) MarkReady(ctx context.Context, sermonID string, fields ReadyFields) (*model.Sermon, error) {
	query := `
		UPDATE sermons
		SET title = $1,
			hero_verse = $2,
			scripture_references = $3,
			key_points = $4,
			summary = $5,
			transcript_excerpt = $6,
			page_url = $7,
			generation_request_id = $8,
			status = $9,
			updated_at = $10
		WHERE sermon_id = $11 AND status = $12
		RETURNING ` + sermonColumns + `
	`

	var sermon model.Sermon
	err := s.db.GetContext(
		ctx,
		&sermon,
		query,
		fields.Title,
		fields.HeroVerse,
		pq.StringArray(fields.ScriptureReferences),
		pq.StringArray(fields.KeyPoints),
		fields.Summary,
		fields.TranscriptExcerpt,
		fields.PageURL,
		fields.GenerationRequestID,
		domain.StatusReady,
		time.Now(),
		sermonID,
		domain.StatusProcessing,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSermonNotFound
		}
		return nil, fmt.Errorf("failed to mark sermon ready: %w", err)
	}

	return &sermon, nil
}

// MarkFailed transitions a processing sermon to failed. The row stays
// visible to its owner so they can see the attempt happened.
func (s *Storage) MarkFailed(ctx context.Context, sermonID, title string) error {
	query := `
		UPDATE sermons
		SET title = $1, status = $2, updated_at = $3
		WHERE sermon_id = $4 AND status = $5
	`

	_, err := s.db.ExecContext(ctx, query, title, domain.StatusFailed, time.Now(), sermonID, domain.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to mark sermon failed: %w", err)
	}

	return nil
}

type SermonFilter struct {
	UserID   string
	Status   string
	PageSize int
	Cursor   *SermonCursor
}

type SermonCursor struct {
	CreatedAt time.Time
	SermonID  string
}

func (s *Storage) ListSermons(ctx context.Context, filter SermonFilter) ([]model.Sermon, error) {
	query := `
		SELECT ` + sermonColumns + `
		FROM sermons
		WHERE user_id = $1
	`
	args := []interface{}{filter.UserID}
	argIdx := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, sermon_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.SermonID)
		argIdx += 2
	}

	// Order by created_at DESC, sermon_id DESC for consistent pagination
	query += " ORDER BY created_at DESC, sermon_id DESC"

	// Fetch one extra to determine if there are more results
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var sermons []model.Sermon
	err := s.db.SelectContext(ctx, &sermons, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sermons: %w", err)
	}

	return sermons, nil
}

// DetailUpdate carries the owner-editable fields. Nil means unchanged.
type DetailUpdate struct {
	Title           *string
	PastorName      *string
	ClearPastorName bool
	Tags            []string
}

// UpdateDetails applies an owner-scoped edit of title, pastor name, or
// tags, returning the updated row.
func (s *Storage) UpdateDetails(ctx context.Context, userID, sermonID string, update DetailUpdate) (*model.Sermon, error) {
	set := ""
	args := []interface{}{}
	argIdx := 1

	appendSet := func(column string, value interface{}) {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", column, argIdx)
		args = append(args, value)
		argIdx++
	}

	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.ClearPastorName {
		appendSet("pastor_name", nil)
	} else if update.PastorName != nil {
		appendSet("pastor_name", *update.PastorName)
	}
	if update.Tags != nil {
		appendSet("tags", pq.StringArray(update.Tags))
	}

	if set == "" {
		return nil, fmt.Errorf("no fields to update")
	}

	appendSet("updated_at", time.Now())

	query := fmt.Sprintf(`
		UPDATE sermons
		SET %s
		WHERE user_id = $%d AND sermon_id = $%d
		RETURNING %s
	`, set, argIdx, argIdx+1, sermonColumns)
	args = append(args, userID, sermonID)

	var sermon model.Sermon
	err := s.db.GetContext(ctx, &sermon, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSermonNotFound
		}
		return nil, fmt.Errorf("failed to update sermon: %w", err)
	}

	return &sermon, nil
}

func (s *Storage) DeleteSermon(ctx context.Context, userID, sermonID string) error {
	query := `
		DELETE FROM sermons
		WHERE user_id = $1 AND sermon_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, userID, sermonID)
	if err != nil {
		return fmt.Errorf("failed to delete sermon: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete sermon: %w", err)
	}

	if affected == 0 {
		return domain.ErrSermonNotFound
	}

	return nil
}
