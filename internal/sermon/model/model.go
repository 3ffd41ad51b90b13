package model

import (
	"time"

	"github.com/lib/pq"
)

// Sermon is the persisted sermon record. Every read and write is scoped
// to UserID; (UserID, IdempotencyKey) is unique and is the sole dedup
// index for submissions.
type Sermon struct {
	SermonID            string         `db:"sermon_id"`
	UserID              string         `db:"user_id"`
	IdempotencyKey      string         `db:"idempotency_key"`
	Title               string         `db:"title"`
	PastorName          *string        `db:"pastor_name"`
	Tags                pq.StringArray `db:"tags"`
	HeroVerse           *string        `db:"hero_verse"`
	ScriptureReferences pq.StringArray `db:"scripture_references"`
	KeyPoints           pq.StringArray `db:"key_points"`
	Summary             string         `db:"summary"`
	TranscriptExcerpt   string         `db:"transcript_excerpt"`
	PageURL             string         `db:"page_url"`
	GenerationRequestID *string        `db:"generation_request_id"`
	Status              string         `db:"status"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}
