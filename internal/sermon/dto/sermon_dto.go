package dto

type ProcessTextRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// UpdateSermonRequest carries owner edits. A provided-but-blank
// pastor_name clears the field; an absent one leaves it untouched.
type UpdateSermonRequest struct {
	Title      *string   `json:"title"`
	PastorName *string   `json:"pastor_name"`
	Tags       *[]string `json:"tags"`
}

type ListSermonsRequest struct {
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListSermonsResponse struct {
	Sermons    []SermonDTO `json:"sermons"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type ProcessResponse struct {
	Sermon SermonDTO `json:"sermon"`
	Reused bool      `json:"reused,omitempty"`
}

type SermonDTO struct {
	SermonID            string   `json:"sermon_id"`
	Title               string   `json:"title"`
	PastorName          *string  `json:"pastor_name"`
	Tags                []string `json:"tags"`
	HeroVerse           *string  `json:"hero_verse"`
	ScriptureReferences []string `json:"scripture_references"`
	KeyPoints           []string `json:"key_points"`
	Summary             string   `json:"summary"`
	TranscriptExcerpt   string   `json:"transcript_excerpt"`
	PageURL             string   `json:"page_url"`
	GenerationRequestID *string  `json:"generation_request_id,omitempty"`
	Status              string   `json:"status"`
	Stalled             bool     `json:"stalled,omitempty"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}
