package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pneumalabs/sermon-pages/internal/outline"
	"github.com/pneumalabs/sermon-pages/internal/pagegen"
	"github.com/pneumalabs/sermon-pages/internal/sermon/domain"
	"github.com/pneumalabs/sermon-pages/internal/sermon/dto"
	"github.com/pneumalabs/sermon-pages/internal/sermon/model"
	"github.com/pneumalabs/sermon-pages/internal/sermon/storage"
)

// UserIDKey is the gin context key holding the authenticated owner id,
// set by the auth middleware.
const UserIDKey = "user_id"

// ProcessAudio handles POST /api/v1/sermons/process
// Accepts a multipart audio upload and runs the processing pipeline.
func (h *SermonHandler) ProcessAudio(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing audio file",
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "File must be an audio format",
		})
		return
	}

	if fileHeader.Size > h.limits.MaxAudioBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Audio file exceeds size limit",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unable to read audio file",
		})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, h.limits.MaxAudioBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unable to read audio file",
		})
		return
	}

	if int64(len(audio)) > h.limits.MaxAudioBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Audio file exceeds size limit",
		})
		return
	}

	h.logger.Info("ProcessAudio called",
		slog.String("user_id", userID),
		slog.String("content_type", contentType),
		slog.Int("size", len(audio)),
	)

	sermon, reused, err := h.pipeline.SubmitAudio(c.Request.Context(), userID, audio, contentType)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProcessResponse{Sermon: toDTO(sermon), Reused: reused})
}

// ProcessText handles POST /api/v1/sermons/process-text
// Accepts pasted transcript text and runs the processing pipeline.
func (h *SermonHandler) ProcessText(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	var req dto.ProcessTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid payload. Provide transcript text.",
		})
		return
	}

	transcript := strings.TrimSpace(req.Transcript)
	length := utf8.RuneCountInString(transcript)
	if length < h.limits.MinTranscriptChars || length > h.limits.MaxTranscriptChars {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Transcript length out of range",
		})
		return
	}

	h.logger.Info("ProcessText called",
		slog.String("user_id", userID),
		slog.Int("transcript_chars", length),
	)

	sermon, reused, err := h.pipeline.SubmitText(c.Request.Context(), userID, transcript)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProcessResponse{Sermon: toDTO(sermon), Reused: reused})
}

// GetSermon handles GET /api/v1/sermons/:sermon_id
func (h *SermonHandler) GetSermon(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	sermonID := c.Param("sermon_id")
	if _, err := uuid.Parse(sermonID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "sermon_id must be a valid UUID",
		})
		return
	}

	sermon, err := h.store.GetSermon(c.Request.Context(), userID, sermonID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sermon": toDTO(sermon)})
}

// ListSermons handles GET /api/v1/sermons
// Lists the caller's sermons, newest first, with cursor pagination.
func (h *SermonHandler) ListSermons(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	var req dto.ListSermonsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeSermonCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := storage.SermonFilter{
		UserID:   userID,
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	sermons, err := h.store.ListSermons(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	hasMore := len(sermons) > req.PageSize
	if hasMore {
		sermons = sermons[:req.PageSize]
	}

	response := make([]dto.SermonDTO, len(sermons))
	for i := range sermons {
		response[i] = toDTO(&sermons[i])
	}

	var nextCursor string
	if hasMore {
		last := sermons[len(sermons)-1]
		nextCursor, err = EncodeSermonCursor(&storage.SermonCursor{
			CreatedAt: last.CreatedAt,
			SermonID:  last.SermonID,
		})
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, dto.ListSermonsResponse{
		Sermons:    response,
		NextCursor: nextCursor,
	})
}

// UpdateSermon handles PATCH /api/v1/sermons/:sermon_id
// Edits title, pastor name, or tags on an owned sermon.
func (h *SermonHandler) UpdateSermon(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	sermonID := c.Param("sermon_id")
	if _, err := uuid.Parse(sermonID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "sermon_id must be a valid UUID",
		})
		return
	}

	var req dto.UpdateSermonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid update payload",
		})
		return
	}

	update := storage.DetailUpdate{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if n := utf8.RuneCountInString(title); n < 3 || n > 140 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Title must be between 3 and 140 characters",
			})
			return
		}
		update.Title = &title
	}

	if req.PastorName != nil {
		name := strings.TrimSpace(*req.PastorName)
		if utf8.RuneCountInString(name) > 140 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Pastor name must be at most 140 characters",
			})
			return
		}
		if name == "" {
			update.ClearPastorName = true
		} else {
			update.PastorName = &name
		}
	}

	if req.Tags != nil {
		update.Tags = normalizeTags(*req.Tags)
	}

	if update.Title == nil && update.PastorName == nil && !update.ClearPastorName && update.Tags == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No valid fields to update",
		})
		return
	}

	sermon, err := h.store.UpdateDetails(c.Request.Context(), userID, sermonID, update)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sermon": toDTO(sermon)})
}

// DeleteSermon handles DELETE /api/v1/sermons/:sermon_id
func (h *SermonHandler) DeleteSermon(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	sermonID := c.Param("sermon_id")
	if _, err := uuid.Parse(sermonID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "sermon_id must be a valid UUID",
		})
		return
	}

	if err := h.store.DeleteSermon(c.Request.Context(), userID, sermonID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sermon_id": sermonID})
}

// respondError maps domain and pipeline errors to HTTP responses.
// Every failure resolves to a single error message string.
func (h *SermonHandler) respondError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		storageErr    *domain.StorageError
		extractionErr *outline.ExtractionError
		generationErr *pagegen.GenerationError
		timeoutErr    *pagegen.TimeoutError
	)

	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrSermonNotFound):
		status = http.StatusNotFound
	case errors.As(err, &timeoutErr):
		status = http.StatusGatewayTimeout
	case errors.As(err, &extractionErr), errors.As(err, &generationErr):
		status = http.StatusBadGateway
	case errors.As(err, &storageErr):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", slog.String("error", err.Error()))
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func toDTO(sermon *model.Sermon) dto.SermonDTO {
	stalled := sermon.Status == domain.StatusProcessing &&
		time.Since(sermon.UpdatedAt) > domain.StalledAfter

	return dto.SermonDTO{
		SermonID:            sermon.SermonID,
		Title:               sermon.Title,
		PastorName:          sermon.PastorName,
		Tags:                sermon.Tags,
		HeroVerse:           sermon.HeroVerse,
		ScriptureReferences: sermon.ScriptureReferences,
		KeyPoints:           sermon.KeyPoints,
		Summary:             sermon.Summary,
		TranscriptExcerpt:   sermon.TranscriptExcerpt,
		PageURL:             sermon.PageURL,
		GenerationRequestID: sermon.GenerationRequestID,
		Status:              sermon.Status,
		Stalled:             stalled,
		CreatedAt:           sermon.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           sermon.UpdatedAt.Format(time.RFC3339),
	}
}
