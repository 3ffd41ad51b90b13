package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pneumalabs/sermon-pages/internal/outline"
	"github.com/pneumalabs/sermon-pages/internal/pagegen"
	"github.com/pneumalabs/sermon-pages/internal/sermon/domain"
	"github.com/pneumalabs/sermon-pages/internal/sermon/model"
	"github.com/pneumalabs/sermon-pages/internal/sermon/storage"
)

const testTranscript = "Today we look at John 3:16. God loved the world, and this sermon explores how that love reaches every one of us in practice."

type fakeStorage struct {
	byKey map[string]*model.Sermon

	createErr     error
	createdSermon *model.Sermon
	duplicateOnce bool

	readyFields *storage.ReadyFields
	readyErr    error

	failedTitle string
	failedCalls int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{byKey: map[string]*model.Sermon{}}
}

func (f *fakeStorage) FindByIdempotencyKey(_ context.Context, userID, key string) (*model.Sermon, error) {
	if sermon, ok := f.byKey[userID+"|"+key]; ok {
		return sermon, nil
	}
	return nil, domain.ErrSermonNotFound
}

func (f *fakeStorage) CreateSermon(_ context.Context, sermon *model.Sermon) error {
	if f.duplicateOnce {
		f.duplicateOnce = false
		f.byKey[sermon.UserID+"|"+sermon.IdempotencyKey] = &model.Sermon{
			SermonID: "winner-id",
			UserID:   sermon.UserID,
			Status:   domain.StatusProcessing,
		}
		return domain.ErrDuplicateIdempotencyKey
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.createdSermon = sermon
	f.byKey[sermon.UserID+"|"+sermon.IdempotencyKey] = sermon
	return nil
}

func (f *fakeStorage) MarkReady(_ context.Context, sermonID string, fields storage.ReadyFields) (*model.Sermon, error) {
	if f.readyErr != nil {
		return nil, f.readyErr
	}
	f.readyFields = &fields

	updated := *f.createdSermon
	updated.Title = fields.Title
	updated.HeroVerse = fields.HeroVerse
	updated.ScriptureReferences = pq.StringArray(fields.ScriptureReferences)
	updated.KeyPoints = pq.StringArray(fields.KeyPoints)
	updated.Summary = fields.Summary
	updated.TranscriptExcerpt = fields.TranscriptExcerpt
	updated.PageURL = fields.PageURL
	updated.GenerationRequestID = fields.GenerationRequestID
	updated.Status = domain.StatusReady
	return &updated, nil
}

func (f *fakeStorage) MarkFailed(_ context.Context, sermonID, title string) error {
	f.failedCalls++
	f.failedTitle = title
	if sermon, ok := f.findByID(sermonID); ok {
		sermon.Status = domain.StatusFailed
		sermon.Title = title
	}
	return nil
}

func (f *fakeStorage) findByID(sermonID string) (*model.Sermon, bool) {
	for _, sermon := range f.byKey {
		if sermon.SermonID == sermonID {
			return sermon, true
		}
	}
	return nil, false
}

type fakeTranscriber struct {
	transcript string
	err        error
	calls      int
	gotMIME    string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.calls++
	f.gotMIME = mimeType
	return f.transcript, f.err
}

type fakeExtractor struct {
	outline *outline.Outline
	err     error
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, transcript string) (*outline.Outline, error) {
	f.calls++
	return f.outline, f.err
}

type fakeGenerator struct {
	result *pagegen.Result
	err    error
	calls  int
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (*pagegen.Result, error) {
	f.calls++
	f.prompt = prompt
	return f.result, f.err
}

type fakeEvents struct {
	ready  []string
	failed []string
	err    error
}

func (f *fakeEvents) SermonReady(_ context.Context, sermon *model.Sermon) error {
	f.ready = append(f.ready, sermon.SermonID)
	return f.err
}

func (f *fakeEvents) SermonFailed(_ context.Context, _, sermonID string) error {
	f.failed = append(f.failed, sermonID)
	return f.err
}

func testOutline() *outline.Outline {
	hero := "John 3:16"
	return &outline.Outline{
		Title:           "The Love of God",
		HeroVerse:       &hero,
		VerseReferences: []string{"John 3:16"},
		KeyPoints:       []string{"Point one", "Point two", "Point three"},
		Summary:         "A sermon on the love of God for the whole world.",
	}
}

type fixture struct {
	service     *Service
	storage     *fakeStorage
	transcriber *fakeTranscriber
	extractor   *fakeExtractor
	generator   *fakeGenerator
	events      *fakeEvents
}

func newFixture() *fixture {
	f := &fixture{
		storage:     newFakeStorage(),
		transcriber: &fakeTranscriber{transcript: testTranscript},
		extractor:   &fakeExtractor{outline: testOutline()},
		generator:   &fakeGenerator{result: &pagegen.Result{URL: "https://pages.example.com/p/1", RequestID: "req-1"}},
		events:      &fakeEvents{},
	}
	f.service = New(&Config{
		Storage:     f.storage,
		Transcriber: f.transcriber,
		Extractor:   f.extractor,
		Generator:   f.generator,
		Events:      f.events,
		Logger:      slog.New(slog.DiscardHandler),
	})
	return f
}

func TestSubmitText_Success(t *testing.T) {
	f := newFixture()

	sermon, reused, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)
	require.NoError(t, err)

	assert.False(t, reused)
	assert.Equal(t, domain.StatusReady, sermon.Status)
	assert.Equal(t, "The Love of God", sermon.Title)
	assert.Equal(t, "https://pages.example.com/p/1", sermon.PageURL)
	require.NotNil(t, sermon.GenerationRequestID)
	assert.Equal(t, "req-1", *sermon.GenerationRequestID)

	// Placeholder row was written before the pipeline ran.
	require.NotNil(t, f.storage.createdSermon)
	assert.Equal(t, domain.TitleProcessing, f.storage.createdSermon.Title)
	assert.True(t, strings.HasPrefix(f.storage.createdSermon.IdempotencyKey, "text_sha256:"))

	assert.Equal(t, 1, f.extractor.calls)
	assert.Equal(t, 1, f.generator.calls)
	assert.Zero(t, f.transcriber.calls)

	assert.Equal(t, []string{sermon.SermonID}, f.events.ready)
}

func TestSubmitText_ReusedSkipsPipeline(t *testing.T) {
	f := newFixture()

	first, reused, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)
	require.NoError(t, err)
	require.False(t, reused)

	second, reused, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)
	require.NoError(t, err)

	assert.True(t, reused)
	assert.Equal(t, first.SermonID, second.SermonID)
	assert.Equal(t, 1, f.extractor.calls, "pipeline must not run twice for identical content")
	assert.Equal(t, 1, f.generator.calls)
}

func TestSubmitText_DifferentOwnersDoNotShare(t *testing.T) {
	f := newFixture()

	_, reused, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)
	require.NoError(t, err)
	require.False(t, reused)

	_, reused, err = f.service.SubmitText(context.Background(), "user-2", testTranscript)
	require.NoError(t, err)

	assert.False(t, reused, "dedup is scoped per owner")
	assert.Equal(t, 2, f.generator.calls)
}

func TestSubmitText_InsertRaceReturnsWinner(t *testing.T) {
	f := newFixture()
	f.storage.duplicateOnce = true

	sermon, reused, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)
	require.NoError(t, err)

	assert.True(t, reused)
	assert.Equal(t, "winner-id", sermon.SermonID)
	assert.Zero(t, f.extractor.calls, "losing a create race must not run the pipeline")
}

func TestSubmitText_ExtractionFailureMarksFailed(t *testing.T) {
	f := newFixture()
	f.extractor.err = &outline.ExtractionError{Reason: "model returned garbage"}

	sermon, reused, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)

	require.Error(t, err)
	assert.Nil(t, sermon)
	assert.False(t, reused)

	var extractionErr *outline.ExtractionError
	assert.ErrorAs(t, err, &extractionErr)

	assert.Equal(t, 1, f.storage.failedCalls)
	assert.Equal(t, domain.TitleFailed, f.storage.failedTitle)
	assert.Zero(t, f.generator.calls)
	assert.Len(t, f.events.failed, 1)
}

func TestSubmitText_GenerationFailureMarksFailed(t *testing.T) {
	f := newFixture()
	f.generator.err = &pagegen.GenerationError{GenerationID: "g-1", Status: "failed"}

	_, _, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)

	var genErr *pagegen.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 1, f.storage.failedCalls)

	// A failed run stays visible as a failed row, never processing.
	stored := f.storage.byKey["user-1|"+f.storage.createdSermon.IdempotencyKey]
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestSubmitText_GenerationTimeoutMarksFailed(t *testing.T) {
	f := newFixture()
	f.generator.err = &pagegen.TimeoutError{GenerationID: "g-1", Attempts: 24}

	_, _, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)

	var timeoutErr *pagegen.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 1, f.storage.failedCalls)
}

func TestSubmitText_FinalizeStorageErrorIsDistinct(t *testing.T) {
	f := newFixture()
	f.storage.readyErr = errors.New("connection reset")

	_, _, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)

	var storageErr *domain.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "finalize", storageErr.Op)
	assert.Zero(t, f.storage.failedCalls, "a storage failure is not a pipeline failure")
}

func TestSubmitText_EmptyTranscript(t *testing.T) {
	f := newFixture()

	_, _, err := f.service.SubmitText(context.Background(), "user-1", "  \n ")

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Nil(t, f.storage.createdSermon, "validation failures must not touch storage")
}

func TestSubmitText_ExcerptBounded(t *testing.T) {
	f := newFixture()

	long := testTranscript + " " + strings.Repeat("word ", 2000)
	_, _, err := f.service.SubmitText(context.Background(), "user-1", long)
	require.NoError(t, err)

	require.NotNil(t, f.storage.readyFields)
	excerpt := f.storage.readyFields.TranscriptExcerpt
	assert.Len(t, []rune(excerpt), MaxTranscriptExcerpt)
	assert.True(t, strings.HasPrefix(long, excerpt))
}

func TestSubmitAudio_Success(t *testing.T) {
	f := newFixture()
	audio := []byte{0x49, 0x44, 0x33, 0x04, 0x00}

	sermon, reused, err := f.service.SubmitAudio(context.Background(), "user-1", audio, "audio/mpeg")
	require.NoError(t, err)

	assert.False(t, reused)
	assert.Equal(t, domain.StatusReady, sermon.Status)
	assert.Equal(t, 1, f.transcriber.calls)
	assert.Equal(t, "audio/mpeg", f.transcriber.gotMIME)
	assert.True(t, strings.HasPrefix(sermon.IdempotencyKey, "audio_sha256:"))
}

func TestSubmitAudio_IdenticalBytesReused(t *testing.T) {
	f := newFixture()
	audio := []byte("identical audio bytes")

	_, reused, err := f.service.SubmitAudio(context.Background(), "user-1", audio, "audio/wav")
	require.NoError(t, err)
	require.False(t, reused)

	_, reused, err = f.service.SubmitAudio(context.Background(), "user-1", audio, "audio/wav")
	require.NoError(t, err)

	assert.True(t, reused)
	assert.Equal(t, 1, f.transcriber.calls, "second submission must make zero external calls")
	assert.Equal(t, 1, f.extractor.calls)
	assert.Equal(t, 1, f.generator.calls)
}

func TestSubmitAudio_TranscriptionFailureMarksFailed(t *testing.T) {
	f := newFixture()
	f.transcriber.err = errors.New("speech service unavailable")
	f.transcriber.transcript = ""

	_, _, err := f.service.SubmitAudio(context.Background(), "user-1", []byte("bytes"), "audio/mpeg")

	require.Error(t, err)
	assert.Equal(t, 1, f.storage.failedCalls)
	assert.Zero(t, f.extractor.calls)
}

func TestSubmitAudio_EmptyAudio(t *testing.T) {
	f := newFixture()

	_, _, err := f.service.SubmitAudio(context.Background(), "user-1", nil, "audio/mpeg")

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmit_EventPublishErrorDoesNotFail(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker down")

	sermon, _, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)

	require.NoError(t, err, "event publishing is best-effort")
	assert.Equal(t, domain.StatusReady, sermon.Status)
}

func TestSubmit_NilEventsPublisher(t *testing.T) {
	f := newFixture()
	f.service.events = nil

	_, _, err := f.service.SubmitText(context.Background(), "user-1", testTranscript)
	require.NoError(t, err)
}
