package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
	"github.com/mahiatlinux/FlashCardMasher/internal/task"
)

func waitForJob(t *testing.T, env *testEnv, jobID uuid.UUID) task.Job {
	t.Helper()

	var job task.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = env.tracker.Get(jobID)
		return err == nil && job.Terminal()
	}, 2*time.Second, 5*time.Millisecond, "generation job never reached a terminal state")
	return job
}

func TestGenerateFromText(t *testing.T) {
	gen := &stubGenerator{drafts: []generation.CardDraft{
		{Front: "What is photosynthesis?", Back: "Conversion of light to chemical energy"},
		{Front: "Where does it happen?", Back: "Chloroplasts"},
	}}
	env := newTestEnv(t, gen)
	deckID := env.createDeck(t, "Biology")

	rec := env.do(t, http.MethodPost, "/api/decks/"+deckID.String()+"/generate", GenerateRequest{
		Text: "Photosynthesis converts light energy into chemical energy in chloroplasts.",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	accepted := decodeBody[task.Job](t, rec)
	assert.Equal(t, deckID, accepted.DeckID)
	assert.Equal(t, task.JobStatusIdle, accepted.Status)

	job := waitForJob(t, env, accepted.ID)
	assert.Equal(t, task.JobStatusSuccess, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, 2, job.CardsAdded)

	deck, err := env.store.GetDeck(deckID)
	require.NoError(t, err)
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, "What is photosynthesis?", deck.Cards[0].Front)
}

func TestGenerateFromFileUpload(t *testing.T) {
	gen := &stubGenerator{drafts: []generation.CardDraft{
		{Front: "term", Back: "definition", Difficulty: domain.DifficultyEasy},
	}}
	env := newTestEnv(t, gen)
	deckID := env.createDeck(t, "Notes")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("some lecture notes"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("card_count", "5"))
	require.NoError(t, writer.WriteField("difficulty", "easy"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/decks/"+deckID.String()+"/generate", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	accepted := decodeBody[task.Job](t, rec)
	job := waitForJob(t, env, accepted.ID)
	assert.Equal(t, task.JobStatusSuccess, job.Status)
	assert.Equal(t, 1, job.CardsAdded)
}

func TestGenerateMissingDeck(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{})

	rec := env.do(t, http.MethodPost, "/api/decks/"+uuid.NewString()+"/generate", GenerateRequest{
		Text: "anything",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateRejectsEmptySource(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{})
	deckID := env.createDeck(t, "Biology")

	rec := env.do(t, http.MethodPost, "/api/decks/"+deckID.String()+"/generate", GenerateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateRejectsInvalidOptions(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{})
	deckID := env.createDeck(t, "Biology")

	rec := env.do(t, http.MethodPost, "/api/decks/"+deckID.String()+"/generate", GenerateRequest{
		Text: "source text",
		Options: generation.Options{
			CardCount:      500,
			Difficulty:     domain.DifficultyMedium,
			TermDefinition: true,
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateFailureSurfacesInJob(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	env := newTestEnv(t, gen)
	deckID := env.createDeck(t, "Biology")

	rec := env.do(t, http.MethodPost, "/api/decks/"+deckID.String()+"/generate", GenerateRequest{
		Text: "source text",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	accepted := decodeBody[task.Job](t, rec)
	job := waitForJob(t, env, accepted.ID)
	assert.Equal(t, task.JobStatusError, job.Status)
	assert.Contains(t, job.Error, "model unavailable")
	assert.Zero(t, job.CardsAdded)

	deck, err := env.store.GetDeck(deckID)
	require.NoError(t, err)
	assert.Empty(t, deck.Cards)
}

func TestGetJobUnknownID(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{})

	rec := env.do(t, http.MethodGet, "/api/generate/jobs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJobReflectsAcceptedJob(t *testing.T) {
	gen := &stubGenerator{drafts: []generation.CardDraft{{Front: "f", Back: "b"}}}
	env := newTestEnv(t, gen)
	deckID := env.createDeck(t, "Biology")

	rec := env.do(t, http.MethodPost, "/api/decks/"+deckID.String()+"/generate", GenerateRequest{
		Text: "source text",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	accepted := decodeBody[task.Job](t, rec)

	waitForJob(t, env, accepted.ID)

	rec = env.do(t, http.MethodGet, "/api/generate/jobs/"+accepted.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	polled := decodeBody[task.Job](t, rec)
	assert.Equal(t, accepted.ID, polled.ID)
	assert.Equal(t, task.JobStatusSuccess, polled.Status)
}
