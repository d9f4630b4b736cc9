package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
	"github.com/mahiatlinux/FlashCardMasher/internal/stats"
	"github.com/mahiatlinux/FlashCardMasher/internal/store"
	"github.com/mahiatlinux/FlashCardMasher/internal/study"
	"github.com/mahiatlinux/FlashCardMasher/internal/task"
)

type memorySnapshotter struct{ data []byte }

func (m *memorySnapshotter) Load(ctx context.Context) ([]byte, error) { return m.data, nil }
func (m *memorySnapshotter) Save(ctx context.Context, data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

type stubGenerator struct {
	drafts []generation.CardDraft
	err    error
}

func (s *stubGenerator) GenerateCards(
	ctx context.Context,
	sourceText string,
	opts generation.Options,
) ([]generation.CardDraft, error) {
	return s.drafts, s.err
}

type stubExtractor struct{}

func (stubExtractor) FromText(text string) (string, error) { return text, nil }
func (stubExtractor) FromFile(name string, data []byte) (string, error) {
	return string(data), nil
}
func (stubExtractor) FromURL(ctx context.Context, rawURL string) (string, error) {
	return "fetched " + rawURL, nil
}

type testEnv struct {
	store   *store.Store
	tracker *task.JobTracker
	runner  *task.Runner
	router  http.Handler
}

func newTestEnv(t *testing.T, gen generation.Generator) *testEnv {
	t.Helper()
	logger := slog.Default()

	st, err := store.New(context.Background(), &memorySnapshotter{}, logger)
	require.NoError(t, err)

	agg := stats.New()
	manager := study.NewManager(st)
	tracker := task.NewJobTracker()
	runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 8}, logger)
	runner.Start()
	t.Cleanup(runner.Stop)

	deckHandler := NewDeckHandler(st, agg, logger)
	cardHandler := NewCardHandler(st, logger)
	studyHandler := NewStudyHandler(manager, logger)
	statsHandler := NewStatsHandler(st, agg, logger)
	generateHandler := NewGenerateHandler(st, runner, tracker, stubExtractor{}, gen, 1<<20, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.ListDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Route("/{deckID}", func(r chi.Router) {
				r.Get("/", deckHandler.GetDeck)
				r.Patch("/", deckHandler.UpdateDeck)
				r.Delete("/", deckHandler.DeleteDeck)
				r.Get("/export", deckHandler.ExportDeck)
				r.Post("/generate", generateHandler.Generate)
				r.Post("/cards", cardHandler.AddCard)
				r.Post("/cards/import", deckHandler.ImportCards)
				r.Patch("/cards/{cardID}", cardHandler.UpdateCard)
				r.Delete("/cards/{cardID}", cardHandler.DeleteCard)
			})
		})
		r.Route("/study/sessions", func(r chi.Router) {
			r.Post("/", studyHandler.BeginSession)
			r.Get("/{sessionID}", studyHandler.GetSession)
			r.Post("/{sessionID}/rate", studyHandler.RateCard)
			r.Post("/{sessionID}/skip", studyHandler.SkipCard)
			r.Post("/{sessionID}/restart", studyHandler.RestartSession)
			r.Delete("/{sessionID}", studyHandler.DiscardSession)
		})
		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", statsHandler.Overview)
			r.Get("/accuracy", statsHandler.AccuracyByDay)
			r.Get("/weekdays", statsHandler.StudyTimeByWeekday)
			r.Get("/decks/recent", statsHandler.RecentDecks)
		})
		r.Get("/generate/jobs/{jobID}", generateHandler.GetJob)
	})

	return &testEnv{store: st, tracker: tracker, runner: runner, router: r}
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (env *testEnv) createDeck(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id, err := env.store.CreateDeck(context.Background(), name, "", nil)
	require.NoError(t, err)
	return id
}

func (env *testEnv) addCard(t *testing.T, deckID uuid.UUID, front string) uuid.UUID {
	t.Helper()
	id, err := env.store.AddCard(context.Background(), deckID, front, "back of "+front, nil, domain.DifficultyMedium)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	return id
}
