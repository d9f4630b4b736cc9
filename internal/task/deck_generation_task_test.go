package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) FromText(text string) (string, error) { return f.text, f.err }
func (f *fakeExtractor) FromFile(name string, data []byte) (string, error) {
	return f.text, f.err
}
func (f *fakeExtractor) FromURL(ctx context.Context, rawURL string) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	drafts []generation.CardDraft
	err    error
}

func (f *fakeGenerator) GenerateCards(
	ctx context.Context,
	sourceText string,
	opts generation.Options,
) ([]generation.CardDraft, error) {
	return f.drafts, f.err
}

type fakeCardWriter struct {
	added     []string
	deckGone  bool
	failAfter int
	err       error
}

func (f *fakeCardWriter) AddCard(
	ctx context.Context,
	deckID uuid.UUID,
	front, back string,
	tags []string,
	difficulty domain.Difficulty,
) (uuid.UUID, error) {
	if f.err != nil && len(f.added) >= f.failAfter {
		return uuid.Nil, f.err
	}
	if f.deckGone {
		return uuid.Nil, nil
	}
	f.added = append(f.added, front)
	return uuid.New(), nil
}

func drafts(fronts ...string) []generation.CardDraft {
	out := make([]generation.CardDraft, len(fronts))
	for i, front := range fronts {
		out[i] = generation.CardDraft{
			Front:      front,
			Back:       "back",
			Tags:       []string{},
			Difficulty: domain.DifficultyMedium,
		}
	}
	return out
}

func newTask(
	t *testing.T,
	tracker *JobTracker,
	job Job,
	ext Extractor,
	gen generation.Generator,
	store CardWriter,
) *DeckGenerationTask {
	t.Helper()
	task, err := NewDeckGenerationTask(
		job,
		Source{Text: "some study material"},
		generation.DefaultOptions(),
		ext, gen, store, tracker,
		slog.Default(),
	)
	require.NoError(t, err)
	return task
}

func TestDeckGenerationSuccess(t *testing.T) {
	tracker := NewJobTracker()
	job := tracker.Create(uuid.New())
	store := &fakeCardWriter{}

	task := newTask(t, tracker, job,
		&fakeExtractor{text: "extracted"},
		&fakeGenerator{drafts: drafts("a", "b", "c")},
		store,
	)

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.Equal(t, []string{"a", "b", "c"}, store.added)

	got, err := tracker.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusSuccess, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 3, got.CardsAdded)
}

func TestDeckGenerationExtractionFailure(t *testing.T) {
	tracker := NewJobTracker()
	job := tracker.Create(uuid.New())

	task := newTask(t, tracker, job,
		&fakeExtractor{err: errors.New("unsupported file type")},
		&fakeGenerator{},
		&fakeCardWriter{},
	)

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, TaskStatusFailed, task.Status())

	got, getErr := tracker.Get(job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, JobStatusError, got.Status)
	assert.Contains(t, got.Error, "unsupported file type")
}

func TestDeckGenerationGeneratorFailure(t *testing.T) {
	tracker := NewJobTracker()
	job := tracker.Create(uuid.New())
	store := &fakeCardWriter{}

	task := newTask(t, tracker, job,
		&fakeExtractor{text: "extracted"},
		&fakeGenerator{err: generation.ErrInvalidResponse},
		store,
	)

	err := task.Execute(context.Background())
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	assert.Empty(t, store.added)

	got, getErr := tracker.Get(job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, JobStatusError, got.Status)
}

func TestDeckGenerationMidBatchFailureKeepsCommittedCards(t *testing.T) {
	tracker := NewJobTracker()
	job := tracker.Create(uuid.New())
	store := &fakeCardWriter{failAfter: 2, err: errors.New("disk full")}

	task := newTask(t, tracker, job,
		&fakeExtractor{text: "extracted"},
		&fakeGenerator{drafts: drafts("a", "b", "c", "d")},
		store,
	)

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.Len(t, store.added, 2, "already committed cards are not rolled back")

	got, getErr := tracker.Get(job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, JobStatusError, got.Status)
}

func TestDeckGenerationDeckDeletedMidFlight(t *testing.T) {
	tracker := NewJobTracker()
	job := tracker.Create(uuid.New())
	store := &fakeCardWriter{deckGone: true}

	task := newTask(t, tracker, job,
		&fakeExtractor{text: "extracted"},
		&fakeGenerator{drafts: drafts("a", "b")},
		store,
	)

	require.NoError(t, task.Execute(context.Background()))

	got, err := tracker.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusSuccess, got.Status)
	assert.Zero(t, got.CardsAdded)
}

func TestNewDeckGenerationTaskValidation(t *testing.T) {
	tracker := NewJobTracker()
	job := tracker.Create(uuid.New())
	ext := &fakeExtractor{}
	gen := &fakeGenerator{}
	store := &fakeCardWriter{}
	logger := slog.Default()
	opts := generation.DefaultOptions()

	_, err := NewDeckGenerationTask(job, Source{Text: "x"}, opts, nil, gen, store, tracker, logger)
	assert.ErrorIs(t, err, ErrNilExtractor)

	_, err = NewDeckGenerationTask(job, Source{}, opts, ext, gen, store, tracker, logger)
	assert.ErrorIs(t, err, ErrBadSource)

	_, err = NewDeckGenerationTask(job, Source{Text: "x", URL: "http://a"}, opts, ext, gen, store, tracker, logger)
	assert.ErrorIs(t, err, ErrBadSource)

	badOpts := opts
	badOpts.CardCount = 1
	_, err = NewDeckGenerationTask(job, Source{Text: "x"}, badOpts, ext, gen, store, tracker, logger)
	assert.ErrorIs(t, err, generation.ErrInvalidOptions)

	noDeck := Job{ID: uuid.New()}
	_, err = NewDeckGenerationTask(noDeck, Source{Text: "x"}, opts, ext, gen, store, tracker, logger)
	assert.ErrorIs(t, err, ErrEmptyDeckID)
}
