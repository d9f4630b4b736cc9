package study

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/store"
)

type memorySnapshotter struct{ data []byte }

func (m *memorySnapshotter) Load(ctx context.Context) ([]byte, error) { return m.data, nil }
func (m *memorySnapshotter) Save(ctx context.Context, data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

// newDeck builds a store holding one deck with the given fronts.
func newDeck(t *testing.T, fronts ...string) (*store.Store, uuid.UUID) {
	t.Helper()
	s, err := store.New(context.Background(), &memorySnapshotter{data: nil}, slog.Default())
	require.NoError(t, err)

	deckID, err := s.CreateDeck(context.Background(), "Web Dev", "", nil)
	require.NoError(t, err)
	for _, front := range fronts {
		_, err := s.AddCard(context.Background(), deckID, front, "back of "+front, nil, domain.DifficultyMedium)
		require.NoError(t, err)
	}
	return s, deckID
}

func TestFullSessionScenario(t *testing.T) {
	// Deck "Web Dev" with 3 cards; rate(3), rate(0), rate(2).
	s, deckID := newDeck(t, "a", "b", "c")
	ctx := context.Background()

	session := NewSession(s, deckID, OrderDeck)
	require.NoError(t, session.Begin())
	assert.Equal(t, StateInProgress, session.State())

	require.NoError(t, session.Rate(ctx, 3))
	require.NoError(t, session.Rate(ctx, 0))
	require.NoError(t, session.Rate(ctx, 2))

	assert.Equal(t, StateComplete, session.State())

	summary, err := session.Summary()
	require.NoError(t, err)
	assert.Equal(t, Tally{Correct: 2, Incorrect: 1}, summary.Tally)
	assert.InDelta(t, 66.67, summary.Accuracy, 0.01)
	assert.Equal(t, 3, summary.Total)

	// Deck-level recency was recorded on completion.
	deck, err := s.GetDeck(deckID)
	require.NoError(t, err)
	require.NotNil(t, deck.LastStudied)
	assert.False(t, summary.Ended.Before(*deck.LastStudied))
}

func TestSessionVisitsEachCardOnceInOrder(t *testing.T) {
	s, deckID := newDeck(t, "a", "b", "c", "d")
	ctx := context.Background()

	session := NewSession(s, deckID, OrderDeck)
	require.NoError(t, session.Begin())

	var visited []string
	for session.State() == StateInProgress {
		card, err := session.Current()
		require.NoError(t, err)
		visited = append(visited, card.Front)
		require.NoError(t, session.Rate(ctx, 2))
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, visited)

	tally := session.Tally()
	assert.Equal(t, 4, tally.Correct+tally.Incorrect)
}

func TestBeginRejectsEmptyDeck(t *testing.T) {
	s, deckID := newDeck(t)

	session := NewSession(s, deckID, OrderDeck)
	assert.ErrorIs(t, session.Begin(), ErrEmptyDeck)
	assert.Equal(t, StateNotStarted, session.State())
}

func TestBeginRejectsMissingDeck(t *testing.T) {
	s, _ := newDeck(t, "a")

	session := NewSession(s, uuid.New(), OrderDeck)
	assert.ErrorIs(t, session.Begin(), store.ErrDeckNotFound)
}

func TestStateViolations(t *testing.T) {
	s, deckID := newDeck(t, "a")
	ctx := context.Background()

	session := NewSession(s, deckID, OrderDeck)

	// Rate before begin.
	assert.ErrorIs(t, session.Rate(ctx, 2), ErrNotInProgress)
	assert.ErrorIs(t, session.Skip(ctx), ErrNotInProgress)
	_, err := session.Current()
	assert.ErrorIs(t, err, ErrNotInProgress)
	_, err = session.Summary()
	assert.ErrorIs(t, err, ErrNotComplete)

	require.NoError(t, session.Begin())

	// Begin again while running is a typed violation; Restart is the
	// supported path.
	assert.ErrorIs(t, session.Begin(), ErrAlreadyInProgress)

	// Out-of-range confidence leaves state untouched.
	assert.ErrorIs(t, session.Rate(ctx, 4), ErrInvalidConfidence)
	assert.ErrorIs(t, session.Rate(ctx, -1), ErrInvalidConfidence)
	assert.Equal(t, Tally{}, session.Tally())

	require.NoError(t, session.Rate(ctx, 2))
	assert.Equal(t, StateComplete, session.State())

	// Rate after complete.
	assert.ErrorIs(t, session.Rate(ctx, 2), ErrNotInProgress)
}

func TestSkipAdvancesWithoutRating(t *testing.T) {
	s, deckID := newDeck(t, "a", "b")
	ctx := context.Background()

	session := NewSession(s, deckID, OrderDeck)
	require.NoError(t, session.Begin())

	first, err := session.Current()
	require.NoError(t, err)

	require.NoError(t, session.Skip(ctx))
	require.NoError(t, session.Rate(ctx, 3))

	assert.Equal(t, StateComplete, session.State())
	summary, err := session.Summary()
	require.NoError(t, err)
	assert.Equal(t, Tally{Correct: 1, Skipped: 1}, summary.Tally)
	assert.InDelta(t, 100.0, summary.Accuracy, 0.001, "accuracy counts rated cards only")

	// The skipped card was never rated.
	card, err := s.GetCard(deckID, first.ID)
	require.NoError(t, err)
	assert.Nil(t, card.Confidence)
	assert.Nil(t, card.LastStudied)
}

func TestAllSkippedAccuracyZero(t *testing.T) {
	s, deckID := newDeck(t, "a", "b")
	ctx := context.Background()

	session := NewSession(s, deckID, OrderDeck)
	require.NoError(t, session.Begin())
	require.NoError(t, session.Skip(ctx))
	require.NoError(t, session.Skip(ctx))

	summary, err := session.Summary()
	require.NoError(t, err)
	assert.Zero(t, summary.Accuracy)
}

func TestRestartPicksUpCurrentDeckCards(t *testing.T) {
	s, deckID := newDeck(t, "a")
	ctx := context.Background()

	session := NewSession(s, deckID, OrderDeck)
	require.NoError(t, session.Begin())
	require.NoError(t, session.Rate(ctx, 1))
	assert.Equal(t, StateComplete, session.State())

	// Deck grows between runs; restart sees the current list, not the
	// stale one captured at the original begin.
	_, err := s.AddCard(ctx, deckID, "b", "back", nil, domain.DifficultyMedium)
	require.NoError(t, err)

	require.NoError(t, session.Restart())
	assert.Equal(t, StateInProgress, session.State())
	_, total := session.Progress()
	assert.Equal(t, 2, total)
	assert.Equal(t, Tally{}, session.Tally())
}

func TestLowConfidenceFirstOrdering(t *testing.T) {
	s, deckID := newDeck(t, "high", "unstudied", "low")
	ctx := context.Background()

	deck, err := s.GetDeck(deckID)
	require.NoError(t, err)
	require.NoError(t, s.RateCard(ctx, deckID, deck.Cards[0].ID, 3)) // high
	require.NoError(t, s.RateCard(ctx, deckID, deck.Cards[2].ID, 0)) // low

	session := NewSession(s, deckID, OrderLowConfidenceFirst)
	require.NoError(t, session.Begin())

	var order []string
	for session.State() == StateInProgress {
		card, err := session.Current()
		require.NoError(t, err)
		order = append(order, card.Front)
		require.NoError(t, session.Rate(ctx, 2))
	}

	assert.Equal(t, []string{"unstudied", "low", "high"}, order)
}

func TestManagerLifecycle(t *testing.T) {
	s, deckID := newDeck(t, "a")

	m := NewManager(s)
	session, err := m.Begin(deckID, OrderDeck)
	require.NoError(t, err)

	got, err := m.Get(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)

	m.Discard(session.ID())
	_, err = m.Get(session.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Begin on an empty deck never registers a session.
	emptyStore, emptyDeck := newDeck(t)
	m2 := NewManager(emptyStore)
	_, err = m2.Begin(emptyDeck, OrderDeck)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}
