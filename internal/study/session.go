package study

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// State is the lifecycle phase of a study session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Order selects how the card sequence is arranged at begin/restart time.
// The sequence is fixed for the session's lifetime either way.
type Order string

const (
	// OrderDeck presents cards in deck insertion order.
	OrderDeck Order = "deck"

	// OrderLowConfidenceFirst presents unstudied cards first, then studied
	// cards by ascending confidence; ties keep deck order. This is a
	// per-session priority, not interval scheduling.
	OrderLowConfidenceFirst Order = "low_confidence_first"
)

// Tally is the running outcome count for a session. A rating of 2 or
// higher counts as correct, below 2 as incorrect. Skipped cards are
// advanced past without rating.
type Tally struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Skipped   int `json:"skipped"`
}

// Summary is the final result of a completed session.
type Summary struct {
	DeckID   uuid.UUID     `json:"deck_id"`
	Total    int           `json:"total"`
	Tally    Tally         `json:"tally"`
	Accuracy float64       `json:"accuracy"`
	Duration time.Duration `json:"duration"`
	Started  time.Time     `json:"started"`
	Ended    time.Time     `json:"ended"`
}

// CardStore is the slice of the deck/card store the session engine writes
// through to.
type CardStore interface {
	GetDeck(id uuid.UUID) (*domain.Deck, error)
	RateCard(ctx context.Context, deckID, cardID uuid.UUID, confidence int) error
	RecordStudySession(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) error
}

// Session drives a single user through one deck's cards, exactly once per
// session. It holds a transient working copy of the card sequence and
// writes each rating through to the store; nothing else about the session
// is persisted.
//
// All operations are serialized by an internal mutex so a second Rate call
// arriving before the first finished cannot corrupt the index or tally.
type Session struct {
	mu sync.Mutex

	id     uuid.UUID
	deckID uuid.UUID
	order  Order
	store  CardStore
	now    func() time.Time

	state     State
	cards     []domain.Card
	index     int
	tally     Tally
	startTime time.Time
	endTime   time.Time
}

// NewSession creates a session bound to one deck, in the NotStarted state.
func NewSession(store CardStore, deckID uuid.UUID, order Order) *Session {
	if order == "" {
		order = OrderDeck
	}
	return &Session{
		id:     uuid.New(),
		deckID: deckID,
		order:  order,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		state:  StateNotStarted,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// DeckID returns the deck this session is bound to.
func (s *Session) DeckID() uuid.UUID { return s.deckID }

// Begin captures the deck's current cards as the fixed session sequence and
// enters InProgress. It rejects empty or missing decks.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInProgress {
		return ErrAlreadyInProgress
	}
	return s.beginLocked()
}

// Restart re-enters InProgress from any state with a fresh card sequence
// taken from the deck's current card list, tally zeroed and a new start
// time. Ratings already written through by the previous run remain.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked()
}

func (s *Session) beginLocked() error {
	deck, err := s.store.GetDeck(s.deckID)
	if err != nil {
		return err
	}
	if len(deck.Cards) == 0 {
		return ErrEmptyDeck
	}

	cards := make([]domain.Card, len(deck.Cards))
	copy(cards, deck.Cards)
	if s.order == OrderLowConfidenceFirst {
		sort.SliceStable(cards, func(i, j int) bool {
			return confidenceRank(&cards[i]) < confidenceRank(&cards[j])
		})
	}

	s.state = StateInProgress
	s.cards = cards
	s.index = 0
	s.tally = Tally{}
	s.startTime = s.now()
	s.endTime = time.Time{}
	return nil
}

// confidenceRank orders unstudied cards before studied ones, then by
// ascending confidence.
func confidenceRank(c *domain.Card) int {
	if c.Confidence == nil {
		return -1
	}
	return *c.Confidence
}

// State returns the session's current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the card under review. Only valid while InProgress.
func (s *Session) Current() (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return nil, ErrNotInProgress
	}
	card := s.cards[s.index]
	return &card, nil
}

// Progress reports the 0-based index of the current card and the total
// sequence length.
func (s *Session) Progress() (index, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, len(s.cards)
}

// Tally returns the running outcome counts.
func (s *Session) Tally() Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally
}

// Rate records a confidence rating for the current card: it writes the
// rating through to the store, updates the tally, and advances to the next
// card or to Complete. Returns ErrNotInProgress outside InProgress and
// ErrInvalidConfidence for ratings outside 0..3.
func (s *Session) Rate(ctx context.Context, confidence int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if confidence < domain.MinConfidence || confidence > domain.MaxConfidence {
		return ErrInvalidConfidence
	}

	card := s.cards[s.index]
	if err := s.store.RateCard(ctx, s.deckID, card.ID, confidence); err != nil {
		return fmt.Errorf("failed to record rating: %w", err)
	}

	if confidence >= 2 {
		s.tally.Correct++
	} else {
		s.tally.Incorrect++
	}

	return s.advanceLocked(ctx)
}

// Skip advances past the current card without rating it. The card's
// confidence and lastStudied are left untouched.
func (s *Session) Skip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrNotInProgress
	}

	s.tally.Skipped++
	return s.advanceLocked(ctx)
}

func (s *Session) advanceLocked(ctx context.Context) error {
	if s.index == len(s.cards)-1 {
		s.state = StateComplete
		s.endTime = s.now()

		ids := make([]uuid.UUID, len(s.cards))
		for i, c := range s.cards {
			ids[i] = c.ID
		}
		// Exactly once, on entry to Complete.
		if err := s.store.RecordStudySession(ctx, s.deckID, ids); err != nil {
			return fmt.Errorf("failed to record study session: %w", err)
		}
		return nil
	}

	s.index++
	return nil
}

// Summary returns the final tally, accuracy, and duration. Only valid once
// the session is Complete. Accuracy is correct over rated cards (skips
// excluded), zero when nothing was rated.
func (s *Session) Summary() (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete {
		return nil, ErrNotComplete
	}

	rated := s.tally.Correct + s.tally.Incorrect
	accuracy := 0.0
	if rated > 0 {
		accuracy = float64(s.tally.Correct) / float64(rated) * 100
	}

	return &Summary{
		DeckID:   s.deckID,
		Total:    len(s.cards),
		Tally:    s.tally,
		Accuracy: accuracy,
		Duration: s.endTime.Sub(s.startTime),
		Started:  s.startTime,
		Ended:    s.endTime,
	}, nil
}
