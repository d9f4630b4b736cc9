package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// SnapshotVersion is the current version of the persisted snapshot envelope.
type snapshotEnvelope struct {
	Version       int            `json:"version"`
	CurrentDeckID *uuid.UUID     `json:"current_deck_id,omitempty"`
	Decks         []*domain.Deck `json:"decks"`
}

const snapshotVersion = 1

// Snapshotter persists the store's entire state as a single durable record
// under a fixed namespace. Load returns (nil, nil) when no prior state
// exists.
type Snapshotter interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Store is the single source of truth for all decks and cards. Every
// mutation goes through its operations so identity and the study-state
// invariants are never violated, and each mutation writes through to the
// configured Snapshotter.
//
// Mutating operations that reference a missing deck or card are silent
// no-ops; accessors return ErrDeckNotFound/ErrCardNotFound instead.
type Store struct {
	mu            sync.RWMutex
	decks         []*domain.Deck
	currentDeckID uuid.UUID

	snap   Snapshotter
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store backed by the given Snapshotter and loads any prior
// state. A missing snapshot yields an empty store.
func New(ctx context.Context, snap Snapshotter, logger *slog.Logger, opts ...Option) (*Store, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshotter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		decks:  []*domain.Deck{},
		snap:   snap,
		logger: logger.With(slog.String("component", "store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := snap.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrSnapshotFailed, err)
	}
	if data != nil {
		var env snapshotEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", ErrSnapshotFailed, err)
		}
		s.decks = env.Decks
		if s.decks == nil {
			s.decks = []*domain.Deck{}
		}
		if env.CurrentDeckID != nil {
			s.currentDeckID = *env.CurrentDeckID
		}
		s.logger.Info("loaded store snapshot", "decks", len(s.decks))
	} else {
		s.logger.Info("no prior snapshot, starting empty")
	}

	return s, nil
}

// Empty reports whether the store holds no decks.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decks) == 0
}

// CreateDeck allocates a new deck with an empty card list and persists it.
func (s *Store) CreateDeck(ctx context.Context, name, description string, tags []string) (uuid.UUID, error) {
	deck, err := domain.NewDeck(name, description, tags)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	deck.CreatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks = append(s.decks, deck)
	if err := s.persistLocked(ctx); err != nil {
		return uuid.Nil, err
	}
	return deck.ID, nil
}

// DeckUpdate carries the deck fields an update may merge. Nil fields are
// left untouched.
type DeckUpdate struct {
	Name        *string
	Description *string
	Tags        *[]string
}

// UpdateDeck merges the given fields into the deck with matching ID.
// A missing deck is a no-op.
func (s *Store) UpdateDeck(ctx context.Context, id uuid.UUID, update DeckUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck := s.deckLocked(id)
	if deck == nil {
		return nil
	}

	if update.Name != nil && *update.Name != "" {
		deck.Name = *update.Name
	}
	if update.Description != nil {
		deck.Description = *update.Description
	}
	if update.Tags != nil {
		deck.Tags = append([]string{}, (*update.Tags)...)
	}

	return s.persistLocked(ctx)
}

// DeleteDeck removes the deck and all its cards. Clears the current-deck
// reference when it pointed at the removed deck. A missing deck is a no-op.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, deck := range s.decks {
		if deck.ID == id {
			s.decks = append(s.decks[:i], s.decks[i+1:]...)
			if s.currentDeckID == id {
				s.currentDeckID = uuid.Nil
			}
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// SetCurrentDeck records which deck the client is working in. Pass uuid.Nil
// to clear.
func (s *Store) SetCurrentDeck(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDeckID = id
	return s.persistLocked(ctx)
}

// CurrentDeckID returns the current deck reference, uuid.Nil when unset.
func (s *Store) CurrentDeckID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDeckID
}

// AddCard appends a new card to the deck with confidence unset. A missing
// deck is a silent no-op returning uuid.Nil.
func (s *Store) AddCard(
	ctx context.Context,
	deckID uuid.UUID,
	front, back string,
	tags []string,
	difficulty domain.Difficulty,
) (uuid.UUID, error) {
	card, err := domain.NewCard(front, back, tags, difficulty)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	card.CreatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	deck := s.deckLocked(deckID)
	if deck == nil {
		return uuid.Nil, nil
	}

	deck.Cards = append(deck.Cards, *card)
	if err := s.persistLocked(ctx); err != nil {
		return uuid.Nil, err
	}
	return card.ID, nil
}

// CardUpdate carries the card fields an update may merge. Nil fields are
// left untouched. Study state (confidence, lastStudied) is deliberately
// absent: only RateCard mutates it.
type CardUpdate struct {
	Front      *string
	Back       *string
	Tags       *[]string
	Difficulty *domain.Difficulty
}

// UpdateCard merges the given fields into one card. Missing deck or card is
// a no-op.
func (s *Store) UpdateCard(ctx context.Context, deckID, cardID uuid.UUID, update CardUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.cardLocked(deckID, cardID)
	if card == nil {
		return nil
	}

	if update.Front != nil && *update.Front != "" {
		card.Front = *update.Front
	}
	if update.Back != nil && *update.Back != "" {
		card.Back = *update.Back
	}
	if update.Tags != nil {
		card.Tags = append([]string{}, (*update.Tags)...)
	}
	if update.Difficulty != nil && domain.IsValidDifficulty(*update.Difficulty) {
		card.Difficulty = *update.Difficulty
	}

	return s.persistLocked(ctx)
}

// DeleteCard removes one card from one deck. Missing deck or card is a no-op.
func (s *Store) DeleteCard(ctx context.Context, deckID, cardID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck := s.deckLocked(deckID)
	if deck == nil {
		return nil
	}

	for i := range deck.Cards {
		if deck.Cards[i].ID == cardID {
			deck.Cards = append(deck.Cards[:i], deck.Cards[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// RateCard sets confidence and lastStudied on exactly the named card. This
// is the only path that advances a card's study state. The confidence value
// is stored as given; range validation belongs to the caller. Missing deck
// or card is a no-op.
func (s *Store) RateCard(ctx context.Context, deckID, cardID uuid.UUID, confidence int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.cardLocked(deckID, cardID)
	if card == nil {
		return nil
	}

	card.Rate(confidence, s.now())
	return s.persistLocked(ctx)
}

// RecordStudySession marks the deck as studied now. The card IDs are
// accepted for symmetry with the session engine but only deck-level recency
// is recorded. A missing deck is a no-op.
func (s *Store) RecordStudySession(ctx context.Context, deckID uuid.UUID, cardIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck := s.deckLocked(deckID)
	if deck == nil {
		return nil
	}

	t := s.now()
	deck.LastStudied = &t
	return s.persistLocked(ctx)
}

// GetDeck returns a deep copy of the deck, or ErrDeckNotFound.
func (s *Store) GetDeck(id uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck := s.deckLocked(id)
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	return deck.Clone(), nil
}

// GetCard returns a deep copy of one card, or ErrDeckNotFound/ErrCardNotFound.
func (s *Store) GetCard(deckID, cardID uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck := s.deckLocked(deckID)
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	for i := range deck.Cards {
		if deck.Cards[i].ID == cardID {
			clone := deck.Clone()
			return clone.Card(cardID), nil
		}
	}
	return nil, ErrCardNotFound
}

// Decks returns deep copies of all decks in insertion order.
func (s *Store) Decks() []*domain.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Deck, len(s.decks))
	for i, deck := range s.decks {
		out[i] = deck.Clone()
	}
	return out
}

func (s *Store) deckLocked(id uuid.UUID) *domain.Deck {
	for _, deck := range s.decks {
		if deck.ID == id {
			return deck
		}
	}
	return nil
}

func (s *Store) cardLocked(deckID, cardID uuid.UUID) *domain.Card {
	deck := s.deckLocked(deckID)
	if deck == nil {
		return nil
	}
	return deck.Card(cardID)
}

// persistLocked writes the snapshot. Callers must hold the write lock.
func (s *Store) persistLocked(ctx context.Context) error {
	env := snapshotEnvelope{
		Version: snapshotVersion,
		Decks:   s.decks,
	}
	if s.currentDeckID != uuid.Nil {
		id := s.currentDeckID
		env.CurrentDeckID = &id
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSnapshotFailed, err)
	}
	if err := s.snap.Save(ctx, data); err != nil {
		return fmt.Errorf("%w: save: %v", ErrSnapshotFailed, err)
	}
	return nil
}
