package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck's name is empty.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")
)

// Deck represents an owned, ordered collection of flashcards. Card order is
// insertion order and doubles as the default study order. A deck owns its
// cards exclusively; no card is shared across decks.
type Deck struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Cards       []Card     `json:"cards"`
	CreatedAt   time.Time  `json:"created_at"`
	LastStudied *time.Time `json:"last_studied,omitempty"`
}

// NewDeck creates a new Deck with the given name, description, and tags.
// It generates a new UUID, sets the creation timestamp, and starts with an
// empty card list. Returns an error if validation fails.
func NewDeck(name, description string, tags []string) (*Deck, error) {
	if tags == nil {
		tags = []string{}
	}

	deck := &Deck{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Tags:        tags,
		Cards:       []Card{},
		CreatedAt:   time.Now().UTC(),
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if d.Name == "" {
		return ErrDeckNameEmpty
	}

	return nil
}

// Card returns a pointer to the card with the given ID, or nil if the deck
// does not contain it.
func (d *Deck) Card(cardID uuid.UUID) *Card {
	for i := range d.Cards {
		if d.Cards[i].ID == cardID {
			return &d.Cards[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the deck. Mutating the copy, its cards, or
// their tag slices never touches the original.
func (d *Deck) Clone() *Deck {
	clone := *d
	clone.Tags = append([]string(nil), d.Tags...)
	clone.Cards = make([]Card, len(d.Cards))
	for i, card := range d.Cards {
		clone.Cards[i] = *cloneCard(&card)
	}
	if d.LastStudied != nil {
		t := *d.LastStudied
		clone.LastStudied = &t
	}
	return &clone
}

func cloneCard(c *Card) *Card {
	clone := *c
	clone.Tags = append([]string(nil), c.Tags...)
	if c.Confidence != nil {
		v := *c.Confidence
		clone.Confidence = &v
	}
	if c.LastStudied != nil {
		t := *c.LastStudied
		clone.LastStudied = &t
	}
	return &clone
}
