package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the descriptive difficulty level of a flashcard.
// It is editable and filterable but never used for scheduling.
type Difficulty string

// Supported difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Confidence bounds for a rated card. A card with a nil Confidence has
// never been studied.
const (
	MinConfidence = 0
	MaxConfidence = 3
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrCardDifficultyInvalid is returned when a card's difficulty is not
	// one of the supported levels.
	ErrCardDifficultyInvalid = errors.New("invalid card difficulty")

	// ErrCardStudyStateInvalid is returned when confidence and lastStudied
	// disagree about whether the card has been studied.
	ErrCardStudyStateInvalid = errors.New("card confidence and last studied must be set together")
)

// Card represents a single flashcard inside a deck.
//
// Confidence and LastStudied are either both nil (never studied) or both
// set; only the most recent rating is retained. They are mutated solely by
// the store's rating operation, never by ordinary card edits.
type Card struct {
	ID          uuid.UUID  `json:"id"`
	Front       string     `json:"front"`
	Back        string     `json:"back"`
	Tags        []string   `json:"tags"`
	Difficulty  Difficulty `json:"difficulty"`
	Confidence  *int       `json:"confidence,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastStudied *time.Time `json:"last_studied,omitempty"`
}

// NewCard creates a new Card with the given content. It generates a new
// UUID, sets the creation timestamp, and leaves the study state unset.
// Returns an error if validation fails.
func NewCard(front, back string, tags []string, difficulty Difficulty) (*Card, error) {
	if tags == nil {
		tags = []string{}
	}

	card := &Card{
		ID:         uuid.New(),
		Front:      front,
		Back:       back,
		Tags:       tags,
		Difficulty: difficulty,
		CreatedAt:  time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if !IsValidDifficulty(c.Difficulty) {
		return ErrCardDifficultyInvalid
	}

	if (c.Confidence == nil) != (c.LastStudied == nil) {
		return ErrCardStudyStateInvalid
	}

	return nil
}

// Studied reports whether the card has been rated at least once.
func (c *Card) Studied() bool {
	return c.Confidence != nil
}

// Correct reports whether the card's latest rating counts as a correct
// recall (confidence of 2 or higher). Unstudied cards are never correct.
func (c *Card) Correct() bool {
	return c.Confidence != nil && *c.Confidence >= 2
}

// Rate records a confidence rating on the card at the given time. The value
// is stored as given; range enforcement belongs to the caller.
func (c *Card) Rate(confidence int, at time.Time) {
	c.Confidence = &confidence
	t := at.UTC()
	c.LastStudied = &t
}

// IsValidDifficulty checks if the provided difficulty is one of the
// supported levels.
func IsValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	default:
		return false
	}
}
