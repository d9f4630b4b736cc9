package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// Card count bounds accepted by Options.
const (
	MinCardCount = 5
	MaxCardCount = 50
)

// Options controls how many cards to produce and in what shape.
type Options struct {
	// CardCount is the requested number of cards, between MinCardCount
	// and MaxCardCount inclusive.
	CardCount int `json:"cardCount"`

	// Difficulty applies to every generated card.
	Difficulty domain.Difficulty `json:"difficulty"`

	// TermDefinition asks for term/definition style cards.
	TermDefinition bool `json:"termDefinition"`

	// QuestionAnswer asks for question/answer style cards.
	QuestionAnswer bool `json:"questionAnswer"`
}

// DefaultOptions matches the generator form's initial state.
func DefaultOptions() Options {
	return Options{
		CardCount:      10,
		Difficulty:     domain.DifficultyMedium,
		TermDefinition: true,
		QuestionAnswer: true,
	}
}

// Validate reports whether the options are usable, wrapping
// ErrInvalidOptions with the specific violation.
func (o Options) Validate() error {
	if o.CardCount < MinCardCount || o.CardCount > MaxCardCount {
		return fmt.Errorf("%w: cardCount %d outside [%d, %d]",
			ErrInvalidOptions, o.CardCount, MinCardCount, MaxCardCount)
	}
	if !domain.IsValidDifficulty(o.Difficulty) {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidOptions, o.Difficulty)
	}
	if !o.TermDefinition && !o.QuestionAnswer {
		return fmt.Errorf("%w: at least one card style must be enabled", ErrInvalidOptions)
	}
	return nil
}

// CardDraft is a generated card before it is committed to a deck.
type CardDraft struct {
	Front      string            `json:"front"`
	Back       string            `json:"back"`
	Tags       []string          `json:"tags"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

// Generator produces card drafts from source text. Implementations
// talk to an external model service and should honor ctx cancellation.
type Generator interface {
	// GenerateCards returns an ordered sequence of drafts derived from
	// sourceText, or an error from errors.go describing why generation
	// failed. Implementations must not return partial results alongside
	// an error.
	GenerateCards(ctx context.Context, sourceText string, opts Options) ([]CardDraft, error)
}

// Sanitize fills draft defaults the model tends to omit: blank or
// unknown difficulty falls back to the requested one, nil tags become
// empty, surrounding whitespace is trimmed.
func (d CardDraft) Sanitize(fallback domain.Difficulty) CardDraft {
	d.Front = strings.TrimSpace(d.Front)
	d.Back = strings.TrimSpace(d.Back)
	if !domain.IsValidDifficulty(d.Difficulty) {
		d.Difficulty = fallback
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d
}
