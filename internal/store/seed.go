package store

import (
	"context"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// Bootstrap seeds an empty store with one example deck so a first-run
// client has something to study. It is a no-op when any deck exists.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.decks) > 0 {
		return nil
	}

	deck, err := domain.NewDeck(
		"Web Development",
		"Key concepts in modern web development",
		[]string{"programming", "web"},
	)
	if err != nil {
		return err
	}
	deck.CreatedAt = s.now()

	seed := []struct {
		front, back string
		tags        []string
		difficulty  domain.Difficulty
	}{
		{
			front:      "What is React?",
			back:       "A JavaScript library for building user interfaces",
			tags:       []string{"programming", "frontend"},
			difficulty: domain.DifficultyMedium,
		},
		{
			front:      "What is TypeScript?",
			back:       "A strongly typed programming language that builds on JavaScript",
			tags:       []string{"programming", "typescript"},
			difficulty: domain.DifficultyMedium,
		},
		{
			front:      "What is a closure in JavaScript?",
			back:       "A function that has access to its own scope, the outer function's variables, and the global variables",
			tags:       []string{"programming", "javascript"},
			difficulty: domain.DifficultyHard,
		},
	}

	for _, c := range seed {
		card, err := domain.NewCard(c.front, c.back, c.tags, c.difficulty)
		if err != nil {
			return err
		}
		card.CreatedAt = s.now()
		deck.Cards = append(deck.Cards, *card)
	}

	s.decks = append(s.decks, deck)
	s.logger.Info("bootstrapped example deck", "deck_id", deck.ID, "cards", len(deck.Cards))
	return s.persistLocked(ctx)
}
