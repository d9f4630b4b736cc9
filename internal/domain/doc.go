// Package domain defines the core business entities for decks and
// flashcards along with their validation rules.
package domain
