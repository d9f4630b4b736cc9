// Package api provides HTTP handlers for the API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mahiatlinux/FlashCardMasher/internal/api/shared"
	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/study"
)

// DeckSummary is the list-view shape of a deck: everything but the
// card bodies, plus a card count.
type DeckSummary struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	CardCount   int        `json:"card_count"`
	CreatedAt   time.Time  `json:"created_at"`
	LastStudied *time.Time `json:"last_studied,omitempty"`
	Mastery     float64    `json:"mastery"`
}

// SessionResponse is the client view of a study session.
type SessionResponse struct {
	ID          uuid.UUID      `json:"id"`
	DeckID      uuid.UUID      `json:"deck_id"`
	State       study.State    `json:"state"`
	Index       int            `json:"index"`
	Total       int            `json:"total"`
	Tally       study.Tally    `json:"tally"`
	CurrentCard *domain.Card   `json:"current_card,omitempty"`
	Summary     *study.Summary `json:"summary,omitempty"`
}

func sessionResponse(s *study.Session) SessionResponse {
	index, total := s.Progress()
	resp := SessionResponse{
		ID:     s.ID(),
		DeckID: s.DeckID(),
		State:  s.State(),
		Index:  index,
		Total:  total,
		Tally:  s.Tally(),
	}
	if card, err := s.Current(); err == nil {
		resp.CurrentCard = card
	}
	if summary, err := s.Summary(); err == nil {
		resp.Summary = summary
	}
	return resp
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// urlUUID parses a UUID path parameter, responding 400 on failure. The
// second return is false when a response was already written.
func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid "+param, err)
		return uuid.Nil, false
	}
	return id, true
}
