package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mahiatlinux/FlashCardMasher/internal/api/shared"
	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/store"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(st *store.Store, logger *slog.Logger) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	return &CardHandler{
		store:  st,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// AddCardRequest is the payload for adding a card to a deck
type AddCardRequest struct {
	Front      string   `json:"front"      validate:"required"`
	Back       string   `json:"back"       validate:"required"`
	Tags       []string `json:"tags"`
	Difficulty string   `json:"difficulty"`
}

// UpdateCardRequest carries optional card content updates. Study state
// (confidence, last studied) is never editable through this endpoint.
type UpdateCardRequest struct {
	Front      *string   `json:"front"`
	Back       *string   `json:"back"`
	Tags       *[]string `json:"tags"`
	Difficulty *string   `json:"difficulty"`
}

// AddCard handles POST /decks/{deckID}/cards requests
func (h *CardHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := urlUUID(w, r, "deckID")
	if !ok {
		return
	}

	var req AddCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		respondError(w, r, http.StatusBadRequest, "card front and back are required", err)
		return
	}

	difficulty := domain.Difficulty(req.Difficulty)
	if req.Difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	cardID, err := h.store.AddCard(r.Context(), deckID, req.Front, req.Back, req.Tags, difficulty)
	if err != nil {
		RespondMappedError(w, r, err)
		return
	}
	if cardID == uuid.Nil {
		// Missing deck is a silent store no-op; surface it over HTTP.
		RespondMappedError(w, r, store.ErrDeckNotFound)
		return
	}

	card, err := h.store.GetCard(deckID, cardID)
	if err != nil {
		RespondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// UpdateCard handles PATCH /decks/{deckID}/cards/{cardID} requests
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := urlUUID(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := urlUUID(w, r, "cardID")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	update := store.CardUpdate{
		Front: req.Front,
		Back:  req.Back,
		Tags:  req.Tags,
	}
	if req.Difficulty != nil {
		d := domain.Difficulty(*req.Difficulty)
		if !domain.IsValidDifficulty(d) {
			respondError(w, r, http.StatusBadRequest, "unknown difficulty", nil)
			return
		}
		update.Difficulty = &d
	}

	if err := h.store.UpdateCard(r.Context(), deckID, cardID, update); err != nil {
		RespondMappedError(w, r, err)
		return
	}

	card, err := h.store.GetCard(deckID, cardID)
	if err != nil {
		RespondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /decks/{deckID}/cards/{cardID} requests
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := urlUUID(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := urlUUID(w, r, "cardID")
	if !ok {
		return
	}

	if err := h.store.DeleteCard(r.Context(), deckID, cardID); err != nil {
		RespondMappedError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
