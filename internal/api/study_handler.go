package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mahiatlinux/FlashCardMasher/internal/api/shared"
	"github.com/mahiatlinux/FlashCardMasher/internal/study"
)

// StudyHandler handles study session HTTP requests
type StudyHandler struct {
	manager *study.Manager
	logger  *slog.Logger
}

// NewStudyHandler creates a new StudyHandler
func NewStudyHandler(manager *study.Manager, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		manager: manager,
		logger:  logger.With(slog.String("component", "study_handler")),
	}
}

// BeginSessionRequest starts a session over a deck
type BeginSessionRequest struct {
	DeckID string `json:"deck_id" validate:"required,uuid"`
	Order  string `json:"order"   validate:"omitempty,oneof=deck low_confidence_first"`
}

// RateCardRequest rates the session's current card
type RateCardRequest struct {
	Confidence int `json:"confidence"`
}

// BeginSession handles POST /study/sessions requests
func (h *StudyHandler) BeginSession(w http.ResponseWriter, r *http.Request) {
	var req BeginSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		respondError(w, r, http.StatusBadRequest, "deck_id is required", err)
		return
	}

	deckID, err := uuid.Parse(req.DeckID)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid deck_id", err)
		return
	}

	order := study.OrderDeck
	if req.Order == "low_confidence_first" {
		order = study.OrderLowConfidenceFirst
	}

	session, err := h.manager.Begin(deckID, order)
	if err != nil {
		RespondMappedError(w, r, err)
		return
	}

	h.logger.Info("study session started",
		"session_id", session.ID(),
		"deck_id", deckID,
		"order", req.Order)
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionResponse(session))
}

// GetSession handles GET /study/sessions/{sessionID} requests
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// RateCard handles POST /study/sessions/{sessionID}/rate requests
func (h *StudyHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req RateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := session.Rate(r.Context(), req.Confidence); err != nil {
		RespondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// SkipCard handles POST /study/sessions/{sessionID}/skip requests
func (h *StudyHandler) SkipCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Skip(r.Context()); err != nil {
		RespondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// RestartSession handles POST /study/sessions/{sessionID}/restart requests
func (h *StudyHandler) RestartSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Restart(); err != nil {
		RespondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// DiscardSession handles DELETE /study/sessions/{sessionID} requests
func (h *StudyHandler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "sessionID")
	if !ok {
		return
	}

	h.manager.Discard(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StudyHandler) session(w http.ResponseWriter, r *http.Request) (*study.Session, bool) {
	id, ok := urlUUID(w, r, "sessionID")
	if !ok {
		return nil, false
	}

	session, err := h.manager.Get(id)
	if err != nil {
		RespondMappedError(w, r, err)
		return nil, false
	}
	return session, true
}
