package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mahiatlinux/FlashCardMasher/internal/api/shared"
	"github.com/mahiatlinux/FlashCardMasher/internal/stats"
	"github.com/mahiatlinux/FlashCardMasher/internal/store"
)

// StatsHandler serves derived analytics over the store
type StatsHandler struct {
	store  *store.Store
	stats  *stats.Aggregator
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(st *store.Store, agg *stats.Aggregator, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatsHandler")
	}
	return &StatsHandler{
		store:  st,
		stats:  agg,
		logger: logger.With(slog.String("component", "stats_handler")),
	}
}

// OverviewResponse bundles the headline numbers the dashboard shows
type OverviewResponse struct {
	TotalDecks             int     `json:"total_decks"`
	TotalCards             int     `json:"total_cards"`
	StudiedCards           int     `json:"studied_cards"`
	AverageAccuracy        float64 `json:"average_accuracy"`
	Streak                 int     `json:"streak"`
	ConfidenceDistribution [4]int  `json:"confidence_distribution"`
}

// Overview handles GET /stats/overview requests
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	decks := h.store.Decks()

	totalCards := 0
	for _, deck := range decks {
		totalCards += len(deck.Cards)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OverviewResponse{
		TotalDecks:             len(decks),
		TotalCards:             totalCards,
		StudiedCards:           len(h.stats.StudiedCards(decks)),
		AverageAccuracy:        h.stats.AverageAccuracy(decks),
		Streak:                 h.stats.Streak(decks),
		ConfidenceDistribution: h.stats.ConfidenceDistribution(decks),
	})
}

// AccuracyByDay handles GET /stats/accuracy?days= requests
func (h *StatsHandler) AccuracyByDay(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 7)
	if days < 1 || days > 365 {
		respondError(w, r, http.StatusBadRequest, "days must be between 1 and 365", nil)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK,
		h.stats.AccuracyByDay(h.store.Decks(), days))
}

// StudyTimeByWeekday handles GET /stats/weekdays requests
func (h *StatsHandler) StudyTimeByWeekday(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK,
		h.stats.StudyTimeByWeekday(h.store.Decks()))
}

// RecentDecks handles GET /stats/decks/recent?limit= requests
func (h *StatsHandler) RecentDecks(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 5)
	if limit < 1 || limit > 100 {
		respondError(w, r, http.StatusBadRequest, "limit must be between 1 and 100", nil)
		return
	}

	decks := h.stats.RecentlyStudiedDecks(h.store.Decks(), limit)
	summaries := make([]DeckSummary, 0, len(decks))
	for _, deck := range decks {
		summaries = append(summaries, DeckSummary{
			ID:          deck.ID,
			Name:        deck.Name,
			Description: deck.Description,
			Tags:        deck.Tags,
			CardCount:   len(deck.Cards),
			CreatedAt:   deck.CreatedAt,
			LastStudied: deck.LastStudied,
			Mastery:     h.stats.DeckMastery(deck),
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summaries)
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}
