package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mahiatlinux/FlashCardMasher/internal/api"
	apiMiddleware "github.com/mahiatlinux/FlashCardMasher/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: app.config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	deckHandler := api.NewDeckHandler(app.store, app.stats, app.logger)
	cardHandler := api.NewCardHandler(app.store, app.logger)
	studyHandler := api.NewStudyHandler(app.sessions, app.logger)
	statsHandler := api.NewStatsHandler(app.store, app.stats, app.logger)
	generateHandler := api.NewGenerateHandler(
		app.store,
		app.runner,
		app.tracker,
		app.extractor,
		app.generator,
		app.config.Extract.MaxFileBytes,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.ListDecks)
			r.Post("/", deckHandler.CreateDeck)

			r.Route("/{deckID}", func(r chi.Router) {
				r.Get("/", deckHandler.GetDeck)
				r.Patch("/", deckHandler.UpdateDeck)
				r.Delete("/", deckHandler.DeleteDeck)
				r.Get("/export", deckHandler.ExportDeck)
				r.Post("/generate", generateHandler.Generate)

				r.Post("/cards", cardHandler.AddCard)
				r.Post("/cards/import", deckHandler.ImportCards)
				r.Patch("/cards/{cardID}", cardHandler.UpdateCard)
				r.Delete("/cards/{cardID}", cardHandler.DeleteCard)
			})
		})

		r.Route("/study/sessions", func(r chi.Router) {
			r.Post("/", studyHandler.BeginSession)
			r.Get("/{sessionID}", studyHandler.GetSession)
			r.Post("/{sessionID}/rate", studyHandler.RateCard)
			r.Post("/{sessionID}/skip", studyHandler.SkipCard)
			r.Post("/{sessionID}/restart", studyHandler.RestartSession)
			r.Delete("/{sessionID}", studyHandler.DiscardSession)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", statsHandler.Overview)
			r.Get("/accuracy", statsHandler.AccuracyByDay)
			r.Get("/weekdays", statsHandler.StudyTimeByWeekday)
			r.Get("/decks/recent", statsHandler.RecentDecks)
		})

		r.Get("/generate/jobs/{jobID}", generateHandler.GetJob)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
