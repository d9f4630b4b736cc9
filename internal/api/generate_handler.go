package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mahiatlinux/FlashCardMasher/internal/api/shared"
	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
	"github.com/mahiatlinux/FlashCardMasher/internal/store"
	"github.com/mahiatlinux/FlashCardMasher/internal/task"
)

// GenerateHandler accepts generation requests and exposes job state
// for polling.
type GenerateHandler struct {
	store        *store.Store
	runner       *task.Runner
	tracker      *task.JobTracker
	extractor    task.Extractor
	generator    generation.Generator
	maxFileBytes int64
	logger       *slog.Logger
}

// NewGenerateHandler creates a new GenerateHandler
func NewGenerateHandler(
	st *store.Store,
	runner *task.Runner,
	tracker *task.JobTracker,
	extractor task.Extractor,
	generator generation.Generator,
	maxFileBytes int64,
	logger *slog.Logger,
) *GenerateHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GenerateHandler")
	}
	return &GenerateHandler{
		store:        st,
		runner:       runner,
		tracker:      tracker,
		extractor:    extractor,
		generator:    generator,
		maxFileBytes: maxFileBytes,
		logger:       logger.With(slog.String("component", "generate_handler")),
	}
}

// GenerateRequest is the JSON payload for text and URL sources
type GenerateRequest struct {
	Text    string             `json:"text"`
	URL     string             `json:"url"`
	Options generation.Options `json:"options"`
}

// Generate handles POST /decks/{deckID}/generate requests. JSON bodies
// carry a text or url source; multipart bodies carry an uploaded file.
// On acceptance the generation job runs in the background and the
// response carries the job to poll.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	deckID, ok := urlUUID(w, r, "deckID")
	if !ok {
		return
	}
	if _, err := h.store.GetDeck(deckID); err != nil {
		RespondMappedError(w, r, err)
		return
	}

	var (
		source task.Source
		opts   generation.Options
	)
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		var err error
		source, opts, err = h.parseMultipart(r)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid multipart request", err)
			return
		}
	} else {
		var req GenerateRequest
		if err := shared.DecodeJSON(r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body", err)
			return
		}
		source = task.Source{Text: req.Text, URL: req.URL}
		opts = req.Options
	}
	if opts == (generation.Options{}) {
		opts = generation.DefaultOptions()
	}

	job := h.tracker.Create(deckID)
	genTask, err := task.NewDeckGenerationTask(
		job, source, opts,
		h.extractor, h.generator, h.store, h.tracker,
		h.logger,
	)
	if err != nil {
		RespondMappedError(w, r, err)
		return
	}

	if err := h.runner.Submit(genTask); err != nil {
		RespondMappedError(w, r, err)
		return
	}

	h.logger.Info("generation job accepted",
		"job_id", job.ID,
		"deck_id", deckID,
		"card_count", opts.CardCount)
	shared.RespondWithJSON(w, r, http.StatusAccepted, job)
}

// GetJob handles GET /generate/jobs/{jobID} requests
func (h *GenerateHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "jobID")
	if !ok {
		return
	}

	job, err := h.tracker.Get(id)
	if err != nil {
		RespondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}

// parseMultipart reads the uploaded file and generation option fields
// from a multipart form.
func (h *GenerateHandler) parseMultipart(r *http.Request) (task.Source, generation.Options, error) {
	if err := r.ParseMultipartForm(h.maxFileBytes); err != nil {
		return task.Source{}, generation.Options{}, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return task.Source{}, generation.Options{}, err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		return task.Source{}, generation.Options{}, err
	}

	opts := generation.DefaultOptions()
	if v := r.FormValue("card_count"); v != "" {
		if count, err := strconv.Atoi(v); err == nil {
			opts.CardCount = count
		}
	}
	if v := r.FormValue("difficulty"); v != "" {
		opts.Difficulty = domain.Difficulty(v)
	}
	if v := r.FormValue("term_definition"); v != "" {
		opts.TermDefinition = v == "true"
	}
	if v := r.FormValue("question_answer"); v != "" {
		opts.QuestionAnswer = v == "true"
	}

	return task.Source{FileName: header.Filename, FileData: data}, opts, nil
}
