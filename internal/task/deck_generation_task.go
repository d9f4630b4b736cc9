package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
)

// Common errors
var (
	ErrNilExtractor  = errors.New("extractor cannot be nil")
	ErrNilGenerator  = errors.New("generator cannot be nil")
	ErrNilCardWriter = errors.New("card writer cannot be nil")
	ErrNilTracker    = errors.New("job tracker cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrEmptyDeckID   = errors.New("deck ID cannot be empty")
	ErrBadSource     = errors.New("exactly one source must be provided")
)

// Extractor turns one of the accepted source kinds into plain text.
type Extractor interface {
	FromText(text string) (string, error)
	FromFile(filename string, data []byte) (string, error)
	FromURL(ctx context.Context, rawURL string) (string, error)
}

// CardWriter is the slice of the store the task needs: adding the
// generated cards to the target deck. AddCard is a silent no-op when
// the deck was deleted while the job was in flight.
type CardWriter interface {
	AddCard(
		ctx context.Context,
		deckID uuid.UUID,
		front, back string,
		tags []string,
		difficulty domain.Difficulty,
	) (uuid.UUID, error)
}

// Source is the material a generation job starts from. Exactly one
// field group must be set.
type Source struct {
	Text     string
	FileName string
	FileData []byte
	URL      string
}

// Validate enforces the one-source rule.
func (s Source) Validate() error {
	provided := 0
	if s.Text != "" {
		provided++
	}
	if s.FileName != "" || len(s.FileData) > 0 {
		provided++
	}
	if s.URL != "" {
		provided++
	}
	if provided != 1 {
		return fmt.Errorf("%w: got %d", ErrBadSource, provided)
	}
	return nil
}

// DeckGenerationTask implements the Task interface for generating
// flashcards into an existing deck.
type DeckGenerationTask struct {
	id        uuid.UUID
	jobID     uuid.UUID
	deckID    uuid.UUID
	source    Source
	opts      generation.Options
	extractor Extractor
	generator generation.Generator
	store     CardWriter
	tracker   *JobTracker
	logger    *slog.Logger
	status    TaskStatus
}

// NewDeckGenerationTask creates a new deck generation task bound to a
// tracked job.
func NewDeckGenerationTask(
	job Job,
	source Source,
	opts generation.Options,
	extractor Extractor,
	generator generation.Generator,
	store CardWriter,
	tracker *JobTracker,
	logger *slog.Logger,
) (*DeckGenerationTask, error) {
	if extractor == nil {
		return nil, ErrNilExtractor
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if store == nil {
		return nil, ErrNilCardWriter
	}
	if tracker == nil {
		return nil, ErrNilTracker
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if job.DeckID == uuid.Nil {
		return nil, ErrEmptyDeckID
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &DeckGenerationTask{
		id:        uuid.New(),
		jobID:     job.ID,
		deckID:    job.DeckID,
		source:    source,
		opts:      opts,
		extractor: extractor,
		generator: generator,
		store:     store,
		tracker:   tracker,
		logger:    logger.With("task_type", TaskTypeDeckGeneration, "deck_id", job.DeckID, "job_id", job.ID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *DeckGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DeckGenerationTask) Type() string {
	return TaskTypeDeckGeneration
}

// Status returns the current task status
func (t *DeckGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the full generation pipeline: extract source text,
// generate drafts, then add each card to the deck. Failures mark the
// job's error state; cards committed before a mid-batch failure are
// kept, not rolled back.
func (t *DeckGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting deck generation task")

	if err := ctx.Err(); err != nil {
		return t.fail(fmt.Errorf("task cancelled: %w", err))
	}

	t.tracker.advance(t.jobID, 25, "Extracting content")
	text, err := t.extractText(ctx)
	if err != nil {
		return t.fail(fmt.Errorf("failed to extract content: %w", err))
	}
	t.logger.Info("extracted source text", "text_chars", len(text))

	t.tracker.advance(t.jobID, 50, "Generating flashcards")
	drafts, err := t.generator.GenerateCards(ctx, text, t.opts)
	if err != nil {
		return t.fail(fmt.Errorf("failed to generate cards: %w", err))
	}
	t.logger.Info("cards generated", "count", len(drafts))

	t.tracker.advance(t.jobID, 75, "Saving cards")
	added := 0
	for _, draft := range drafts {
		id, err := t.store.AddCard(ctx, t.deckID, draft.Front, draft.Back, draft.Tags, draft.Difficulty)
		if err != nil {
			return t.fail(fmt.Errorf("failed to save card after %d added: %w", added, err))
		}
		if id == uuid.Nil {
			// Deck disappeared while the job ran. Nothing left to write.
			t.logger.Warn("deck no longer exists, discarding remaining cards", "cards_added", added)
			break
		}
		added++
	}

	t.tracker.succeed(t.jobID, added)
	t.status = TaskStatusCompleted
	t.logger.Info("deck generation task completed", "cards_added", added)
	return nil
}

func (t *DeckGenerationTask) extractText(ctx context.Context) (string, error) {
	switch {
	case t.source.Text != "":
		return t.extractor.FromText(t.source.Text)
	case t.source.URL != "":
		return t.extractor.FromURL(ctx, t.source.URL)
	default:
		return t.extractor.FromFile(t.source.FileName, t.source.FileData)
	}
}

func (t *DeckGenerationTask) fail(err error) error {
	t.status = TaskStatusFailed
	t.tracker.fail(t.jobID, err.Error())
	t.logger.Error("deck generation task failed", "error", err)
	return err
}
