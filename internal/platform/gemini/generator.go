// Package gemini implements the generation.Generator interface using
// Google's Gemini API.
package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/mahiatlinux/FlashCardMasher/internal/config"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
)

//go:embed prompt.tmpl
var defaultPromptTemplate string

// maxSourceChars bounds how much source text is sent to the model.
const maxSourceChars = 15000

var difficultyGuidance = map[string]string{
	"easy":   "Focus on basic concepts and fundamental ideas. Use simple language.",
	"medium": "Include a mix of basic and intermediate concepts. Use clear language.",
	"hard":   "Focus on advanced concepts and nuanced details. Use technical language when appropriate.",
	"expert": "Concentrate on complex concepts, edge cases, and deep insights. Use technical and precise language.",
}

// Generator calls the Gemini API to turn source text into card drafts.
type Generator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// NewGenerator builds a Generator from LLM configuration. The prompt
// template is embedded; config.PromptTemplatePath overrides it when set.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidOptions)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidOptions)
	}

	templateContent := defaultPromptTemplate
	if cfg.PromptTemplatePath != "" {
		raw, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				generation.ErrInvalidOptions, cfg.PromptTemplatePath, err)
		}
		templateContent = string(raw)
	}

	promptTemplate, err := template.New("flashcard").Parse(templateContent)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidOptions, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{
		logger:         logger,
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateCards implements generation.Generator.
func (g *Generator) GenerateCards(
	ctx context.Context,
	sourceText string,
	opts generation.Options,
) ([]generation.CardDraft, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	prompt, err := g.buildPrompt(sourceText, opts)
	if err != nil {
		return nil, err
	}

	raw, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	drafts, err := parseDrafts(raw, opts)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "Generated card drafts",
		"requested", opts.CardCount,
		"returned", len(drafts))
	return drafts, nil
}

type promptData struct {
	CardCount          int
	Difficulty         string
	DifficultyGuidance string
	FormatInstructions string
	SourceText         string
}

func (g *Generator) buildPrompt(sourceText string, opts generation.Options) (string, error) {
	sourceText = strings.TrimSpace(sourceText)
	if sourceText == "" {
		return "", generation.ErrEmptySource
	}
	if len(sourceText) > maxSourceChars {
		sourceText = truncateAtRune(sourceText, maxSourceChars) + "... (text truncated for processing)"
	}

	data := promptData{
		CardCount:          opts.CardCount,
		Difficulty:         string(opts.Difficulty),
		DifficultyGuidance: difficultyGuidance[string(opts.Difficulty)],
		FormatInstructions: formatInstructions(opts),
		SourceText:         sourceText,
	}

	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// truncateAtRune cuts s to at most max bytes without splitting a
// multi-byte UTF-8 sequence at the boundary.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func formatInstructions(opts generation.Options) string {
	switch {
	case opts.TermDefinition && opts.QuestionAnswer:
		return "Create a mix of term-definition pairs and question-answer format flashcards."
	case opts.QuestionAnswer:
		return "Create flashcards using question-answer format."
	default:
		return "Create flashcards using term-definition pairs."
	}
}

// callWithRetry calls the Gemini API with exponential backoff and
// jitter for transient failures. Permanent errors (safety blocks,
// malformed responses) return immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		g.logger.DebugContext(ctx, "Calling Gemini API",
			"model", g.model,
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		raw, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			return raw, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"transient", transient,
			"error", err)

		if !transient {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call. The second return reports
// whether a failure is worth retrying.
func (g *Generator) callOnce(ctx context.Context, prompt string) (string, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", true, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", false, generation.ErrContentBlocked
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", false, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}
	return text, false, nil
}

// parseDrafts decodes the model's JSON array of cards. Models often
// wrap the array in prose or a code fence, so when direct parsing
// fails the outermost bracketed span is tried before giving up.
func parseDrafts(raw string, opts generation.Options) ([]generation.CardDraft, error) {
	raw = strings.TrimSpace(raw)

	var drafts []generation.CardDraft
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
				generation.ErrInvalidResponse, err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &drafts); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
				generation.ErrInvalidResponse, err)
		}
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no cards in response", generation.ErrInvalidResponse)
	}

	out := make([]generation.CardDraft, 0, len(drafts))
	for i, draft := range drafts {
		draft = draft.Sanitize(opts.Difficulty)
		if draft.Front == "" {
			return nil, fmt.Errorf("%w: card %d missing front side", generation.ErrInvalidResponse, i)
		}
		if draft.Back == "" {
			return nil, fmt.Errorf("%w: card %d missing back side", generation.ErrInvalidResponse, i)
		}
		out = append(out, draft)
	}
	return out, nil
}
