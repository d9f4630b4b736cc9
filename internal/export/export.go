// Package export writes decks to interchange formats and reads cards
// back in. Only the deck JSON form round-trips losslessly; the other
// formats preserve front, back, tags, and difficulty.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// ErrUnknownFormat is returned for format names no exporter handles
var ErrUnknownFormat = errors.New("unknown export format")

// Format identifies an export target.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatAnki    Format = "anki"
	FormatQuizlet Format = "quizlet"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatAnki:
		return FormatAnki, nil
	case FormatQuizlet:
		return FormatQuizlet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type for serving the exported file.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// FileExtension returns the download extension, dot included.
func (f Format) FileExtension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		// Anki and Quizlet both take plain .txt uploads.
		return ".txt"
	}
}

// WriteDeck serializes the deck to w in the given format.
func WriteDeck(w io.Writer, deck *domain.Deck, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, deck)
	case FormatCSV:
		return writeCSV(w, deck)
	case FormatAnki:
		return writeAnki(w, deck)
	case FormatQuizlet:
		return writeQuizlet(w, deck)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, deck *domain.Deck) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(deck)
}

func writeCSV(w io.Writer, deck *domain.Deck) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Front", "Back", "Tags", "Difficulty", "Created", "Last Studied"}); err != nil {
		return err
	}
	for _, card := range deck.Cards {
		lastStudied := ""
		if card.LastStudied != nil {
			lastStudied = card.LastStudied.Format(time.RFC3339)
		}
		record := []string{
			card.Front,
			card.Back,
			strings.Join(card.Tags, ";"),
			string(card.Difficulty),
			card.CreatedAt.Format(time.RFC3339),
			lastStudied,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeAnki emits the tab-separated form Anki's text importer accepts:
// front, back, then semicolon-joined tags.
func writeAnki(w io.Writer, deck *domain.Deck) error {
	for _, card := range deck.Cards {
		line := fmt.Sprintf("%s\t%s\t%s\n", card.Front, card.Back, strings.Join(card.Tags, ";"))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeQuizlet emits Quizlet's "term --- definition" line format.
func writeQuizlet(w io.Writer, deck *domain.Deck) error {
	for _, card := range deck.Cards {
		if _, err := fmt.Fprintf(w, "%s --- %s\n", card.Front, card.Back); err != nil {
			return err
		}
	}
	return nil
}
