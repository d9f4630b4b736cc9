package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// ErrUnrecognizedImport is returned when no known card shape matches
var ErrUnrecognizedImport = errors.New("unrecognized import format")

// ImportedCard is one card parsed from an uploaded file, ready to be
// added to a deck.
type ImportedCard struct {
	Front      string
	Back       string
	Tags       []string
	Difficulty domain.Difficulty
}

type cardShape struct {
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Tags       []string `json:"tags"`
	Difficulty string   `json:"difficulty"`
}

// deckShape matches both a full deck export and the {cards:[...]}
// wrapper, and the questions/answers pair format.
type deckShape struct {
	Cards     *[]cardShape `json:"cards"`
	Questions []string     `json:"questions"`
	Answers   []string     `json:"answers"`
}

// ParseJSONCards decodes cards from any of the accepted JSON shapes:
// an object with a cards array, a bare array of card objects, or
// parallel questions/answers arrays of equal length. Entries with an
// empty front or back are skipped, not rejected.
func ParseJSONCards(data []byte) ([]ImportedCard, error) {
	var wrapped deckShape
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if wrapped.Cards != nil {
			return fromCardShapes(*wrapped.Cards), nil
		}
		if wrapped.Questions != nil && wrapped.Answers != nil {
			if len(wrapped.Questions) != len(wrapped.Answers) {
				return nil, fmt.Errorf("%w: questions and answers differ in length",
					ErrUnrecognizedImport)
			}
			return fromQuestionAnswers(wrapped.Questions, wrapped.Answers), nil
		}
	}

	var bare []cardShape
	if err := json.Unmarshal(data, &bare); err == nil {
		return fromCardShapes(bare), nil
	}

	return nil, fmt.Errorf("%w: expected a cards array, a bare card list, or questions/answers",
		ErrUnrecognizedImport)
}

func fromCardShapes(shapes []cardShape) []ImportedCard {
	var cards []ImportedCard
	for _, shape := range shapes {
		front := strings.TrimSpace(shape.Front)
		back := strings.TrimSpace(shape.Back)
		if front == "" || back == "" {
			continue
		}
		cards = append(cards, ImportedCard{
			Front:      front,
			Back:       back,
			Tags:       normalizeTags(shape.Tags),
			Difficulty: normalizeDifficulty(shape.Difficulty),
		})
	}
	return cards
}

func fromQuestionAnswers(questions, answers []string) []ImportedCard {
	var cards []ImportedCard
	for i := range questions {
		front := strings.TrimSpace(questions[i])
		back := strings.TrimSpace(answers[i])
		if front == "" || back == "" {
			continue
		}
		cards = append(cards, ImportedCard{
			Front:      front,
			Back:       back,
			Tags:       []string{},
			Difficulty: domain.DifficultyMedium,
		})
	}
	return cards
}

// ParseCSVCards reads cards from the CSV layout WriteDeck produces.
// The header row is skipped; only the front/back/tags/difficulty
// columns are honored.
func ParseCSVCards(data io.Reader) ([]ImportedCard, error) {
	reader := csv.NewReader(data)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedImport, err)
	}
	if len(records) > 0 && looksLikeHeader(records[0]) {
		records = records[1:]
	}

	var cards []ImportedCard
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		front := strings.TrimSpace(record[0])
		back := strings.TrimSpace(record[1])
		if front == "" || back == "" {
			continue
		}

		card := ImportedCard{
			Front:      front,
			Back:       back,
			Tags:       []string{},
			Difficulty: domain.DifficultyMedium,
		}
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			card.Tags = normalizeTags(strings.Split(record[2], ";"))
		}
		if len(record) > 3 {
			card.Difficulty = normalizeDifficulty(record[3])
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func normalizeTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func normalizeDifficulty(s string) domain.Difficulty {
	d := domain.Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if domain.IsValidDifficulty(d) {
		return d
	}
	return domain.DifficultyMedium
}

func looksLikeHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "front")
}
