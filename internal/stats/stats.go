// Package stats computes read-only analytics over the store's decks.
// Every aggregate is recomputed on demand from the full card set, so
// each method is a pure function of the decks passed in plus the
// aggregator's clock. Nothing here mutates store state.
package stats

import (
	"sort"
	"time"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// PerCardStudyTime is the estimated time cost attributed to each
// studied card. Sessions do not measure per-card durations, so the
// weekday breakdown uses this flat estimate.
const PerCardStudyTime = 30 * time.Second

// DayAccuracy is one calendar-day bucket of study activity.
type DayAccuracy struct {
	Date            time.Time `json:"date"`
	AccuracyPercent float64   `json:"accuracyPercent"`
	CardsStudied    int       `json:"cardsStudied"`
}

// WeekdayStudyTime is the estimated total study time for one weekday.
type WeekdayStudyTime struct {
	Weekday      time.Weekday  `json:"-"`
	Label        string        `json:"weekday"`
	Time         time.Duration `json:"-"`
	TimeSeconds  float64       `json:"timeSeconds"`
	CardsStudied int           `json:"cardsStudied"`
}

// Aggregator derives analytics from deck snapshots. The zero value is
// not usable; construct with New.
type Aggregator struct {
	now func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source, for deterministic day and
// streak arithmetic in tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func New(opts ...Option) *Aggregator {
	a := &Aggregator{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StudiedCards returns every card across all decks that has been
// rated at least once.
func (a *Aggregator) StudiedCards(decks []*domain.Deck) []domain.Card {
	var studied []domain.Card
	for _, deck := range decks {
		for _, card := range deck.Cards {
			if card.Studied() {
				studied = append(studied, card)
			}
		}
	}
	return studied
}

// AverageAccuracy is the share of studied cards currently at a
// correct confidence, as a percentage. Returns 0 when nothing has
// been studied.
func (a *Aggregator) AverageAccuracy(decks []*domain.Deck) float64 {
	studied := a.StudiedCards(decks)
	if len(studied) == 0 {
		return 0
	}
	correct := 0
	for _, card := range studied {
		if card.Correct() {
			correct++
		}
	}
	return float64(correct) / float64(len(studied)) * 100
}

// AccuracyByDay buckets studied cards into the last windowDays
// calendar days, oldest first and ending with today. Days without
// activity report 0% accuracy rather than being omitted.
func (a *Aggregator) AccuracyByDay(decks []*domain.Deck, windowDays int) []DayAccuracy {
	if windowDays <= 0 {
		return nil
	}
	studied := a.StudiedCards(decks)
	today := dayStart(a.now())

	days := make([]DayAccuracy, 0, windowDays)
	for offset := windowDays - 1; offset >= 0; offset-- {
		start := today.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 1)

		count, correct := 0, 0
		for _, card := range studied {
			ts := *card.LastStudied
			if !ts.Before(start) && ts.Before(end) {
				count++
				if card.Correct() {
					correct++
				}
			}
		}

		day := DayAccuracy{Date: start, CardsStudied: count}
		if count > 0 {
			day.AccuracyPercent = float64(correct) / float64(count) * 100
		}
		days = append(days, day)
	}
	return days
}

// StudyTimeByWeekday estimates study time for each of the seven
// weekdays, Sunday first, by attributing a flat per-card cost to the
// weekday of each studied card's last rating.
func (a *Aggregator) StudyTimeByWeekday(decks []*domain.Deck) []WeekdayStudyTime {
	counts := [7]int{}
	for _, card := range a.StudiedCards(decks) {
		counts[card.LastStudied.Weekday()]++
	}

	out := make([]WeekdayStudyTime, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		total := time.Duration(counts[wd]) * PerCardStudyTime
		out[wd] = WeekdayStudyTime{
			Weekday:      wd,
			Label:        wd.String(),
			Time:         total,
			TimeSeconds:  total.Seconds(),
			CardsStudied: counts[wd],
		}
	}
	return out
}

// Streak counts consecutive calendar days with study activity,
// walking backward from today. A streak only exists if today
// qualifies; activity that ended yesterday reports 0.
func (a *Aggregator) Streak(decks []*domain.Deck) int {
	studiedDays := make(map[time.Time]bool)
	for _, card := range a.StudiedCards(decks) {
		studiedDays[dayStart(*card.LastStudied)] = true
	}

	streak := 0
	for day := dayStart(a.now()); studiedDays[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// ConfidenceDistribution counts studied cards at each confidence
// level, indexed 0 through 3.
func (a *Aggregator) ConfidenceDistribution(decks []*domain.Deck) [domain.MaxConfidence + 1]int {
	var dist [domain.MaxConfidence + 1]int
	for _, card := range a.StudiedCards(decks) {
		c := *card.Confidence
		if c < domain.MinConfidence || c > domain.MaxConfidence {
			// Snapshot edited out of band; ignore rather than panic.
			continue
		}
		dist[c]++
	}
	return dist
}

// RecentlyStudiedDecks returns up to n decks that have been studied,
// most recent first.
func (a *Aggregator) RecentlyStudiedDecks(decks []*domain.Deck, n int) []*domain.Deck {
	var studied []*domain.Deck
	for _, deck := range decks {
		if deck.LastStudied != nil {
			studied = append(studied, deck)
		}
	}
	sort.SliceStable(studied, func(i, j int) bool {
		return studied[i].LastStudied.After(*studied[j].LastStudied)
	})
	if n >= 0 && len(studied) > n {
		studied = studied[:n]
	}
	return studied
}

// DeckMastery is the share of a deck's cards at a correct confidence,
// as a percentage. An empty deck has 0 mastery.
func (a *Aggregator) DeckMastery(deck *domain.Deck) float64 {
	if deck == nil || len(deck.Cards) == 0 {
		return 0
	}
	mastered := 0
	for _, card := range deck.Cards {
		if card.Correct() {
			mastered++
		}
	}
	return float64(mastered) / float64(len(deck.Cards)) * 100
}

// dayStart normalizes to the UTC calendar day. Card timestamps are
// stored UTC; keying buckets in one location keeps map lookups and
// comparisons exact regardless of the clock's location.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
