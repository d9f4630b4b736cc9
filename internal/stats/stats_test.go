package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahiatlinux/FlashCardMasher/internal/domain"
)

// Wednesday at noon, so day-boundary arithmetic is unambiguous.
var testNow = time.Date(2025, time.March, 12, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func card(t *testing.T, confidence int, lastStudied time.Time) domain.Card {
	t.Helper()
	c, err := domain.NewCard("front", "back", nil, domain.DifficultyMedium)
	require.NoError(t, err)
	c.Confidence = &confidence
	c.LastStudied = &lastStudied
	return *c
}

func unstudiedCard(t *testing.T) domain.Card {
	t.Helper()
	c, err := domain.NewCard("front", "back", nil, domain.DifficultyMedium)
	require.NoError(t, err)
	return *c
}

func deckOf(t *testing.T, name string, cards ...domain.Card) *domain.Deck {
	t.Helper()
	d, err := domain.NewDeck(name, "", nil)
	require.NoError(t, err)
	d.Cards = cards
	return d
}

func TestStudiedCards(t *testing.T) {
	decks := []*domain.Deck{
		deckOf(t, "a", card(t, 3, testNow), unstudiedCard(t)),
		deckOf(t, "b", card(t, 0, testNow)),
		deckOf(t, "empty"),
	}

	studied := New(WithClock(fixedClock)).StudiedCards(decks)
	assert.Len(t, studied, 2)
}

func TestAverageAccuracy(t *testing.T) {
	agg := New(WithClock(fixedClock))

	t.Run("no studied cards returns zero", func(t *testing.T) {
		decks := []*domain.Deck{deckOf(t, "a", unstudiedCard(t))}
		assert.Zero(t, agg.AverageAccuracy(decks))
		assert.Zero(t, agg.AverageAccuracy(nil))
	})

	t.Run("counts confidence two and above as correct", func(t *testing.T) {
		decks := []*domain.Deck{deckOf(t, "a",
			card(t, 3, testNow),
			card(t, 2, testNow),
			card(t, 1, testNow),
			card(t, 0, testNow),
		)}
		assert.InDelta(t, 50.0, agg.AverageAccuracy(decks), 0.001)
	})
}

func TestAccuracyByDay(t *testing.T) {
	agg := New(WithClock(fixedClock))
	yesterday := testNow.AddDate(0, 0, -1)

	decks := []*domain.Deck{deckOf(t, "a",
		card(t, 3, testNow),
		card(t, 0, testNow),
		card(t, 2, yesterday),
	)}

	days := agg.AccuracyByDay(decks, 3)
	require.Len(t, days, 3)

	// Oldest first, ending with today.
	assert.True(t, days[0].Date.Before(days[1].Date))
	assert.True(t, days[1].Date.Before(days[2].Date))
	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), days[2].Date)

	assert.Equal(t, 0, days[0].CardsStudied)
	assert.Zero(t, days[0].AccuracyPercent, "empty day reports zero, not NaN")

	assert.Equal(t, 1, days[1].CardsStudied)
	assert.InDelta(t, 100.0, days[1].AccuracyPercent, 0.001)

	assert.Equal(t, 2, days[2].CardsStudied)
	assert.InDelta(t, 50.0, days[2].AccuracyPercent, 0.001)
}

func TestStudyTimeByWeekday(t *testing.T) {
	agg := New(WithClock(fixedClock))

	// testNow is a Wednesday; the day before is a Tuesday.
	decks := []*domain.Deck{deckOf(t, "a",
		card(t, 2, testNow),
		card(t, 1, testNow),
		card(t, 3, testNow.AddDate(0, 0, -1)),
	)}

	byDay := agg.StudyTimeByWeekday(decks)
	require.Len(t, byDay, 7)
	assert.Equal(t, time.Sunday, byDay[0].Weekday)

	assert.Equal(t, 2, byDay[time.Wednesday].CardsStudied)
	assert.Equal(t, 2*PerCardStudyTime, byDay[time.Wednesday].Time)
	assert.Equal(t, 1, byDay[time.Tuesday].CardsStudied)
	assert.Equal(t, 0, byDay[time.Monday].CardsStudied)
	assert.Zero(t, byDay[time.Monday].Time)
}

func TestStreak(t *testing.T) {
	agg := New(WithClock(fixedClock))

	t.Run("no studied cards", func(t *testing.T) {
		assert.Zero(t, agg.Streak([]*domain.Deck{deckOf(t, "a", unstudiedCard(t))}))
	})

	t.Run("only today", func(t *testing.T) {
		decks := []*domain.Deck{deckOf(t, "a", card(t, 2, testNow))}
		assert.Equal(t, 1, agg.Streak(decks))
	})

	t.Run("today and yesterday with gap before", func(t *testing.T) {
		decks := []*domain.Deck{deckOf(t, "a",
			card(t, 2, testNow),
			card(t, 1, testNow.AddDate(0, 0, -1)),
			card(t, 3, testNow.AddDate(0, 0, -3)),
		)}
		assert.Equal(t, 2, agg.Streak(decks))
	})

	t.Run("yesterday without today", func(t *testing.T) {
		decks := []*domain.Deck{deckOf(t, "a", card(t, 2, testNow.AddDate(0, 0, -1)))}
		assert.Zero(t, agg.Streak(decks))
	})
}

func TestStreakWithDefaultClock(t *testing.T) {
	// Card timestamps are stored UTC while the default clock is in the
	// local location; day keys must still match.
	c, err := domain.NewCard("front", "back", nil, domain.DifficultyMedium)
	require.NoError(t, err)
	c.Rate(2, time.Now())

	decks := []*domain.Deck{deckOf(t, "a", *c)}
	assert.Equal(t, 1, New().Streak(decks))
}

func TestStreakAcrossClockLocations(t *testing.T) {
	// Fixed-offset clock reading the same instant as a UTC-stamped
	// rating. The zone must not break day-key equality.
	offset := time.FixedZone("UTC+5", 5*60*60)
	localNow := testNow.In(offset)
	agg := New(WithClock(func() time.Time { return localNow }))

	decks := []*domain.Deck{deckOf(t, "a",
		card(t, 2, testNow),
		card(t, 1, testNow.AddDate(0, 0, -1)),
	)}
	assert.Equal(t, 2, agg.Streak(decks))
}

func TestConfidenceDistribution(t *testing.T) {
	agg := New(WithClock(fixedClock))

	decks := []*domain.Deck{deckOf(t, "a",
		card(t, 0, testNow),
		card(t, 2, testNow),
		card(t, 2, testNow),
		card(t, 3, testNow),
		unstudiedCard(t),
	)}

	dist := agg.ConfidenceDistribution(decks)
	assert.Equal(t, [4]int{1, 0, 2, 1}, dist)
}

func TestConfidenceDistributionIgnoresOutOfRangeValues(t *testing.T) {
	agg := New(WithClock(fixedClock))

	// A hand-edited snapshot can carry confidence values the rating
	// path would never write.
	decks := []*domain.Deck{deckOf(t, "a",
		card(t, 7, testNow),
		card(t, -1, testNow),
		card(t, 2, testNow),
	)}

	var dist [4]int
	assert.NotPanics(t, func() { dist = agg.ConfidenceDistribution(decks) })
	assert.Equal(t, [4]int{0, 0, 1, 0}, dist)
}

func TestRecentlyStudiedDecks(t *testing.T) {
	agg := New(WithClock(fixedClock))

	old := deckOf(t, "old")
	oldTime := testNow.AddDate(0, 0, -5)
	old.LastStudied = &oldTime

	recent := deckOf(t, "recent")
	recentTime := testNow.AddDate(0, 0, -1)
	recent.LastStudied = &recentTime

	never := deckOf(t, "never")

	decks := []*domain.Deck{old, never, recent}

	got := agg.RecentlyStudiedDecks(decks, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "recent", got[0].Name)
	assert.Equal(t, "old", got[1].Name)

	assert.Len(t, agg.RecentlyStudiedDecks(decks, 1), 1)
	assert.Empty(t, agg.RecentlyStudiedDecks(decks, 0))
}

func TestDeckMastery(t *testing.T) {
	agg := New(WithClock(fixedClock))

	assert.Zero(t, agg.DeckMastery(nil))
	assert.Zero(t, agg.DeckMastery(deckOf(t, "empty")))

	deck := deckOf(t, "a",
		card(t, 3, testNow),
		card(t, 1, testNow),
		unstudiedCard(t),
		card(t, 2, testNow),
	)
	assert.InDelta(t, 50.0, agg.DeckMastery(deck), 0.001)
}
