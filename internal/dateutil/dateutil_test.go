package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatters(t *testing.T) {
	date := time.Date(2001, 1, 1, 10, 20, 1, 0, time.Local)

	t.Run("FormatDate returns DD.MM.YYYY", func(t *testing.T) {
		assert.Equal(t, "01.01.2001", FormatDate(date))
	})

	t.Run("FormatISODate returns YYYY-MM-DD", func(t *testing.T) {
		assert.Equal(t, "2001-01-01", FormatISODate(date))
	})

	t.Run("FormatYearMonth returns YYYY-MM", func(t *testing.T) {
		assert.Equal(t, "2001-01", FormatYearMonth(date))
	})

	t.Run("FormatClock returns HH:mm", func(t *testing.T) {
		assert.Equal(t, "10:20", FormatClock(date))
	})

	t.Run("FormatInstant returns RFC3339", func(t *testing.T) {
		utc := time.Date(2001, 1, 1, 10, 20, 1, 0, time.UTC)
		assert.Equal(t, "2001-01-01T10:20:01Z", FormatInstant(utc))
	})

	t.Run("zero time formats to empty string", func(t *testing.T) {
		var zero time.Time
		assert.Empty(t, FormatDate(zero))
		assert.Empty(t, FormatISODate(zero))
		assert.Empty(t, FormatYearMonth(zero))
		assert.Empty(t, FormatClock(zero))
		assert.Empty(t, FormatInstant(zero))
	})
}

func TestMinutesBetween(t *testing.T) {
	start := time.Date(2001, 1, 1, 10, 20, 1, 0, time.UTC)
	end := time.Date(2001, 1, 1, 10, 34, 6, 0, time.UTC)

	t.Run("rounds to whole minutes", func(t *testing.T) {
		assert.Equal(t, "14", MinutesBetween(start, end))
	})

	t.Run("negative when end precedes start", func(t *testing.T) {
		assert.Equal(t, "-14", MinutesBetween(end, start))
	})

	t.Run("empty when either input is the zero time", func(t *testing.T) {
		var zero time.Time
		assert.Empty(t, MinutesBetween(zero, end))
		assert.Empty(t, MinutesBetween(start, zero))
	})
}

func TestParsers(t *testing.T) {
	t.Run("ParseISODate round-trips through FormatISODate", func(t *testing.T) {
		parsed, err := ParseISODate("2024-03-05")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05", FormatISODate(parsed))
	})

	t.Run("ParseYearMonth yields the first of the month", func(t *testing.T) {
		parsed, err := ParseYearMonth("2024-03")
		require.NoError(t, err)
		assert.Equal(t, 2024, parsed.Year())
		assert.Equal(t, time.March, parsed.Month())
		assert.Equal(t, 1, parsed.Day())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseISODate("05.03.2024")
		assert.Error(t, err)
	})
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	b := time.Date(2024, 3, 28, 23, 0, 0, 0, time.Local)
	c := time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)

	assert.True(t, SameMonth(a, b))
	assert.False(t, SameMonth(a, c))
}
