package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestParseDateOnly(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{name: "date only", input: "2026-06-15", want: localDate(2026, time.June, 15), ok: true},
		{name: "surrounding whitespace", input: "  2026-06-15 ", want: localDate(2026, time.June, 15), ok: true},
		{name: "iso instant keeps the date prefix", input: "2026-06-15T23:59:00.000Z", want: localDate(2026, time.June, 15), ok: true},
		{name: "slash layout", input: "2026/06/15", want: localDate(2026, time.June, 15), ok: true},
		{name: "month name layout", input: "Jun 15, 2026", want: localDate(2026, time.June, 15), ok: true},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "next friday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDateOnly(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
				assert.Zero(t, got.Hour())
				assert.Zero(t, got.Minute())
			}
		})
	}
}

func TestParseInput(t *testing.T) {
	got, ok := ParseInput(" 2026-02-03 ")
	require.True(t, ok)
	assert.True(t, localDate(2026, time.February, 3).Equal(got))

	for _, in := range []string{"", "03/02/2026", "2026/02/03", "2026-2-3", "2026-02-30", "2026-02-03T10:00:00Z"} {
		_, ok := ParseInput(in)
		assert.False(t, ok, in)
	}
}

func TestFormatDateOnlyRoundTrip(t *testing.T) {
	d := localDate(2026, time.March, 5)
	assert.Equal(t, "2026-03-05", FormatDateOnly(d))

	parsed, ok := ParseDateOnly(FormatDateOnly(d))
	require.True(t, ok)
	assert.True(t, parsed.Equal(d))
}

func TestDaysBetweenCeil(t *testing.T) {
	from := time.Date(2026, time.June, 1, 18, 30, 0, 0, time.Local)

	assert.Equal(t, 10, DaysBetweenCeil(from, localDate(2026, time.June, 11)))
	assert.Equal(t, 0, DaysBetweenCeil(from, time.Date(2026, time.June, 1, 23, 0, 0, 0, time.Local)))
	assert.Equal(t, -3, DaysBetweenCeil(from, localDate(2026, time.May, 29)))
}

func TestDaysBetweenFloor(t *testing.T) {
	assert.Equal(t, 30, DaysBetweenFloor(localDate(2026, time.June, 1), localDate(2026, time.July, 1)))
	assert.Equal(t, -1, DaysBetweenFloor(localDate(2026, time.June, 2), localDate(2026, time.June, 1)))
}

func TestAddMonthsOverflowsShortMonths(t *testing.T) {
	assert.True(t, AddMonths(localDate(2026, time.January, 31), 1).Equal(localDate(2026, time.March, 3)))
	assert.True(t, AddMonths(localDate(2026, time.June, 15), 1).Equal(localDate(2026, time.July, 15)))
	assert.True(t, AddMonths(localDate(2026, time.December, 10), 1).Equal(localDate(2027, time.January, 10)))
}
