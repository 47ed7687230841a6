// Package dateutil holds the calendar helpers shared by the projection and
// rollover code. Date-only values are always interpreted at local midnight.
package dateutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	Day        = 24 * time.Hour
)

var dateOnlyPrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// Layouts tried, in order, when the input does not start with YYYY-MM-DD.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseInput parses a date typed by a user. Only YYYY-MM-DD is accepted;
// slash layouts are ambiguous between day-first and month-first locales.
func ParseInput(input string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(input), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateOnly parses input into a local-midnight instant.
//
// A leading YYYY-MM-DD is read field by field so a date-only value never shifts
// across the UTC/local boundary. Anything else goes through a list of common
// layouts. The second return value is false when nothing matched.
func ParseDateOnly(input string) (time.Time, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return time.Time{}, false
	}

	if m := dateOnlyPrefix.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}

	for _, layout := range fallbackLayouts {
		t, err := time.ParseInLocation(layout, trimmed, time.Local)
		if err != nil {
			continue
		}
		return StartOfDay(t.In(time.Local)), true
	}
	return time.Time{}, false
}

// FormatDateOnly renders t's local calendar date as YYYY-MM-DD.
func FormatDateOnly(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	local := t.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// DaysBetweenCeil is ceil((to - from) / 24h) after both are moved to local midnight.
func DaysBetweenCeil(from, to time.Time) int {
	diff := StartOfDay(to).Sub(StartOfDay(from))
	return int(math.Ceil(float64(diff) / float64(Day)))
}

// DaysBetweenFloor is the floor counterpart of DaysBetweenCeil.
func DaysBetweenFloor(from, to time.Time) int {
	diff := StartOfDay(to).Sub(StartOfDay(from))
	return int(math.Floor(float64(diff) / float64(Day)))
}

// AddDays moves t by n calendar days, keeping the wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddMonths moves t by n calendar months. Days that do not exist in the target
// month overflow into the next one (Jan 31 + 1 month = Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}
