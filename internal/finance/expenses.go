package finance

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lachiem1/paycycle/internal/dateutil"
)

const DefaultCategory = "Outros"

// Categories is the fixed expense category list, in display order.
var Categories = []string{
	"Alimentação",
	"Transporte",
	"Moradia",
	"Lazer",
	"Saúde",
	"Educação",
	DefaultCategory,
}

// NormalizeCategory returns the matching known category (case-insensitive) or
// DefaultCategory.
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	for _, c := range Categories {
		if strings.EqualFold(trimmed, c) {
			return c
		}
	}
	return DefaultCategory
}

type ExpenseGroup struct {
	DateKey string    `json:"dateKey"`
	Label   string    `json:"label"`
	Total   float64   `json:"total"`
	Items   []Expense `json:"items"`
}

var isoDatePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// ExpenseDateKey buckets an expense timestamp into a YYYY-MM-DD key. The key is
// the literal date prefix when present, else the UTC date of the parsed value,
// else today's UTC date.
func ExpenseDateKey(date string, today time.Time) string {
	if m := isoDatePrefix.FindStringSubmatch(date); m != nil {
		return m[1]
	}
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(date)); err == nil {
		return t.UTC().Format(dateutil.DateLayout)
	}
	if t, ok := dateutil.ParseDateOnly(date); ok {
		return t.UTC().Format(dateutil.DateLayout)
	}
	return today.UTC().Format(dateutil.DateLayout)
}

// GroupExpensesByDay sorts expenses newest first and buckets them by day.
// Groups are ordered newest first.
func GroupExpensesByDay(expenses []Expense, today time.Time) []ExpenseGroup {
	sorted := append([]Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, okI := parseInstant(sorted[i].Date)
		tj, okJ := parseInstant(sorted[j].Date)
		if okI != okJ {
			// Unparseable dates sort last.
			return okI
		}
		return okI && ti.After(tj)
	})

	byKey := make(map[string]*ExpenseGroup)
	keys := make([]string, 0)
	for _, e := range sorted {
		key := ExpenseDateKey(e.Date, today)
		g, ok := byKey[key]
		if !ok {
			g = &ExpenseGroup{DateKey: key, Label: dayLabel(key, today)}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.Items = append(g.Items, e)
		g.Total += sanitize(e.Amount)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	out := make([]ExpenseGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

func parseInstant(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
		return t, true
	}
	return dateutil.ParseDateOnly(s)
}

func dayLabel(key string, today time.Time) string {
	todayKey := today.UTC().Format(dateutil.DateLayout)
	yesterdayKey := today.UTC().AddDate(0, 0, -1).Format(dateutil.DateLayout)
	switch key {
	case todayKey:
		return "Today"
	case yesterdayKey:
		return "Yesterday"
	}
	t, err := time.Parse(dateutil.DateLayout, key)
	if err != nil {
		return key
	}
	return t.Format("02 Jan 2006")
}
