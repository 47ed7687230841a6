package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{"12.5", 12.5},
		{"12,50", 12.5},
		{"1,234.56", 1234.56},
		{"R$ 1.234,56", 1234.56},
		{"1.234", 1234},
		{"1 000 000,1", 1000000.1},
		{"0,005", 5},
		{"12.345", 12345},
		{"-7,25", -7.25},
		{"  $ 3.999 ", 3.999e3},
		{"10.", 10},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseRoundsToCents(t *testing.T) {
	got, err := Parse("0.1")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, got, 1e-12)
}

func TestParseRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "R$", "abc"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrEmptyAmount, in)
	}
}

func TestParseCents(t *testing.T) {
	assert.InDelta(t, 123.45, ParseCents("12345"), 1e-9)
	assert.InDelta(t, 1234.56, ParseCents("R$ 1.234,56"), 1e-9)
	assert.InDelta(t, 0.07, ParseCents("7"), 1e-9)
	assert.Zero(t, ParseCents(""))
	assert.Zero(t, ParseCents("R$ ,"))
}

func TestNewFormatterRejectsUnknownInputs(t *testing.T) {
	_, err := NewFormatter("not a locale!!", "BRL")
	assert.Error(t, err)
	_, err = NewFormatter("pt-BR", "XXXX")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	f := MustFormatter("pt-BR", "BRL")
	assert.NotEmpty(t, f.Symbol())

	got := f.Format(1234.5)
	assert.Contains(t, got, f.Symbol())
	assert.Contains(t, got, "234")

	neg := f.Format(-10)
	assert.Equal(t, "-"+f.Format(10), neg)
}
