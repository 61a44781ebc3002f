package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID      string  `db:"id"`
	Amount  float64 `db:"amount"`
	Skipped string  `db:"-"`
	hidden  string  `db:"hidden"`
	Plain   string
}

func TestStructColumns(t *testing.T) {
	r := row{ID: "abc", Amount: 12.5, Skipped: "x", Plain: "y", hidden: "z"}

	assert.Equal(t, []string{"id", "amount"}, StructTagValues(r))
	assert.Equal(t, map[string]any{"id": "abc", "amount": 12.5}, StructToMap(&r))
	assert.Panics(t, func() { StructTagValues("nope") })
}

func TestRoundFloat64(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{in: 42.499, places: 2, want: 42.5},
		{in: 1.005, places: 0, want: 1},
		{in: 2.5, places: 0, want: 3},
		{in: 123.456, places: 1, want: 123.5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundFloat64(tt.in, tt.places))
	}
}

func TestErrorWrapOrNil(t *testing.T) {
	base := errors.New("boom")

	assert.NoError(t, ErrorWrapOrNil(nil, "ctx"))
	assert.Same(t, base, ErrorWrapOrNil(base, ""))
	wrapped := ErrorWrapOrNil(base, "insert donation")
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "insert donation: boom", wrapped.Error())
}

func TestNanoID(t *testing.T) {
	a, b := NanoID(), NanoID()
	assert.Len(t, a, idSize)
	assert.NotEqual(t, a, b)
}
