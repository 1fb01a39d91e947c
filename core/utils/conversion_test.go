package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{42, 42},
		{int64(7), 7},
		{3.9, 3},
		{" 12 ", 12},
		{"12.7", 12},
		{[]byte("5"), 5},
		{true, 1},
		{"abc", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToInt(tt.in), "input %v", tt.in)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"1,234.5", 1234.5, true},
		{"15%", 0.15, true},
		{int64(3), 3, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "input %v", tt.in)
	}
}

func TestToString(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]byte("y"), "y"},
		{float64(10), "10"},
		{2.5, "2.5"},
		{int64(9), "9"},
		{at, "2024-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToString(tt.in))
	}
}

func TestToBool(t *testing.T) {
	for _, in := range []any{true, 1, int64(2), 1.5, "true", "YES", " on ", []byte("1")} {
		assert.True(t, ToBool(in), "input %v", in)
	}
	for _, in := range []any{false, 0, 0.0, "false", "no", "", nil} {
		assert.False(t, ToBool(in), "input %v", in)
	}
}
