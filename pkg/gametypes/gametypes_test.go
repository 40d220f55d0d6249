package gametypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButtonCodes(t *testing.T) {
	// Wire codes are fixed by the emulator script.
	expected := map[string]int{
		"A": 0, "B": 1, "SELECT": 2, "START": 3,
		"RIGHT": 4, "LEFT": 5, "UP": 6, "DOWN": 7,
		"R": 8, "L": 9,
	}

	for name, code := range expected {
		b, ok := ParseButton(name)
		assert.True(t, ok, "button %s should parse", name)
		assert.Equal(t, code, b.Code(), "button %s code", name)
		assert.Equal(t, name, b.String())
	}
}

func TestParseButtonNormalization(t *testing.T) {
	tests := []struct {
		input  string
		want   Button
		wantOK bool
	}{
		{"a", ButtonA, true},
		{"  up  ", ButtonUp, true},
		{"Start", ButtonStart, true},
		{"select", ButtonSelect, true},
		{"", 0, false},
		{"xyz", 0, false},
		{"A B", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseButton(tt.input)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.input)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestButtonValid(t *testing.T) {
	for code := ButtonA; code <= ButtonL; code++ {
		assert.True(t, code.Valid())
	}
	assert.False(t, Button(10).Valid())
	assert.False(t, Button(-1).Valid())
	assert.Equal(t, "UNKNOWN", Button(42).String())
}

func TestButtonNames(t *testing.T) {
	names := ButtonNames()
	assert.Len(t, names, 10)
	assert.Equal(t, "A", names[0])
	assert.Equal(t, "L", names[9])
}

func TestDecisionHasAction(t *testing.T) {
	var d *Decision
	assert.False(t, d.HasAction())

	d = &Decision{}
	assert.False(t, d.HasAction())

	b := ButtonUp
	d.Button = &b
	assert.True(t, d.HasAction())
}
