// Package gametypes provides the shared value types for the Pokemon controller.
// It defines the Game Boy Advance button enumeration with the numeric codes understood by
// the emulator script, and the structures produced by model reply parsing.
package gametypes

import "strings"

// Button identifies a single Game Boy Advance button. The numeric value of each
// constant is the code sent over the wire to the emulator.
type Button int

// The full button table. Codes are fixed by the emulator-side script and must
// not be reordered.
const (
	ButtonA      Button = 0
	ButtonB      Button = 1
	ButtonSelect Button = 2
	ButtonStart  Button = 3
	ButtonRight  Button = 4
	ButtonLeft   Button = 5
	ButtonUp     Button = 6
	ButtonDown   Button = 7
	ButtonR      Button = 8
	ButtonL      Button = 9
)

var buttonNames = map[Button]string{
	ButtonA:      "A",
	ButtonB:      "B",
	ButtonSelect: "SELECT",
	ButtonStart:  "START",
	ButtonRight:  "RIGHT",
	ButtonLeft:   "LEFT",
	ButtonUp:     "UP",
	ButtonDown:   "DOWN",
	ButtonR:      "R",
	ButtonL:      "L",
}

var buttonsByName = map[string]Button{
	"A":      ButtonA,
	"B":      ButtonB,
	"SELECT": ButtonSelect,
	"START":  ButtonStart,
	"RIGHT":  ButtonRight,
	"LEFT":   ButtonLeft,
	"UP":     ButtonUp,
	"DOWN":   ButtonDown,
	"R":      ButtonR,
	"L":      ButtonL,
}

// String returns the canonical upper-case button name.
func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return "UNKNOWN"
}

// Code returns the numeric wire code for the button.
func (b Button) Code() int {
	return int(b)
}

// Valid reports whether b is one of the ten defined buttons.
func (b Button) Valid() bool {
	_, ok := buttonNames[b]
	return ok
}

// ParseButton maps a button name (case-insensitive, surrounding whitespace
// ignored) to its Button value. The second return value reports whether the
// name was recognized.
func ParseButton(name string) (Button, bool) {
	b, ok := buttonsByName[strings.ToUpper(strings.TrimSpace(name))]
	return b, ok
}

// ButtonNames returns the canonical names of all defined buttons in code order.
func ButtonNames() []string {
	names := make([]string, 0, len(buttonNames))
	for code := ButtonA; code <= ButtonL; code++ {
		names = append(names, buttonNames[code])
	}
	return names
}
