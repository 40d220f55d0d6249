package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martoast/gemini-plays-pokemon/pkg/gametypes"
)

func TestExtractSegments(t *testing.T) {
	reply := "THINK: The dialogue box is open.\nBUTTON: A\nNOTEPAD: Talked to Mom in Pallet Town."

	segments := ExtractSegments(reply)
	assert.Equal(t, "The dialogue box is open.", segments.Reasoning)
	assert.Equal(t, "A", segments.Button)
	assert.Equal(t, "Talked to Mom in Pallet Town.", segments.Notepad)
}

func TestExtractSegmentsMultiline(t *testing.T) {
	reply := "THINK: Line one.\nLine two of reasoning.\nBUTTON: UP\nNOTEPAD: no change"

	segments := ExtractSegments(reply)
	assert.Equal(t, "Line one.\nLine two of reasoning.", segments.Reasoning)
	assert.Equal(t, "UP", segments.Button)
	assert.Equal(t, "no change", segments.Notepad)
}

func TestExtractSegmentsMissingLabels(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  gametypes.ReplySegments
	}{
		{"empty", "", gametypes.ReplySegments{}},
		{"free text only", "I have no idea what to do.", gametypes.ReplySegments{}},
		{"button only", "BUTTON: START", gametypes.ReplySegments{Button: "START"}},
		{"think only", "THINK: hmm", gametypes.ReplySegments{Reasoning: "hmm"}},
		{"notepad only", "NOTEPAD: something", gametypes.ReplySegments{Notepad: "something"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSegments(tt.reply))
		})
	}
}

func TestParseReplyValidButton(t *testing.T) {
	decision := ParseReply("THINK: ok\nBUTTON: up\nNOTEPAD: no change")

	require.True(t, decision.HasAction())
	assert.Equal(t, gametypes.ButtonUp, *decision.Button)
	assert.Equal(t, 6, decision.Button.Code())
	assert.Empty(t, decision.NotepadDelta)
	assert.Equal(t, "ok", decision.Reasoning)
}

func TestParseReplyUnrecognizedButtonDefaultsToA(t *testing.T) {
	decision := ParseReply("BUTTON: xyz")

	require.True(t, decision.HasAction())
	assert.Equal(t, gametypes.ButtonA, *decision.Button)
	assert.Equal(t, 0, decision.Button.Code())
}

func TestParseReplyMissingButtonYieldsNoAction(t *testing.T) {
	decision := ParseReply("THINK: not sure yet\nNOTEPAD: no change")
	assert.False(t, decision.HasAction())
}

func TestParseReplyNoChangeVariants(t *testing.T) {
	for _, variant := range []string{"no change", "No Change", "NO CHANGE", "  no change  "} {
		decision := ParseReply("BUTTON: A\nNOTEPAD: " + variant)
		assert.Empty(t, decision.NotepadDelta, "variant %q", variant)
	}
}

func TestParseReplyNotepadDelta(t *testing.T) {
	decision := ParseReply("BUTTON: A\nNOTEPAD: Found a Potion in the bedroom drawer.")
	assert.Equal(t, "Found a Potion in the bedroom drawer.", decision.NotepadDelta)
}

func TestParseReplyFiltersIntentSentences(t *testing.T) {
	tests := []struct {
		name    string
		notepad string
		want    string
	}{
		{
			"pure intent",
			"I will press A.",
			"",
		},
		{
			"pure intent with target",
			"Pressing UP to move toward the door.",
			"",
		},
		{
			"intent mixed with real info",
			"The rival took the Squirtle. I will press A to continue.",
			"The rival took the Squirtle.",
		},
		{
			"multiple intent sentences",
			"I'll press START. Then press A again.",
			"",
		},
		{
			"real info survives",
			"Viridian City gym is locked.",
			"Viridian City gym is locked.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ParseReply("BUTTON: A\nNOTEPAD: " + tt.notepad)
			assert.Equal(t, tt.want, decision.NotepadDelta)
		})
	}
}

// Surviving delta text must read back byte for byte: filtering removes whole
// intent sentences and nothing else.
func TestParseReplyPreservesDeltaTextVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		notepad string
		want    string
	}{
		{
			"multi-line delta",
			"Route 1 has tall grass\nPikachu spotted near the trees",
			"Route 1 has tall grass\nPikachu spotted near the trees",
		},
		{
			"intent line removed between lines",
			"Info one.\nI will press A.\nInfo two.",
			"Info one.\nInfo two.",
		},
		{
			"internal spacing kept",
			"Saved at the Pokemon Center.  Healed the team.",
			"Saved at the Pokemon Center.  Healed the team.",
		},
		{
			"bulleted lines kept",
			"- Gym leader uses Rock types\n- Buy Potions before the fight",
			"- Gym leader uses Rock types\n- Buy Potions before the fight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ParseReply("BUTTON: A\nNOTEPAD: " + tt.notepad)
			assert.Equal(t, tt.want, decision.NotepadDelta)
		})
	}
}

// The parser must be total: arbitrary junk never panics and always yields a
// well-formed decision.
func TestParseReplyIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"BUTTON:",
		"NOTEPAD:",
		"THINK:",
		"BUTTON: BUTTON: BUTTON:",
		"NOTEPAD: THINK: BUTTON:",
		"\x00\xff garbage \n\n\n",
		"BUTTON: A NOTEPAD: x THINK: y",
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			decision := ParseReply(input)
			require.NotNil(t, decision)
			if decision.Button != nil {
				assert.True(t, decision.Button.Valid())
			}
		}, "input %q", input)
	}
}

func TestParseReplyDeterministic(t *testing.T) {
	reply := "THINK: a\nBUTTON: b\nNOTEPAD: c"
	first := ParseReply(reply)
	second := ParseReply(reply)
	assert.Equal(t, first, second)
}
