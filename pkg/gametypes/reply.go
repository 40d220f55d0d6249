package gametypes

// ReplySegments holds the raw labeled segments extracted from a model reply.
// A nil-equivalent empty string means the label was absent from the reply.
type ReplySegments struct {
	Reasoning string // text following the THINK: label
	Button    string // text following the BUTTON: label
	Notepad   string // text following the NOTEPAD: label
}

// Decision is the validated outcome of one decision cycle. It is consumed
// immediately by the session handler and never persisted as-is.
type Decision struct {
	// Button is the action to relay to the emulator, nil when the reply
	// contained no action segment.
	Button *Button

	// NotepadDelta is the text appended to the notepad this cycle, empty when
	// the model declared "no change" or the delta was filtered away entirely.
	NotepadDelta string

	// Reasoning is the model's stated thinking for this cycle, recorded in the
	// thinking history. Informational only.
	Reasoning string
}

// HasAction reports whether the decision carries a button press.
func (d *Decision) HasAction() bool {
	return d != nil && d.Button != nil
}
