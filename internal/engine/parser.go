package engine

import (
	"regexp"
	"strings"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
	"github.com/martoast/gemini-plays-pokemon/pkg/gametypes"
)

// Reply labels, in the order the model is instructed to emit them.
const (
	labelThink   = "THINK:"
	labelButton  = "BUTTON:"
	labelNotepad = "NOTEPAD:"
)

var replyLabels = []string{labelThink, labelButton, labelNotepad}

// intentSentence matches sentences that merely restate the button press the
// model is about to make ("I will press A.", "Pressing UP to move north.").
// Those add nothing to persistent memory and are filtered from notepad deltas.
var intentSentence = regexp.MustCompile(
	`(?i)^\s*(i\s+(will|should|am\s+going\s+to|need\s+to|want\s+to|plan\s+to)\s+|i'll\s+|let'?s\s+|now\s+|then\s+)?` +
		`(just\s+)?(press(ing)?|push(ing)?|hit(ting)?)\s+(the\s+)?` +
		`(a|b|select|start|right|left|up|down|r|l)(\s+button)?` +
		`(\s+(now|again|once|twice|first|next|to\s+.*|and\s+.*))?[.!?]*\s*$`)

// ExtractSegments pulls the labeled segments out of a model reply. Each
// segment runs from its label to the next label or the end of the text. A
// missing label yields an empty segment, which is not an error.
func ExtractSegments(reply string) gametypes.ReplySegments {
	var segments gametypes.ReplySegments

	positions := make(map[string]int, len(replyLabels))
	for _, label := range replyLabels {
		positions[label] = strings.Index(reply, label)
	}

	for _, label := range replyLabels {
		start := positions[label]
		if start < 0 {
			continue
		}
		begin := start + len(label)
		end := len(reply)
		for _, other := range replyLabels {
			pos := positions[other]
			if pos > start && pos < end {
				end = pos
			}
		}
		segment := strings.TrimSpace(reply[begin:end])

		switch label {
		case labelThink:
			segments.Reasoning = segment
		case labelButton:
			segments.Button = segment
		case labelNotepad:
			segments.Notepad = segment
		}
	}

	return segments
}

// ParseReply turns a free-text model reply into a validated Decision. It is
// total: any input yields a decision, never an error.
//
// An unrecognized but non-empty button value falls back to A so the emulator
// is never left waiting on a malformed reply. A notepad segment of "no
// change" (case-insensitive), or one that is entirely press-intent phrasing,
// produces no delta.
func ParseReply(reply string) *gametypes.Decision {
	segments := ExtractSegments(reply)
	decision := &gametypes.Decision{Reasoning: segments.Reasoning}

	if segments.Button != "" {
		button, ok := gametypes.ParseButton(segments.Button)
		if !ok {
			logger.Warn("Unrecognized button in model reply, defaulting to A", "value", segments.Button)
			button = gametypes.ButtonA
		}
		decision.Button = &button
	}

	if delta := filterNotepadDelta(segments.Notepad); delta != "" {
		decision.NotepadDelta = delta
	}

	return decision
}

// filterNotepadDelta applies the "no change" rule and strips press-intent
// sentences. Surviving text is carried over byte for byte, including its
// newlines and spacing. Returns the empty string when nothing memorable
// remains.
func filterNotepadDelta(segment string) string {
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" || strings.EqualFold(trimmed, "no change") {
		return ""
	}

	var kept strings.Builder
	for _, sentence := range splitSentences(trimmed) {
		if intentSentence.MatchString(sentence) {
			continue
		}
		kept.WriteString(sentence)
	}
	return strings.TrimSpace(kept.String())
}

// splitSentences carves text into sentence chunks on terminators and
// newlines. Every byte of the input lands in exactly one chunk: a chunk
// carries its terminator run and the whitespace that follows it, so
// concatenating the chunks reproduces the text unchanged.
func splitSentences(text string) []string {
	isTerminator := func(c byte) bool { return c == '.' || c == '!' || c == '?' }
	isSpace := func(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' && !isTerminator(text[i]) {
			continue
		}
		end := i
		for end < len(text) && isTerminator(text[end]) {
			end++
		}
		for end < len(text) && isSpace(text[end]) {
			end++
		}
		sentences = append(sentences, text[start:end])
		start = end
		i = end - 1
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
