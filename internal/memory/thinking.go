package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
)

// EntryMarker delimits thinking-history entries. Trimming splits on this
// marker so an entry is always kept or dropped whole.
const EntryMarker = "\n---\n"

const thinkingHeader = "# Thinking History\n\nRolling log of the model's reasoning per decision.\n"

// ThinkingHistory is the append-only rolling log of reasoning entries.
type ThinkingHistory struct {
	store       Store
	maxChars    int
	keepEntries int
}

// NewThinkingHistory creates a thinking history over the given store. When
// total size exceeds maxChars after an append, only the header plus the last
// keepEntries entries are retained.
func NewThinkingHistory(store Store, maxChars, keepEntries int) *ThinkingHistory {
	return &ThinkingHistory{store: store, maxChars: maxChars, keepEntries: keepEntries}
}

// Initialize creates the history file with its fixed header if absent.
func (h *ThinkingHistory) Initialize() error {
	if h.store.Exists() {
		return nil
	}
	return h.store.Write(thinkingHeader)
}

// Read returns the current history content. Like the notepad, a read failure
// degrades to a sentinel string instead of an error.
func (h *ThinkingHistory) Read() string {
	content, err := h.store.Read()
	if err != nil {
		logger.Error("Failed to read thinking history", "error", err)
		return "Error reading thinking history"
	}
	return content
}

// Append records one reasoning entry under a timestamped marker and trims the
// history when it exceeds the size threshold.
func (h *ThinkingHistory) Append(text string) error {
	content, err := h.store.Read()
	if err != nil {
		return fmt.Errorf("failed to read thinking history: %w", err)
	}

	entry := fmt.Sprintf("### %s\n%s\n", time.Now().Format(time.RFC3339), strings.TrimSpace(text))
	content += EntryMarker + entry

	if len(content) > h.maxChars {
		content = trimHistory(content, h.keepEntries)
	}

	return h.store.Write(content)
}

// trimHistory keeps the header segment plus the last keep entry segments.
// Entry boundaries are preserved exactly.
func trimHistory(content string, keep int) string {
	parts := strings.Split(content, EntryMarker)
	if len(parts) <= keep+1 {
		return content
	}
	header := parts[0]
	entries := parts[len(parts)-keep:]
	return header + EntryMarker + strings.Join(entries, EntryMarker)
}
