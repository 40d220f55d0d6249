package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	diffmatchpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
)

// readErrorSentinel is returned in place of notepad content when the backing
// store can not be read, so a decision cycle proceeds with degraded context
// instead of failing outright.
const readErrorSentinel = "Error reading notepad"

// notepadSections are the named sections a summarization must preserve.
var notepadSections = []string{"Goals", "Current Status", "Key Locations", "Inventory", "Strategy"}

// SummarizeFunc asks the model backend to rewrite oversized notepad content.
// It must return the replacement text or an error; an empty result is treated
// as failure.
type SummarizeFunc func(ctx context.Context, prompt string) (string, error)

// Notepad is the agent's persistent belief state about game progress.
type Notepad struct {
	store    Store
	maxChars int
	debug    bool
}

// NewNotepad creates a notepad over the given store. maxChars is the size
// threshold that triggers compaction.
func NewNotepad(store Store, maxChars int, debug bool) *Notepad {
	return &Notepad{store: store, maxChars: maxChars, debug: debug}
}

// Initialize creates the notepad with the fixed starting template if it does
// not exist yet.
func (n *Notepad) Initialize() error {
	if n.store.Exists() {
		return nil
	}
	var b strings.Builder
	b.WriteString("# Pokémon Red Game AI Notepad\n")
	b.WriteString(fmt.Sprintf("Created: %s\n\n", time.Now().Format(time.RFC3339)))
	b.WriteString("I am playing Pokémon Red. I need to record important information here.\n\n")
	b.WriteString("## Goals\n- Explore the world\n- Catch and train Pokémon\n- Defeat gym leaders\n\n")
	b.WriteString("## Current Status\nJust started the game in Pallet Town\n\n")
	return n.store.Write(b.String())
}

// Read returns the current notepad content. A read failure yields a sentinel
// string rather than an error so the decision pipeline keeps going.
func (n *Notepad) Read() string {
	content, err := n.store.Read()
	if err != nil {
		logger.Error("Failed to read notepad", "error", err)
		return readErrorSentinel
	}
	return content
}

// Write replaces the notepad content. Empty content never overwrites an
// existing notepad.
func (n *Notepad) Write(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("refusing to overwrite notepad with empty content")
	}
	return n.store.Write(content)
}

// AppendDelta appends a model-declared update under a timestamped section
// marker. Unlike Read, a failed store read is an error here: appending to
// anything but the real notepad content would corrupt it.
func (n *Notepad) AppendDelta(delta string) error {
	current, err := n.store.Read()
	if err != nil {
		return fmt.Errorf("failed to read notepad for append: %w", err)
	}
	entry := fmt.Sprintf("\n## Update %s\n%s\n", time.Now().Format(time.RFC3339), strings.TrimSpace(delta))
	return n.Write(current + entry)
}

// CompactIfNeeded replaces oversized content with a model-generated summary.
// On any failure the content is left untouched; there are no partial writes.
func (n *Notepad) CompactIfNeeded(ctx context.Context, summarize SummarizeFunc) error {
	content, err := n.store.Read()
	if err != nil {
		return fmt.Errorf("failed to read notepad for compaction: %w", err)
	}
	if len(content) <= n.maxChars {
		return nil
	}

	logger.Info("Notepad over size threshold, summarizing", "chars", len(content), "max", n.maxChars)

	summary, err := summarize(ctx, summarizationPrompt(content))
	if err != nil {
		return fmt.Errorf("notepad summarization failed: %w", err)
	}
	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("notepad summarization returned empty content")
	}

	replacement := summary + fmt.Sprintf("\n_Summarized at %s_\n", time.Now().Format(time.RFC3339))
	if err := n.store.Write(replacement); err != nil {
		return err
	}

	if n.debug {
		logDiffStats(content, replacement)
	}
	logger.Info("Notepad summarized", "chars", len(replacement))
	return nil
}

// summarizationPrompt enumerates exactly the sections that must survive
// compaction.
func summarizationPrompt(content string) string {
	var b strings.Builder
	b.WriteString("Please summarize the following game notes into a more concise format ")
	b.WriteString("while preserving all important information. The summary must keep these sections:\n")
	for _, section := range notepadSections {
		b.WriteString(fmt.Sprintf("- %s\n", section))
	}
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}

// logDiffStats reports how much text the summarization inserted and removed.
func logDiffStats(before, after string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)

	var inserted, deleted int
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(d.Text)
		}
	}
	logger.Debug("Notepad compaction diff", "inserted_chars", inserted, "deleted_chars", deleted)
}
