// Package engine implements the decision loop: given a screenshot, it loads
// the memory stores, calls the model backend, parses the reply, and persists
// the resulting memory updates. A cooldown gate bounds the backend call rate
// no matter how fast screenshots arrive.
package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/martoast/gemini-plays-pokemon/internal/llm"
	"github.com/martoast/gemini-plays-pokemon/internal/logger"
	"github.com/martoast/gemini-plays-pokemon/internal/memory"
	"github.com/martoast/gemini-plays-pokemon/pkg/gametypes"
)

// Engine drives one decision cycle per screenshot, at most once per cooldown
// window.
type Engine struct {
	backend    llm.Client
	notepad    *memory.Notepad
	thinking   *memory.ThinkingHistory
	comparison *memory.Comparison
	cooldown   time.Duration

	mu           sync.Mutex
	lastDecision time.Time

	// now is swappable for tests.
	now func() time.Time
}

// New creates a decision engine.
func New(backend llm.Client, notepad *memory.Notepad, thinking *memory.ThinkingHistory, comparison *memory.Comparison, cooldown time.Duration) *Engine {
	return &Engine{
		backend:    backend,
		notepad:    notepad,
		thinking:   thinking,
		comparison: comparison,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// Decide runs one decision cycle for the screenshot at screenshotPath.
//
// It returns (nil, nil) when the cooldown gate skips the cycle: no backend
// call, no state mutation. An unreadable screenshot or a failed backend call
// returns an error; both are non-fatal to the session. The decision clock
// advances after every completed backend call, success or failure, so
// malformed replies and backend errors are still throttled.
func (e *Engine) Decide(ctx context.Context, screenshotPath string) (*gametypes.Decision, error) {
	if !e.cooldownExpired() {
		logger.Debug("Decision skipped, cooldown active", "cooldown", e.cooldown)
		return nil, nil
	}

	current, err := os.ReadFile(screenshotPath)
	if err != nil {
		return nil, fmt.Errorf("screenshot not readable at %s: %w", screenshotPath, err)
	}

	notepadContent := e.notepad.Read()
	thinkingContent := e.thinking.Read()
	previous, lastAction, hasPrevious := e.comparison.Load()

	// The current frame becomes the baseline for the next cycle. Losing it
	// degrades the next comparison, nothing more.
	if err := e.comparison.SaveScreenshot(current); err != nil {
		logger.Warn("Failed to persist comparison baseline", "error", err)
	}

	images := [][]byte{current}
	if hasPrevious {
		images = append(images, previous)
	}
	prompt := BuildPrompt(notepadContent, thinkingContent, lastAction, hasPrevious)

	logger.Debug("Invoking model backend", "provider", e.backend.ProviderName(), "images", len(images))
	reply, genErr := e.backend.Generate(ctx, prompt, images)
	e.markDecision()
	if genErr != nil {
		return nil, fmt.Errorf("backend call failed: %w", genErr)
	}

	decision := ParseReply(reply)

	if decision.Reasoning != "" {
		logger.AIThinking(decision.Reasoning)
		if err := e.thinking.Append(decision.Reasoning); err != nil {
			logger.Warn("Failed to record thinking history", "error", err)
		}
	}

	if decision.HasAction() {
		logger.AIAction(*decision.Button)
		if err := e.comparison.SaveAction(decision.Button.String()); err != nil {
			logger.Warn("Failed to persist last action", "error", err)
		}
	}

	if decision.NotepadDelta != "" {
		logger.NotepadUpdate(decision.NotepadDelta)
		if err := e.notepad.AppendDelta(decision.NotepadDelta); err != nil {
			logger.Error("Failed to update notepad", "error", err)
		} else if err := e.notepad.CompactIfNeeded(ctx, e.summarize); err != nil {
			logger.Warn("Notepad compaction failed", "error", err)
		}
	}

	return decision, nil
}

// cooldownExpired reports whether enough time has passed since the last
// backend call.
func (e *Engine) cooldownExpired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now().Sub(e.lastDecision) >= e.cooldown
}

// markDecision advances the decision clock.
func (e *Engine) markDecision() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastDecision = e.now()
}

// summarize adapts the backend to the notepad's text-only summarization hook.
func (e *Engine) summarize(ctx context.Context, prompt string) (string, error) {
	return e.backend.Generate(ctx, prompt, nil)
}
