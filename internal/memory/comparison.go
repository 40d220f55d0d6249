package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Comparison holds the previous decision cycle's screenshot and action so the
// engine can ask the model whether the last button press had visible effect.
// Both pieces are overwritten every cycle and absent before the first one.
type Comparison struct {
	dir string
}

// NewComparison creates a comparison store rooted at dir.
func NewComparison(dir string) *Comparison {
	return &Comparison{dir: dir}
}

// screenshotPath is the fixed location of the previous screenshot copy.
func (c *Comparison) screenshotPath() string {
	return filepath.Join(c.dir, "previous.png")
}

// actionPath is the fixed location of the last-action marker file.
func (c *Comparison) actionPath() string {
	return filepath.Join(c.dir, "last_action.txt")
}

// Load returns the previous screenshot bytes and last action name. ok is
// false on the first decision cycle, when no baseline exists yet.
func (c *Comparison) Load() (image []byte, lastAction string, ok bool) {
	image, err := os.ReadFile(c.screenshotPath())
	if err != nil {
		return nil, "", false
	}
	raw, err := os.ReadFile(c.actionPath())
	if err != nil {
		// Screenshot without an action still allows the two-image prompt.
		return image, "", true
	}
	return image, strings.TrimSpace(string(raw)), true
}

// SaveScreenshot overwrites the comparison baseline with the current frame.
func (c *Comparison) SaveScreenshot(data []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create comparison dir: %w", err)
	}
	if err := os.WriteFile(c.screenshotPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to save comparison screenshot: %w", err)
	}
	return nil
}

// SaveAction records the button chosen this cycle for the next comparison.
func (c *Comparison) SaveAction(name string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create comparison dir: %w", err)
	}
	if err := os.WriteFile(c.actionPath(), []byte(name+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to save last action: %w", err)
	}
	return nil
}
