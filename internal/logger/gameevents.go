package logger

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/martoast/gemini-plays-pokemon/pkg/gametypes"
)

// Per-button colors for action log lines. Directions share a color, as do the
// two menu buttons.
var buttonStyles = map[gametypes.Button]lipgloss.Style{
	gametypes.ButtonA:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),  // Green
	gametypes.ButtonB:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")), // Red
	gametypes.ButtonStart:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),  // Blue
	gametypes.ButtonSelect: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),  // Blue
	gametypes.ButtonUp:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),  // Cyan
	gametypes.ButtonDown:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),  // Cyan
	gametypes.ButtonLeft:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),  // Cyan
	gametypes.ButtonRight:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),  // Cyan
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))

// Banner logs a centered section header, used at startup and on new sessions.
func Banner(message string) {
	line := strings.Repeat("=", 80)
	pad := (80 - len(message)) / 2
	if pad < 0 {
		pad = 0
	}
	Logger.Info(headerStyle.Render(line))
	Logger.Info(headerStyle.Render(strings.Repeat(" ", pad) + message))
	Logger.Info(headerStyle.Render(line))
}

// AIAction logs the button press chosen by the model.
func AIAction(button gametypes.Button) {
	name := button.String()
	if style, ok := buttonStyles[button]; ok {
		name = style.Render(name)
	}
	Logger.Info("👆 AI ACTION", "button", name, "code", button.Code())
}

// AIThinking logs the model's stated reasoning for the current decision.
func AIThinking(thinking string) {
	if thinking == "" {
		return
	}
	Logger.Info("🤔 AI THINKING", "thought", truncate(thinking, 200))
}

// NotepadUpdate logs a persistent memory update.
func NotepadUpdate(delta string) {
	if delta == "" {
		return
	}
	Logger.Info("📝 NOTEPAD UPDATE", "delta", truncate(delta, 150))
}

// MaskKey renders a credential safe for logging: first five and last three
// characters with the middle elided.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:5] + "..." + key[len(key)-3:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
