package engine

import (
	"fmt"
	"strings"

	"github.com/martoast/gemini-plays-pokemon/pkg/gametypes"
)

// BuildPrompt assembles the instructional template sent with every decision.
// When hasPrevious is true the backend receives two images (current frame
// first, previous frame second) so it can judge whether the last action had
// visible effect; the template explains that explicitly.
func BuildPrompt(notepad, thinking, lastAction string, hasPrevious bool) string {
	var b strings.Builder

	b.WriteString("You are an AI playing Pokémon Red. Your goal is to make progress in the game by exploring, catching Pokémon, and battling trainers.\n\n")

	b.WriteString("First, carefully analyze the current game screenshot:\n")
	b.WriteString("1. What screen are you on? (Title, dialogue, menu, name entry, overworld, battle, etc.)\n")
	b.WriteString("2. What UI elements are visible?\n")
	b.WriteString("3. What text is being displayed?\n")
	b.WriteString("4. What options are available to select?\n\n")

	if hasPrevious {
		b.WriteString("You are given TWO screenshots: the CURRENT frame first, then the PREVIOUS frame. ")
		if lastAction != "" {
			b.WriteString(fmt.Sprintf("Your last action was %s. ", lastAction))
		}
		b.WriteString("Compare the two frames to determine whether your last action had any visible effect. ")
		b.WriteString("If nothing changed, you may be blocked (e.g. walking into a wall) and should try something different.\n\n")
	} else {
		b.WriteString("This is your first decision; there is no previous frame to compare against.\n\n")
	}

	b.WriteString("Second, develop a strategic plan:\n")
	b.WriteString("- If you're on a name entry screen: Use directional buttons to navigate to letters, then press A to select them\n")
	b.WriteString("- If you're in a menu: Use UP/DOWN to navigate options, A to select\n")
	b.WriteString("- If you're in dialogue: Press A to advance or B to cancel\n")
	b.WriteString("- If you're in the overworld: Use directional buttons to move toward your goal\n\n")

	b.WriteString("NOTEPAD (your long-term memory):\n")
	b.WriteString(notepad)
	b.WriteString("\n\n")

	if thinking != "" {
		b.WriteString("RECENT THINKING (your reasoning from previous decisions):\n")
		b.WriteString(thinking)
		b.WriteString("\n\n")
	}

	b.WriteString("CURRENT CONTROLS:\n")
	b.WriteString("- A: Select/Confirm\n")
	b.WriteString("- B: Cancel/Back\n")
	b.WriteString("- START: Open menu\n")
	b.WriteString("- SELECT: Cycle through options\n")
	b.WriteString("- UP, DOWN, LEFT, RIGHT: Navigate menus and move character\n\n")

	b.WriteString("Based on the screenshot, decide what to do next. Think step-by-step about the best button to press.\n\n")

	b.WriteString("Always respond with valid button names only!\n")
	b.WriteString("Respond in the exact format:\n")
	b.WriteString("THINK: [your step-by-step reasoning]\n")
	b.WriteString("BUTTON: [button name]\n")
	b.WriteString("NOTEPAD: [new information worth remembering OR \"no change\"]\n\n")

	b.WriteString("For example:\n")
	b.WriteString("THINK: I'm at the name entry screen. The cursor is on the letter Q and I need R.\n")
	b.WriteString("BUTTON: RIGHT\n")
	b.WriteString("NOTEPAD: Naming my character RED at the name entry screen.\n\n")

	b.WriteString(fmt.Sprintf("Buttons must be one of these ONLY: %s\n", strings.Join(gametypes.ButtonNames(), ", ")))

	return b.String()
}
