package engine

import (
	"fmt"
	"strings"

	"llmgames/game"
)

// buildPrompt composes the full move request: who the model is playing,
// the rules, the rendered board, strategy hints, corrective feedback
// from earlier rejected attempts, and the structured output format.
func buildPrompt(adapter game.Adapter, state *game.State, feedback []string) (string, error) {
	board, err := adapter.RenderForPrompt(state)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are playing %s. You are %q. Your opponent is %q.\n\n",
		adapter.GameType(), adapter.CurrentPlayerLabel(state), adapter.OpponentLabel(state))

	b.WriteString("Rules:\n")
	b.WriteString(adapter.Rules())
	b.WriteString("\n\nCurrent board:\n")
	b.WriteString(board)
	b.WriteString("\nStrategy hints:\n")
	b.WriteString(adapter.StrategyHints())
	b.WriteString("\n\n")

	if len(feedback) > 0 {
		b.WriteString("Your previous attempts were rejected:\n")
		for _, reason := range feedback {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
		b.WriteString("Choose a different move; do not repeat these mistakes.\n\n")
	}

	b.WriteString("It is your turn. Pick your next move.\n")
	b.WriteString(adapter.Schema().Instructions())
	return b.String(), nil
}
