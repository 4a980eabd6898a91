package orchestrator

import (
	"fmt"
	"strings"

	"askpilot/internal/core"
)

// FormatHistory renders caller-supplied turns as role-tagged lines for the
// pipeline prompts. Turns whose content is blank after trimming are skipped.
func FormatHistory(history []core.ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(t.Role), content))
	}
	return strings.Join(lines, "\n")
}
