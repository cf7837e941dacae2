package assistant

import (
	"context"
	"fmt"
	"strings"
)

// Echo is a local Provider for development without a Gemini key. It answers
// deterministically and never fails.
type Echo struct{}

// NewEcho returns the local provider.
func NewEcho() *Echo {
	return &Echo{}
}

// Complete implements Provider.
func (Echo) Complete(_ context.Context, prompt string, history []Turn) string {
	return fmt.Sprintf("Assistant (offline) noted %q with %d earlier messages in context.", strings.TrimSpace(prompt), len(history))
}

// Summarize implements Provider. It lists up to the last three transcript lines.
func (Echo) Summarize(_ context.Context, lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	start := max(len(lines)-3, 0)

	var b strings.Builder
	for i, line := range lines[start:] {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(line)
	}
	return b.String()
}
