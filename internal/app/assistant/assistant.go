/*
Package assistant defines the Assistant Provider used by conversations and its
implementations: Gemini through google.golang.org/genai, and a local Echo provider for
development without an API key.

Providers never return errors to callers. Failures are logged and reported as an empty
string, which conversations replace with their fallback text.
*/
package assistant

import "context"

// Role tags a history turn relative to the user who invoked the assistant.
type Role string

const (
	// RoleSelf marks turns written by the invoking user.
	RoleSelf Role = "self"

	// RoleOther marks turns written by anyone else, the assistant included.
	RoleOther Role = "other"
)

// Turn is one entry of the rolling context sent with a completion request.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Provider produces completions and summaries. Both calls block until the provider answers.
type Provider interface {
	// Complete answers prompt given the ordered history. It returns "" on failure.
	Complete(ctx context.Context, prompt string, history []Turn) string

	// Summarize condenses ordered transcript lines. It returns "" on failure.
	Summarize(ctx context.Context, lines []string) string
}

// SystemInstruction frames every completion request.
const SystemInstruction = "You are Acertax Assistant, an AI expert integrated into the Acertax internal chat app. " +
	"You help employees with productivity, summaries, and professional advice. " +
	"Keep responses concise and professional."

// SummaryPrompt prefixes the transcript of a summarize request.
const SummaryPrompt = "Summarize the following internal chat conversation in 3 bullet points:\n\n"
