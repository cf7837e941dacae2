package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"connect/internal/pkg/logx"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini is a Provider backed by the Gemini API.
type Gemini struct {
	models    contentGenerator
	modelName string
	logger    zerolog.Logger
}

// NewGemini creates a Gemini provider for the given API key and model.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return newGemini(client.Models, modelName), nil
}

func newGemini(models contentGenerator, modelName string) *Gemini {
	return &Gemini{
		models:    models,
		modelName: modelName,
		logger:    logx.Component("Assistant").With().Str("model", modelName).Logger(),
	}
}

// Complete implements Provider.
func (g *Gemini) Complete(ctx context.Context, prompt string, history []Turn) string {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		role := genai.Role(genai.RoleModel)
		if t.Role == RoleSelf {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	temperature := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       &temperature,
	}

	res, err := g.models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		g.logger.Error().Err(err).Int("history_turns", len(history)).Msg("Completion request failed.")
		return ""
	}

	return strings.TrimSpace(res.Text())
}

// Summarize implements Provider.
func (g *Gemini) Summarize(ctx context.Context, lines []string) string {
	prompt := SummaryPrompt + strings.Join(lines, "\n")

	res, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		g.logger.Error().Err(err).Int("lines", len(lines)).Msg("Summary request failed.")
		return ""
	}

	return strings.TrimSpace(res.Text())
}
