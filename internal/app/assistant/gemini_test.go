package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text string
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.text, genai.RoleModel),
		}},
	}, nil
}

func TestGemini_CompleteMapsHistoryRoles(t *testing.T) {
	gen := &fakeGenerator{text: "  Sure thing.  "}
	g := newGemini(gen, "gemini-test")

	out := g.Complete(context.Background(), "@ai help", []Turn{
		{Role: RoleOther, Text: "from bob"},
		{Role: RoleSelf, Text: "from me"},
	})

	assert.Equal(t, "Sure thing.", out)
	assert.Equal(t, "gemini-test", gen.model)

	require.Len(t, gen.contents, 3)
	assert.Equal(t, string(genai.RoleModel), string(gen.contents[0].Role))
	assert.Equal(t, "from bob", gen.contents[0].Parts[0].Text)
	assert.Equal(t, string(genai.RoleUser), string(gen.contents[1].Role))
	assert.Equal(t, "@ai help", gen.contents[2].Parts[0].Text)

	require.NotNil(t, gen.config)
	require.NotNil(t, gen.config.Temperature)
	assert.InDelta(t, 0.7, *gen.config.Temperature, 0.0001)
	assert.Equal(t, SystemInstruction, gen.config.SystemInstruction.Parts[0].Text)
}

func TestGemini_CompleteFailureIsEmpty(t *testing.T) {
	g := newGemini(&fakeGenerator{err: errors.New("quota exceeded")}, "gemini-test")

	assert.Empty(t, g.Complete(context.Background(), "@ai hi", nil))
}

func TestGemini_Summarize(t *testing.T) {
	gen := &fakeGenerator{text: "- one\n- two\n- three"}
	g := newGemini(gen, "gemini-test")

	out := g.Summarize(context.Background(), []string{"Bob: hi", "Alice: hello"})

	assert.Equal(t, "- one\n- two\n- three", out)
	require.Len(t, gen.contents, 1)
	assert.Equal(t, SummaryPrompt+"Bob: hi\nAlice: hello", gen.contents[0].Parts[0].Text)
}

func TestGemini_SummarizeFailureIsEmpty(t *testing.T) {
	g := newGemini(&fakeGenerator{err: errors.New("unavailable")}, "gemini-test")

	assert.Empty(t, g.Summarize(context.Background(), []string{"Bob: hi"}))
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-test")

	assert.Error(t, err)
}
