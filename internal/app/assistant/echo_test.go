package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEcho_Complete(t *testing.T) {
	out := NewEcho().Complete(context.Background(), " @ai status? ", []Turn{{Role: RoleSelf, Text: "x"}})

	assert.Equal(t, `Assistant (offline) noted "@ai status?" with 1 earlier messages in context.`, out)
}

func TestEcho_Summarize(t *testing.T) {
	e := NewEcho()

	assert.Empty(t, e.Summarize(context.Background(), nil))
	assert.Equal(t, "• b\n• c\n• d", e.Summarize(context.Background(), []string{"a", "b", "c", "d"}))
}
