package openai

import (
	"testing"

	"github.com/poiesic/semcache/core"
	"github.com/stretchr/testify/assert"
)

func TestBuildUserMessage(t *testing.T) {
	t.Run("no context", func(t *testing.T) {
		msg := buildUserMessage("What is Go?", nil)

		assert.Equal(t, "Context:\nQuestion: What is Go?", msg)
	})

	t.Run("preserves chunk order", func(t *testing.T) {
		chunks := []*core.DocumentChunk{
			{Text: "first"},
			{Text: "second"},
		}

		msg := buildUserMessage("What is Go?", chunks)

		assert.Equal(t, "Context:\nfirst\n\nsecond\n\nQuestion: What is Go?", msg)
	})
}
