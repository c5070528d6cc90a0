package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/semcache/ai"
	"github.com/poiesic/semcache/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// systemPrompt constrains the model to the retrieved context. Answers must
// come from the supplied chunks rather than the model's own knowledge, so
// cached responses stay faithful to the ingested documents.
const systemPrompt = "You are a helpful assistant. Answer the question using ONLY the context provided. " +
	"If the context does not contain the answer, say you do not know."

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	maxTokens   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/generation
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		maxTokens:   config.MaxTokens,
		maxAttempts: config.MaxAttempts,
		baseDelay:   config.BaseDelay,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// GenerateResponse answers the prompt grounded in the provided chunks.
// Chunks are rendered into the user message in the order given, which is the
// retrieval ranking.
func (g *Generator) GenerateResponse(ctx context.Context, prompt string, contextChunks []*core.DocumentChunk) (string, error) {
	g.logger.Debug("generating response", "promptLength", len(prompt), "contextChunks", len(contextChunks))

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildUserMessage(prompt, contextChunks)),
			},
		},
	}

	var answer string
	operation := func() error {
		response, err := g.client.GenerateContent(ctx, content,
			llms.WithTemperature(0.0),
			llms.WithMaxTokens(g.maxTokens),
		)
		if err != nil {
			return err
		}
		if len(response.Choices) < 1 || response.Choices[0].Content == "" {
			return fmt.Errorf("%w: no choices in completion", ai.ErrMalformedResponse)
		}
		answer = response.Choices[0].Content
		return nil
	}

	if err := ai.RetryWithBackoff(ctx, operation, g.maxAttempts, g.baseDelay); err != nil {
		g.logger.Error("failed to generate response", "err", err)
		return "", err
	}

	return answer, nil
}

// buildUserMessage renders the context chunks followed by the question.
func buildUserMessage(prompt string, contextChunks []*core.DocumentChunk) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, chunk := range contextChunks {
		sb.WriteString(chunk.Text)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(prompt)
	return sb.String()
}
