package index

import (
	"context"

	"google.golang.org/genai"

	"resumelens/internal/errors"
)

// Embedder computes vector embeddings for a batch of texts. Vectors
// for one batch share a dimension; callers must not mix embedders
// within a store.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder embeds text through the Gemini embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

var _ Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates an embedder for the given model, creating
// its own API client from the key.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"embedding requires an API key", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create embedding client", err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// EmbedTexts implements Embedder.
func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to embed content", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"embedding count does not match input count", nil).
			WithContext("want", len(texts)).
			WithContext("got", len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
