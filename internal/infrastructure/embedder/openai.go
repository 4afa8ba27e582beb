package embedder

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"NewsRecommender/internal/ports"
)

// titleRepeat mirrors the lexical vectorizer: the title is weighted into the
// embedded text the same way it is weighted into term frequencies.
const titleRepeat = 3

// OpenAIEmbedder turns article text into dense vectors via the OpenAI
// embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

var _ ports.Embedder = (*OpenAIEmbedder)(nil)

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  resolveModel(model),
	}
}

// Embed vectorizes one text fragment.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response carried no data")
	}

	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}
	return vector, nil
}

// EmbeddingText builds the canonical input for an article vector, with the
// title repeated so headline terms dominate.
func EmbeddingText(title, content string) string {
	parts := make([]string, 0, titleRepeat+1)
	for i := 0; i < titleRepeat; i++ {
		parts = append(parts, title)
	}
	parts = append(parts, content)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func resolveModel(name string) openai.EmbeddingModel {
	switch name {
	case "text-search-ada-doc-001":
		return openai.AdaSearchDocument
	case "text-similarity-ada-001":
		return openai.AdaSimilarity
	default:
		return openai.AdaEmbeddingV2
	}
}
