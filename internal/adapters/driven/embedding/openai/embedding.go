// Package openai provides an EmbeddingService backed by the OpenAI
// embeddings API. Requests are rate limited client-side; a missing API
// key disables the service so the pipeline degrades to lexical-only.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Defaults for the embedding provider.
const (
	DefaultModel      = string(openai.SmallEmbedding3)
	DefaultDimensions = 1536

	// defaultRequestsPerMinute stays under the provider's entry-tier
	// quota with headroom for concurrent ingestion workers.
	defaultRequestsPerMinute = 300
)

// Service calls the OpenAI embeddings endpoint.
type Service struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	limiter    *rate.Limiter
}

// New creates the embedding service. An empty API key is an error so
// callers can fall back to lexical-only mode explicitly.
func New(apiKey, model string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", domain.ErrEmbeddingUnavailable)
	}
	if model == "" {
		model = DefaultModel
	}

	perSecond := rate.Limit(float64(defaultRequestsPerMinute) / 60.0)
	return &Service{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: DefaultDimensions,
		limiter:    rate.NewLimiter(perSecond, defaultRequestsPerMinute/60),
	}, nil
}

// Embed generates an embedding for the text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int { return s.dimensions }

// ModelName returns the configured model identifier.
func (s *Service) ModelName() string { return string(s.model) }

// Close releases resources. The HTTP client needs no teardown.
func (s *Service) Close() error { return nil }
