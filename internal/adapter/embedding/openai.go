package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"eadrag/internal/domain"
	"eadrag/internal/metrics"
)

const providerOpenAI = "openai"

// OpenAIEmbedder calls any OpenAI-compatible /embeddings endpoint
// (OpenAI, Ollama, llama.cpp server).
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	batchSize int
	logger    *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	BatchSize int
	Logger    *zap.Logger
}

// NewOpenAIEmbedder creates an OpenAI-compatible embedding provider.
func NewOpenAIEmbedder(cfg Config) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Embed embeds texts in batches and returns one vector per text, in order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))

		vectors, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}

	return all, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerOpenAI, e.model, "error").Inc()
		return nil, parseAPIError(err)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerOpenAI, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerOpenAI, e.model).Observe(duration.Seconds())

	e.logger.Debug("Embedded batch",
		zap.Int("texts", len(texts)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Duration("duration", duration),
	)

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: response index %d out of range", domain.ErrEmbeddingProvider, data.Index)
		}
		vectors[data.Index] = data.Embedding
	}

	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: no embedding returned for input %d", domain.ErrEmbeddingProvider, i)
		}
		if len(v) != e.dimension {
			return nil, fmt.Errorf("%w: model %s returned %d dimensions, configured %d",
				domain.ErrVectorDimMismatch, e.model, len(v), e.dimension)
		}
	}

	return vectors, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProvider

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	return fmt.Errorf("embedding request failed: %v: %w", err, wrap)
}
