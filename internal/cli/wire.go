package cli

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"eadrag/config"
	"eadrag/internal/adapter/analyzer"
	"eadrag/internal/adapter/cache"
	"eadrag/internal/adapter/chunker"
	"eadrag/internal/adapter/ead"
	"eadrag/internal/adapter/embedding"
	"eadrag/internal/adapter/fs"
	"eadrag/internal/adapter/llm"
	"eadrag/internal/adapter/store"
	"eadrag/internal/port"
	"eadrag/internal/usecase"
)

// newEmbedder builds the configured embedding provider, behind the bbolt
// cache when enabled. The returned close func is never nil.
func newEmbedder(cfg *config.Config, root string) (port.Embedder, func() error, error) {
	noop := func() error { return nil }

	var embedder port.Embedder
	switch cfg.Embedding.Provider {
	case "openai":
		var apiKey string
		if cfg.Embedding.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.Embedding.APIKeyEnv)
		}
		embedder = embedding.NewOpenAIEmbedder(embedding.Config{
			APIKey:    apiKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			BatchSize: cfg.Embedding.BatchSize,
			Logger:    log,
		})
	case "hash":
		// Local and deterministic; needs no model server.
		return embedding.NewHashEmbedder(cfg.Embedding.Dimension, analyzer.NewTokenizer()), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}

	if !cfg.Embedding.Cache {
		return embedder, noop, nil
	}

	cached, err := cache.NewCachedEmbedder(embedder, cfg.CachePath(root), log)
	if err != nil {
		log.Warn("Embedding cache unavailable, embedding without it", zap.Error(err))
		return embedder, noop, nil
	}
	return cached, cached.Close, nil
}

// newResponder picks the prompt strategy, or the generative model when
// generate is set. A missing credential is returned as an error.
func newResponder(cfg *config.Config, generate bool) (port.Responder, error) {
	if !generate {
		return llm.NewPromptResponder(), nil
	}
	responder, err := llm.NewOpenAIResponder(llm.Config{
		BaseURL:      cfg.Generate.BaseURL,
		Model:        cfg.Generate.Model,
		APIKeyEnv:    cfg.Generate.APIKeyEnv,
		MaxNewTokens: cfg.Generate.MaxNewTokens,
		Temperature:  cfg.Generate.Temperature,
		Timeout:      time.Duration(cfg.Generate.TimeoutSec) * time.Second,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	return responder, nil
}

func newIngestUseCase(cfg *config.Config, root string) *usecase.IngestUseCase {
	return usecase.NewIngestUseCase(
		fs.NewWalker(cfg.Collections.Includes, cfg.Collections.Excludes),
		ead.NewExtractor(),
		chunker.NewWindowChunker(cfg.Chunking.WindowChars),
		store.NewJSONCorpusStore(cfg.CorpusPath(root)),
	)
}

// logFailure logs err with a remediation hint where one applies.
func logFailure(msg string, err error) {
	fields := []zap.Field{zap.Error(err)}
	if hint := usecase.RemediationHint(err); hint != "" {
		fields = append(fields, zap.String("hint", hint))
	}
	log.Error(msg, fields...)
}
