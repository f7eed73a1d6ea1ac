package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"eadrag/internal/adapter/store"
	"eadrag/internal/domain"
	"eadrag/internal/logger"
	"eadrag/internal/port"
)

// QueryUseCase answers a natural-language question from the index.
type QueryUseCase struct {
	retriever  port.Retriever
	aggregator *Aggregator
	responder  port.Responder
	tokenizer  port.Tokenizer
}

// NewQueryUseCase creates a new query use case.
func NewQueryUseCase(
	retriever port.Retriever,
	aggregator *Aggregator,
	responder port.Responder,
	tokenizer port.Tokenizer,
) *QueryUseCase {
	return &QueryUseCase{
		retriever:  retriever,
		aggregator: aggregator,
		responder:  responder,
		tokenizer:  tokenizer,
	}
}

// QueryOutput is the outcome of one query.
type QueryOutput struct {
	Result       domain.QueryResult
	Neighbors    []domain.Neighbor
	Response     string
	Model        string
	PromptTokens int
}

// Query retrieves the k nearest chunks, builds the prompt and hands it to
// the responder.
func (u *QueryUseCase) Query(ctx context.Context, query string, k int) (*QueryOutput, error) {
	log := logger.FromContext(ctx)

	neighbors, err := u.retriever.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result, err := u.aggregator.Aggregate(query, neighbors)
	if err != nil {
		return nil, err
	}

	out := &QueryOutput{
		Result:    result,
		Neighbors: neighbors,
		Model:     u.responder.ModelName(),
	}
	if u.tokenizer != nil {
		out.PromptTokens = u.tokenizer.CountTokens(result.Prompt)
	}

	log.Debug("Prompt assembled",
		zap.Int("neighbors", len(neighbors)),
		zap.Int("collections", len(result.Collections)),
		zap.Int("prompt_tokens", out.PromptTokens),
	)

	response, err := u.responder.Respond(ctx, result.Prompt)
	if err != nil {
		return nil, fmt.Errorf("respond with %s: %w", out.Model, err)
	}
	out.Response = response

	return out, nil
}

// OpenPairedIndex opens the index at path and refuses it unless it was
// built from chunks with the given embedder.
func OpenPairedIndex(path string, chunks []domain.Chunk, embedder port.Embedder) (*store.BoltIndex, error) {
	idx, err := store.OpenBoltIndex(path)
	if err != nil {
		return nil, err
	}

	err = store.CheckManifest(idx.Manifest(), store.Expectation{
		CorpusFingerprint: store.Fingerprint(chunks),
		ChunkCount:        len(chunks),
		Model:             embedder.ModelName(),
		Dimension:         embedder.Dimension(),
	})
	if err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// RemediationHint suggests the command that fixes err, if any.
func RemediationHint(err error) string {
	switch {
	case errors.Is(err, domain.ErrCorpusNotFound):
		return "run 'eadrag extract' to build the corpus"
	case errors.Is(err, domain.ErrIndexNotFound),
		errors.Is(err, domain.ErrIndexStale),
		errors.Is(err, domain.ErrSchemaMismatch):
		return "run 'eadrag index' to rebuild the index"
	case errors.Is(err, domain.ErrIndexUnwritable):
		return "check that storage.dir is writable and no other eadrag process holds the index"
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return "set embedding.dimension to the model's output size and run 'eadrag index'"
	case errors.Is(err, domain.ErrEmbeddingProvider):
		return "check embedding.base_url and that the embedding model is served"
	case errors.Is(err, domain.ErrGenerationProvider):
		return "check generate.base_url and that the generative model is served"
	case errors.Is(err, domain.ErrMissingCredential):
		return "export the variable named by generate.api_key_env"
	}
	return ""
}
