package retriever

import (
	"context"
	"fmt"
	"time"

	"eadrag/internal/domain"
	"eadrag/internal/metrics"
	"eadrag/internal/port"
)

// SemanticRetriever answers a query with the chunks whose vectors lie
// nearest to the query embedding. Chunk i of the corpus is entry i of the
// index.
type SemanticRetriever struct {
	index    port.VectorIndex
	embedder port.Embedder
	chunks   []domain.Chunk
}

func NewSemanticRetriever(
	index port.VectorIndex,
	embedder port.Embedder,
	chunks []domain.Chunk,
) *SemanticRetriever {
	return &SemanticRetriever{
		index:    index,
		embedder: embedder,
		chunks:   chunks,
	}
}

func (r *SemanticRetriever) Search(ctx context.Context, query string, k int) ([]domain.Neighbor, error) {
	if r.index == nil || r.embedder == nil {
		return nil, fmt.Errorf("semantic search not available: index or embedder missing")
	}
	if k <= 0 || r.index.Count() == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	hits, err := r.index.Search(ctx, embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	neighbors := make([]domain.Neighbor, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(r.chunks) {
			return nil, fmt.Errorf("%w: index position %d outside corpus of %d chunks",
				domain.ErrIndexStale, hit.Position, len(r.chunks))
		}
		neighbors = append(neighbors, domain.Neighbor{
			Position: hit.Position,
			Distance: hit.Distance,
			Chunk:    r.chunks[hit.Position],
		})
	}

	return neighbors, nil
}
