package port

import (
	"context"

	"eadrag/internal/domain"
)

// Retriever defines the interface for searching the indexed corpus.
type Retriever interface {
	// Search searches for chunks nearest to the query and returns top-k results.
	Search(ctx context.Context, query string, k int) ([]domain.Neighbor, error)
}
