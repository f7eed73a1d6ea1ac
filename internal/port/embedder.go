package port

import (
	"context"

	"eadrag/internal/domain"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorIndex is a positional nearest-neighbor index.
// Entry i is the vector of corpus chunk i.
type VectorIndex interface {
	// Search returns up to k hits ordered by ascending squared Euclidean distance.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of vectors in the index.
	Count() int

	// Manifest describes the build the index came from.
	Manifest() domain.IndexManifest
}

// VectorHit is a search result.
type VectorHit struct {
	Position int     // Corpus position
	Distance float32 // Squared Euclidean distance (lower is better)
}

// IndexWriter replaces a vector index wholesale.
type IndexWriter interface {
	Rebuild(manifest domain.IndexManifest, vectors [][]float32) error
}
