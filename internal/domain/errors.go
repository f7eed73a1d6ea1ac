package domain

import "errors"

var (
	// ErrCorpusNotFound signals a missing corpus file.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrIndexNotFound signals a missing vector index file.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrIndexUnwritable signals an index file that cannot be opened for building.
	ErrIndexUnwritable = errors.New("vector index cannot be written")
	// ErrIndexStale signals an index that was not built from the current corpus.
	ErrIndexStale = errors.New("vector index does not match corpus")
	// ErrSchemaMismatch signals an index written by an incompatible version.
	ErrSchemaMismatch = errors.New("index schema mismatch")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a generative model failure.
	ErrGenerationProvider = errors.New("generation provider error")
	// ErrMissingCredential signals an unset credential environment variable.
	ErrMissingCredential = errors.New("missing credential")
)
