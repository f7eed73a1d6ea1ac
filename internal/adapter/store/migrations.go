package store

import (
	"fmt"

	"eadrag/internal/domain"
)

// CurrentSchemaVersion is the current index schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

// Expectation describes the corpus and embedder an index is about to serve.
type Expectation struct {
	CorpusFingerprint string
	ChunkCount        int
	Model             string
	Dimension         int
}

// CheckManifest decides whether an index built under m can answer queries
// for the expected corpus and embedder.
func CheckManifest(m domain.IndexManifest, want Expectation) error {
	switch {
	case m.SchemaVersion == 0:
		return fmt.Errorf("%w: index has no build manifest, rebuild it", domain.ErrIndexStale)
	case m.SchemaVersion > CurrentSchemaVersion:
		return fmt.Errorf("%w: index created by newer version (v%d > v%d)",
			domain.ErrSchemaMismatch, m.SchemaVersion, CurrentSchemaVersion)
	case m.SchemaVersion < CurrentSchemaVersion:
		return fmt.Errorf("%w: schema upgrade from v%d to v%d requires a rebuild",
			domain.ErrSchemaMismatch, m.SchemaVersion, CurrentSchemaVersion)
	}

	if err := m.Matches(want.CorpusFingerprint, want.ChunkCount); err != nil {
		return err
	}

	if want.Model != "" && m.Model != want.Model {
		return fmt.Errorf("%w: index built with model %q, embedder is %q",
			domain.ErrIndexStale, m.Model, want.Model)
	}
	if want.Dimension != 0 && m.Dimension != want.Dimension {
		return fmt.Errorf("%w: index has %d dimensions, embedder produces %d",
			domain.ErrVectorDimMismatch, m.Dimension, want.Dimension)
	}

	return nil
}
