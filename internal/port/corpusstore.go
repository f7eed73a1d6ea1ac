package port

import "eadrag/internal/domain"

// CorpusStore persists the whole ordered chunk sequence.
// There is no append: Save replaces, Load reads everything.
type CorpusStore interface {
	Save(chunks []domain.Chunk) error

	Load() ([]domain.Chunk, error)
}
