package port

import "eadrag/internal/domain"

type Chunker interface {
	Chunk(section domain.SectionText) []domain.Chunk
}

// Extractor pulls section text out of one finding aid.
type Extractor interface {
	Extract(path string) ([]domain.SectionText, error)
}
