package usecase

import (
	"context"
	"errors"

	"eadrag/internal/adapter/store"
	"eadrag/internal/domain"
	"eadrag/internal/port"
)

// StatusUseCase reports on the corpus and index pair.
type StatusUseCase struct {
	corpus    port.CorpusStore
	indexPath string
	embedder  port.Embedder
}

func NewStatusUseCase(corpus port.CorpusStore, indexPath string, embedder port.Embedder) *StatusUseCase {
	return &StatusUseCase{
		corpus:    corpus,
		indexPath: indexPath,
		embedder:  embedder,
	}
}

// StatusReport describes the persisted artifacts.
type StatusReport struct {
	CorpusChunks      int
	CorpusFingerprint string
	ChunksBySection   map[domain.Section]int
	CorpusErr         error

	IndexPath string
	Manifest  *domain.IndexManifest
	IndexErr  error
}

// Ready reports whether queries can be answered.
func (r *StatusReport) Ready() bool {
	return r.CorpusErr == nil && r.IndexErr == nil
}

func (u *StatusUseCase) Status(ctx context.Context) *StatusReport {
	report := &StatusReport{
		IndexPath:       u.indexPath,
		ChunksBySection: make(map[domain.Section]int),
	}

	chunks, err := u.corpus.Load()
	if err != nil {
		report.CorpusErr = err
	} else {
		report.CorpusChunks = len(chunks)
		report.CorpusFingerprint = store.Fingerprint(chunks)
		for _, c := range chunks {
			report.ChunksBySection[c.Metadata.Section]++
		}
	}

	idx, err := store.OpenBoltIndex(u.indexPath)
	if err != nil {
		report.IndexErr = err
		return report
	}
	defer idx.Close()

	manifest := idx.Manifest()
	report.Manifest = &manifest

	if report.CorpusErr != nil {
		report.IndexErr = errors.New("cannot verify index without a corpus")
		return report
	}
	report.IndexErr = store.CheckManifest(manifest, store.Expectation{
		CorpusFingerprint: report.CorpusFingerprint,
		ChunkCount:        report.CorpusChunks,
		Model:             u.embedder.ModelName(),
		Dimension:         u.embedder.Dimension(),
	})
	return report
}
