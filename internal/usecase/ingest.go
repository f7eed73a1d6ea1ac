package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"eadrag/internal/domain"
	"eadrag/internal/logger"
	"eadrag/internal/metrics"
	"eadrag/internal/port"
)

// ProgressFunc reports done out of total units of work.
type ProgressFunc func(done, total int)

// IngestUseCase turns a directory of finding aids into the chunk corpus.
type IngestUseCase struct {
	walker    port.FileWalker
	extractor port.Extractor
	chunker   port.Chunker
	corpus    port.CorpusStore
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	walker port.FileWalker,
	extractor port.Extractor,
	chunker port.Chunker,
	corpus port.CorpusStore,
) *IngestUseCase {
	return &IngestUseCase{
		walker:    walker,
		extractor: extractor,
		chunker:   chunker,
		corpus:    corpus,
	}
}

// IngestResult contains the results of an ingest run.
type IngestResult struct {
	DocumentsProcessed int
	DocumentsFailed    int
	ChunksBySection    map[domain.Section]int
	Chunks             []domain.Chunk
	Saved              bool
	Errors             []string
}

// ChunksCreated returns the total number of chunks in the corpus.
func (r *IngestResult) ChunksCreated() int {
	return len(r.Chunks)
}

// Ingest extracts and chunks every finding aid under dir, in path order,
// and replaces the stored corpus. A document that fails to parse
// contributes no chunks. A failed save is logged and reported in the
// result; the in-memory chunks are still returned.
func (u *IngestUseCase) Ingest(ctx context.Context, dir string, progress ProgressFunc) (*IngestResult, error) {
	log := logger.FromContext(ctx)

	files, err := u.walker.Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk collections directory: %w", err)
	}

	result := &IngestResult{
		ChunksBySection: make(map[domain.Section]int),
		Chunks:          []domain.Chunk{},
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sections, err := u.extractor.Extract(file.Path)
		if err != nil {
			log.Warn("Skipping finding aid",
				zap.String("file", filepath.Base(file.Path)),
				zap.Error(err),
			)
			metrics.DocumentsProcessedTotal.WithLabelValues("failed").Inc()
			result.DocumentsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, err))
		} else {
			for _, sec := range sections {
				chunks := u.chunker.Chunk(sec)
				result.Chunks = append(result.Chunks, chunks...)
				result.ChunksBySection[sec.Section] += len(chunks)
				metrics.ChunksCreatedTotal.WithLabelValues(string(sec.Section)).Add(float64(len(chunks)))
			}
			metrics.DocumentsProcessedTotal.WithLabelValues("ok").Inc()
			result.DocumentsProcessed++
		}

		if progress != nil {
			progress(i+1, len(files))
		}
	}

	if err := u.corpus.Save(result.Chunks); err != nil {
		log.Error("Failed to save corpus", zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("save corpus: %v", err))
	} else {
		result.Saved = true
	}

	log.Info("Extraction complete",
		zap.Int("documents", result.DocumentsProcessed),
		zap.Int("failed", result.DocumentsFailed),
		zap.Int("chunks", len(result.Chunks)),
	)

	return result, nil
}
