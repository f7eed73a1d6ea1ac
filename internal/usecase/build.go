package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eadrag/internal/adapter/store"
	"eadrag/internal/domain"
	"eadrag/internal/logger"
	"eadrag/internal/metrics"
	"eadrag/internal/port"
)

const defaultBuildBatch = 32

// BuildIndexUseCase embeds the corpus and writes the vector index.
type BuildIndexUseCase struct {
	corpus    port.CorpusStore
	embedder  port.Embedder
	index     port.IndexWriter
	batchSize int
}

// NewBuildIndexUseCase creates a new build use case.
func NewBuildIndexUseCase(
	corpus port.CorpusStore,
	embedder port.Embedder,
	index port.IndexWriter,
	batchSize int,
) *BuildIndexUseCase {
	if batchSize <= 0 {
		batchSize = defaultBuildBatch
	}
	return &BuildIndexUseCase{
		corpus:    corpus,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
	}
}

// BuildResult describes a finished build.
type BuildResult struct {
	Manifest domain.IndexManifest
	Duration time.Duration
}

// LoadCorpus reads the stored corpus. A missing or unreadable corpus is
// logged and treated as empty.
func (u *BuildIndexUseCase) LoadCorpus(ctx context.Context) []domain.Chunk {
	chunks, err := u.corpus.Load()
	if err != nil {
		logger.FromContext(ctx).Warn("Could not load corpus, continuing with an empty one",
			zap.Error(err),
		)
		return []domain.Chunk{}
	}
	return chunks
}

// Build embeds chunks in order and rebuilds the index so that entry i holds
// the vector of chunks[i]. An embedding failure aborts the build and leaves
// the previous index in place.
func (u *BuildIndexUseCase) Build(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) (*BuildResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += u.batchSize {
		end := min(i+u.batchSize, len(chunks))

		texts := make([]string, end-i)
		for j, c := range chunks[i:end] {
			texts[j] = c.Text
		}

		batch, err := u.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", i, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
				domain.ErrEmbeddingProvider, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)

		if progress != nil {
			progress(end, len(chunks))
		}
	}

	manifest := domain.IndexManifest{
		BuildID:           uuid.NewString(),
		CorpusFingerprint: store.Fingerprint(chunks),
		ChunkCount:        len(chunks),
		Dimension:         u.embedder.Dimension(),
		Model:             u.embedder.ModelName(),
		BuiltAt:           time.Now().UTC(),
	}

	if err := u.index.Rebuild(manifest, vectors); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}
	manifest.SchemaVersion = store.CurrentSchemaVersion
	metrics.IndexEntries.Set(float64(len(vectors)))

	result := &BuildResult{Manifest: manifest, Duration: time.Since(start)}
	log.Info("Index built",
		zap.String("build_id", manifest.BuildID),
		zap.Int("entries", manifest.ChunkCount),
		zap.String("model", manifest.Model),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}
