package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"eadrag/internal/adapter/analyzer"
	"eadrag/internal/adapter/embedding"
	"eadrag/internal/domain"
)

const volunteerEAD = `<?xml version="1.0" encoding="UTF-8"?>
<ead><archdesc level="collection"><bioghist><p>John Doe enlisted in the First Washington Volunteer Infantry in 1898.</p></bioghist><scopecontent><p>Letters written from the Philippines during the Spanish-American War.</p></scopecontent></archdesc></ead>`

const railroadEAD = `<?xml version="1.0" encoding="UTF-8"?>
<ead><archdesc level="collection"><scopecontent><p>Freight tariffs, timetables and correspondence of the Northern Pacific Railway.</p></scopecontent><controlaccess><subject>Railroads -- Washington (State)</subject></controlaccess></archdesc></ead>`

func writeCollections(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func hashEmbedder() *embedding.HashEmbedder {
	return embedding.NewHashEmbedder(128, analyzer.NewTokenizer())
}

func testChunk(file string, section domain.Section, body string) domain.Chunk {
	return domain.Chunk{
		Text:     "Collection: " + file + "\n" + body,
		Metadata: domain.ChunkMetadata{File: file, Section: section},
	}
}

type failingStore struct{}

func (failingStore) Save([]domain.Chunk) error { return errors.New("disk full") }

func (failingStore) Load() ([]domain.Chunk, error) {
	return nil, domain.ErrCorpusNotFound
}

type failingEmbedder struct{ dim int }

func (e failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, domain.ErrEmbeddingProvider
}
func (e failingEmbedder) Dimension() int    { return e.dim }
func (e failingEmbedder) ModelName() string { return "failing" }
