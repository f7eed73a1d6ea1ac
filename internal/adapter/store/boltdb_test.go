package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"eadrag/internal/domain"
)

func testManifest(n, dim int) domain.IndexManifest {
	return domain.IndexManifest{
		BuildID:           "build-1",
		CorpusFingerprint: "fp",
		ChunkCount:        n,
		Dimension:         dim,
		Model:             "test",
		BuiltAt:           time.Now().UTC().Truncate(time.Second),
	}
}

func TestBoltIndex_RebuildAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ead_index.db")

	idx, err := CreateBoltIndex(path)
	require.NoError(t, err)

	vectors := [][]float32{
		{0, 0},
		{1, 0},
		{0, 2},
	}
	require.NoError(t, idx.Rebuild(testManifest(3, 2), vectors))
	assert.Equal(t, 3, idx.Count())
	require.NoError(t, idx.Close())

	reopened, err := OpenBoltIndex(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 3, reopened.Count())
	m := reopened.Manifest()
	assert.Equal(t, CurrentSchemaVersion, m.SchemaVersion)
	assert.Equal(t, "fp", m.CorpusFingerprint)
	assert.Equal(t, 3, m.ChunkCount)

	for i, want := range vectors {
		got, ok := reopened.Vector(i)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestBoltIndex_RebuildReplaces(t *testing.T) {
	idx, err := CreateBoltIndex(filepath.Join(t.TempDir(), "ead_index.db"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Rebuild(testManifest(3, 1), [][]float32{{1}, {2}, {3}}))
	require.NoError(t, idx.Rebuild(testManifest(1, 1), [][]float32{{9}}))

	assert.Equal(t, 1, idx.Count())
	v, ok := idx.Vector(0)
	require.True(t, ok)
	assert.Equal(t, []float32{9}, v)
	_, ok = idx.Vector(1)
	assert.False(t, ok)
}

func TestBoltIndex_RebuildValidates(t *testing.T) {
	idx, err := CreateBoltIndex(filepath.Join(t.TempDir(), "ead_index.db"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Rebuild(testManifest(1, 2), [][]float32{{1, 1}}))

	err = idx.Rebuild(testManifest(2, 2), [][]float32{{1, 1}})
	assert.Error(t, err)

	err = idx.Rebuild(testManifest(1, 2), [][]float32{{1, 1, 1}})
	assert.True(t, errors.Is(err, domain.ErrVectorDimMismatch))

	// failed rebuilds leave the previous build in place
	assert.Equal(t, 1, idx.Count())
}

func TestBoltIndex_Search(t *testing.T) {
	idx, err := CreateBoltIndex(filepath.Join(t.TempDir(), "ead_index.db"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Rebuild(testManifest(4, 2), [][]float32{
		{5, 5},
		{1, 0},
		{0, 1},
		{0, 0},
	}))

	ctx := context.Background()

	hits, err := idx.Search(ctx, []float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 3, hits[0].Position)
	assert.Equal(t, float32(0), hits[0].Distance)
	// positions 1 and 2 tie at distance 1, lower position first
	assert.Equal(t, 1, hits[1].Position)
	assert.Equal(t, 2, hits[2].Position)
	assert.Equal(t, float32(1), hits[1].Distance)

	hits, err = idx.Search(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 4, "k is clamped to the index size")
	assert.Equal(t, 0, hits[3].Position)
	assert.Equal(t, float32(50), hits[3].Distance)

	hits, err = idx.Search(ctx, []float32{0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = idx.Search(ctx, []float32{0, 0, 0}, 1)
	assert.True(t, errors.Is(err, domain.ErrVectorDimMismatch))
}

func TestBoltIndex_SearchEmpty(t *testing.T) {
	idx, err := CreateBoltIndex(filepath.Join(t.TempDir(), "ead_index.db"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Rebuild(testManifest(0, 2), nil))

	hits, err := idx.Search(context.Background(), []float32{1, 1}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBoltIndex_SearchCancelled(t *testing.T) {
	idx, err := CreateBoltIndex(filepath.Join(t.TempDir(), "ead_index.db"))
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.Rebuild(testManifest(1, 1), [][]float32{{1}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpenBoltIndex_Missing(t *testing.T) {
	_, err := OpenBoltIndex(filepath.Join(t.TempDir(), "ead_index.db"))
	assert.True(t, errors.Is(err, domain.ErrIndexNotFound))
}

func TestVectorEncoding(t *testing.T) {
	v := []float32{0, -1.5, 3.25, 1e-7}

	got, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCreateBoltIndex_UnreadablePreviousBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ead_index.db")

	idx, err := CreateBoltIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.LoadErr())
	require.NoError(t, idx.Close())

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).Put(positionKey(5), encodeVector([]float32{1}))
	}))
	require.NoError(t, db.Close())

	idx, err = CreateBoltIndex(path)
	require.NoError(t, err)
	defer idx.Close()
	assert.Error(t, idx.LoadErr())
	assert.Equal(t, 0, idx.Count())

	require.NoError(t, idx.Rebuild(testManifest(1, 1), [][]float32{{2}}))
	assert.Equal(t, 1, idx.Count())
}

func TestCreateBoltIndex_Unwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ead_index.db")
	require.NoError(t, os.Mkdir(path, 0755))

	_, err := CreateBoltIndex(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIndexUnwritable))
}
