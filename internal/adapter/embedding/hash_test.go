package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eadrag/internal/adapter/analyzer"
)

func distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	emb := NewHashEmbedder(64, analyzer.NewTokenizer())

	a, err := emb.Embed(context.Background(), []string{"Spanish-American War volunteers"})
	require.NoError(t, err)
	b, err := emb.Embed(context.Background(), []string{"Spanish-American War volunteers"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a[0], 64)
	assert.Equal(t, "hash-64", emb.ModelName())
}

func TestHashEmbedder_Normalised(t *testing.T) {
	emb := NewHashEmbedder(32, analyzer.NewTokenizer())

	vectors, err := emb.Embed(context.Background(), []string{"letters diaries photographs", "", "the of and"})
	require.NoError(t, err)

	var norm float64
	for _, v := range vectors[0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	// no terms survive tokenization: zero vector, not NaN
	for _, v := range vectors[1] {
		assert.Equal(t, float32(0), v)
	}
	for _, v := range vectors[2] {
		assert.Equal(t, float32(0), v)
	}
}

func TestHashEmbedder_SharedVocabularyIsCloser(t *testing.T) {
	emb := NewHashEmbedder(256, analyzer.NewTokenizer())

	vectors, err := emb.Embed(context.Background(), []string{
		"Spanish-American War Washington volunteers",
		"Washington volunteers in the Spanish-American War, 1898",
		"Seattle lumber mill payroll ledgers",
	})
	require.NoError(t, err)

	assert.Less(t, distance(vectors[0], vectors[1]), distance(vectors[0], vectors[2]))
}
