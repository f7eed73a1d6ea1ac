package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"eadrag/internal/metrics"
	"eadrag/internal/port"
)

var bucketEmbeddings = []byte("embeddings")

// CachedEmbedder caches embeddings in a bbolt file keyed by model and text,
// so rebuilding an index over an unchanged corpus costs no provider calls.
type CachedEmbedder struct {
	inner  port.Embedder
	db     *bbolt.DB
	logger *zap.Logger
}

// NewCachedEmbedder opens (creating if needed) the cache at path.
func NewCachedEmbedder(inner port.Embedder, path string, logger *zap.Logger) (*CachedEmbedder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embeddings bucket: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{inner: inner, db: db, logger: logger}, nil
}

// Embed returns cached vectors and embeds only the misses, in one call to
// the inner embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, text := range texts {
			data := b.Get(c.cacheKey(text))
			if vec, ok := c.decode(data); ok {
				vectors[i] = vec
				continue
			}
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read embedding cache: %w", err)
	}

	metrics.EmbeddingCacheTotal.WithLabelValues("hit").Add(float64(len(texts) - len(missTexts)))
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Add(float64(len(missTexts)))

	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	if len(embedded) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(missTexts))
	}

	for j, i := range missIdx {
		vectors[i] = embedded[j]
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for j, text := range missTexts {
			if err := b.Put(c.cacheKey(text), encode(embedded[j])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("Failed to cache embeddings", zap.Int("count", len(missTexts)), zap.Error(err))
	}

	return vectors, nil
}

func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

func (c *CachedEmbedder) Close() error {
	return c.db.Close()
}

func (c *CachedEmbedder) cacheKey(text string) []byte {
	h := sha256.New()
	h.Write([]byte(c.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum(nil)
}

// decode rejects entries whose dimension no longer matches the embedder.
func (c *CachedEmbedder) decode(data []byte) ([]float32, bool) {
	if len(data) == 0 || len(data) != c.inner.Dimension()*4 {
		return nil, false
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, true
}

func encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
