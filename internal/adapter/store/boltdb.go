package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"eadrag/internal/domain"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyManifest   = []byte("manifest")
)

// BoltIndex is the persisted vector index. Vectors are keyed by their
// big-endian corpus position and held in memory for search.
type BoltIndex struct {
	db       *bbolt.DB
	mu       sync.RWMutex
	manifest domain.IndexManifest
	vectors  [][]float32
	loadErr  error
}

// CreateBoltIndex opens (creating if needed) an index file for building.
func CreateBoltIndex(path string) (*BoltIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create index dir: %v", domain.ErrIndexUnwritable, err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrIndexUnwritable, path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnwritable, err)
	}

	// An unreadable previous build is left for Rebuild to replace; the
	// reason is kept for LoadErr.
	idx := &BoltIndex{db: db}
	idx.loadErr = idx.load()
	return idx, nil
}

// OpenBoltIndex opens an existing index file read-only.
func OpenBoltIndex(path string) (*BoltIndex, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, path)
		}
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	idx := &BoltIndex{db: db}
	if err := idx.load(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// LoadErr reports why the previous build in a created index could not be
// read, or nil.
func (s *BoltIndex) LoadErr() error {
	return s.loadErr
}

func (s *BoltIndex) DB() *bbolt.DB {
	return s.db
}

// load reads the manifest and every vector into memory.
func (s *BoltIndex) load() error {
	var manifest domain.IndexManifest
	var vectors [][]float32

	err := s.db.View(func(tx *bbolt.Tx) error {
		if meta := tx.Bucket(bucketMeta); meta != nil {
			if data := meta.Get(keyManifest); data != nil {
				if err := json.Unmarshal(data, &manifest); err != nil {
					return fmt.Errorf("corrupt index manifest: %w", err)
				}
			}
		}

		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}

		vectors = make([][]float32, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("corrupt index key %x", k)
			}
			pos := int(binary.BigEndian.Uint64(k))
			if pos != len(vectors) {
				return fmt.Errorf("index positions not contiguous: expected %d, got %d", len(vectors), pos)
			}
			vec, err := decodeVector(v)
			if err != nil {
				return fmt.Errorf("position %d: %w", pos, err)
			}
			vectors = append(vectors, vec)
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.manifest = manifest
	s.vectors = vectors
	s.mu.Unlock()
	return nil
}

// Rebuild replaces the whole index with vectors, entry i holding vector i.
// The previous index survives untouched if anything fails.
func (s *BoltIndex) Rebuild(manifest domain.IndexManifest, vectors [][]float32) error {
	if len(vectors) != manifest.ChunkCount {
		return fmt.Errorf("manifest declares %d entries, got %d vectors", manifest.ChunkCount, len(vectors))
	}
	for i, v := range vectors {
		if len(v) != manifest.Dimension {
			return fmt.Errorf("%w: position %d has %d dimensions, expected %d",
				domain.ErrVectorDimMismatch, i, len(v), manifest.Dimension)
		}
	}
	manifest.SchemaVersion = CurrentSchemaVersion

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketVectors) != nil {
			if err := tx.DeleteBucket(bucketVectors); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}
		b.FillPercent = 1.0 // keys are appended in order

		for i, v := range vectors {
			if err := b.Put(positionKey(i), encodeVector(v)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(manifest)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyManifest, data)
	})
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	s.manifest = manifest
	s.vectors = vectors
	return nil
}

// Manifest describes the build the index came from.
func (s *BoltIndex) Manifest() domain.IndexManifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// Count returns the number of vectors in the index.
func (s *BoltIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Vector returns the vector stored at position.
func (s *BoltIndex) Vector(position int) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position < 0 || position >= len(s.vectors) {
		return nil, false
	}
	return s.vectors[position], true
}

func (s *BoltIndex) Close() error {
	return s.db.Close()
}

func positionKey(pos int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(pos))
	return key
}
