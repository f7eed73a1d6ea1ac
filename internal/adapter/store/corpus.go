package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"eadrag/internal/domain"
)

// JSONCorpusStore keeps the chunk corpus as one indented JSON array.
type JSONCorpusStore struct {
	path string
}

func NewJSONCorpusStore(path string) *JSONCorpusStore {
	return &JSONCorpusStore{path: path}
}

// Path returns the corpus file location.
func (s *JSONCorpusStore) Path() string {
	return s.path
}

// Save replaces the corpus file with chunks. The file is written next to
// its destination and renamed, so readers see the old or the new corpus,
// never a partial one.
func (s *JSONCorpusStore) Save(chunks []domain.Chunk) error {
	if chunks == nil {
		chunks = []domain.Chunk{}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("create temp corpus: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chunks); err != nil {
		tmp.Close()
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp corpus: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace corpus: %w", err)
	}
	return nil
}

// Load reads the whole corpus.
func (s *JSONCorpusStore) Load() ([]domain.Chunk, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCorpusNotFound, s.path)
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("corrupt corpus %s: %w", s.path, err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return chunks, nil
}

// Fingerprint identifies a corpus version. It hashes the canonical JSON
// encoding, so file formatting does not change it but any change to text,
// metadata or order does.
func Fingerprint(chunks []domain.Chunk) string {
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	data, _ := json.Marshal(chunks)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
