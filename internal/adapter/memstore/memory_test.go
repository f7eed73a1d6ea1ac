package memstore

import (
	"errors"
	"testing"

	"eadrag/internal/domain"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.Load(); !errors.Is(err, domain.ErrCorpusNotFound) {
		t.Fatalf("expected ErrCorpusNotFound before save, got %v", err)
	}

	chunks := []domain.Chunk{
		{Text: "Collection: a.xml\nfoo", Metadata: domain.ChunkMetadata{File: "a.xml", Section: domain.SectionBiogHist}},
	}
	if err := s.Save(chunks); err != nil {
		t.Fatal(err)
	}

	// mutating the caller's slice must not leak into the store
	chunks[0].Text = "changed"

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].Text != "Collection: a.xml\nfoo" {
		t.Errorf("unexpected corpus %+v", loaded)
	}
}

func TestMemoryStore_SaveReplaces(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Save([]domain.Chunk{{Text: "a"}, {Text: "b"}})
	_ = s.Save([]domain.Chunk{{Text: "c"}})

	loaded, _ := s.Load()
	if len(loaded) != 1 || loaded[0].Text != "c" {
		t.Errorf("expected whole-corpus replace, got %+v", loaded)
	}
}
