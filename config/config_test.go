package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.WindowChars != 2500 {
		t.Errorf("expected WindowChars=2500, got %d", cfg.Chunking.WindowChars)
	}
	if cfg.Retrieve.PromptTopK != 5 {
		t.Errorf("expected PromptTopK=5, got %d", cfg.Retrieve.PromptTopK)
	}
	if cfg.Retrieve.GenerateTopK != 20 {
		t.Errorf("expected GenerateTopK=20, got %d", cfg.Retrieve.GenerateTopK)
	}
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("expected Dimension=384, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Storage.CorpusFile != "processed_chunks.json" {
		t.Errorf("expected corpus file processed_chunks.json, got %s", cfg.Storage.CorpusFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "eadrag.yaml")

	content := `
chunking:
  window_chars: 1000
embedding:
  provider: hash
  dimension: 128
retrieve:
  prompt_top_k: 3
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunking.WindowChars != 1000 {
		t.Errorf("expected WindowChars=1000, got %d", cfg.Chunking.WindowChars)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("expected provider hash, got %s", cfg.Embedding.Provider)
	}
	if cfg.Retrieve.PromptTopK != 3 {
		t.Errorf("expected PromptTopK=3, got %d", cfg.Retrieve.PromptTopK)
	}
	// untouched keys keep their defaults
	if cfg.Retrieve.GenerateTopK != 20 {
		t.Errorf("expected GenerateTopK=20, got %d", cfg.Retrieve.GenerateTopK)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "eadrag.yaml")

	content := `
embedding:
  provider: word2vec
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".eadrag"), 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".eadrag", "config.yaml")

	content := `
collections:
  dir: finding-aids
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Collections.Dir != "finding-aids" {
		t.Errorf("expected collections dir finding-aids, got %s", cfg.Collections.Dir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "eadrag.yaml")

	cfg := DefaultConfig()
	cfg.Generate.Model = "llama3:8b-instruct-q4_0"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Generate.Model != "llama3:8b-instruct-q4_0" {
		t.Errorf("expected saved model, got %s", loaded.Generate.Model)
	}
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()

	if got, want := cfg.CorpusPath("/data"), filepath.Join("/data", ".eadrag", "processed_chunks.json"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got, want := cfg.IndexPath("/data"), filepath.Join("/data", ".eadrag", "ead_index.db"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got, want := cfg.CollectionsDir("/data"), filepath.Join("/data", "collections"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	cfg.Collections.Dir = "/srv/ead"
	if got := cfg.CollectionsDir("/data"); got != "/srv/ead" {
		t.Errorf("absolute collections dir should be kept, got %s", got)
	}
}
