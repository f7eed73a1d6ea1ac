package cli

import (
	"errors"
	"testing"
	"time"

	"eadrag/config"
	"eadrag/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "<1s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 7*time.Minute, "2h7m"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestNewResponder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Generate.APIKeyEnv = "EADRAG_CLI_TEST_KEY"
	t.Setenv("EADRAG_CLI_TEST_KEY", "")

	r, err := newResponder(cfg, false)
	if err != nil {
		t.Fatalf("prompt responder needs no credential: %v", err)
	}
	if r.ModelName() != "prompt" {
		t.Errorf("expected prompt responder, got %s", r.ModelName())
	}

	if _, err := newResponder(cfg, true); !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}

	t.Setenv("EADRAG_CLI_TEST_KEY", "secret")
	r, err = newResponder(cfg, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ModelName() != cfg.Generate.Model {
		t.Errorf("expected model %s, got %s", cfg.Generate.Model, r.ModelName())
	}
}

func TestNewEmbedder(t *testing.T) {
	cfg := config.DefaultConfig()
	root := t.TempDir()

	cfg.Embedding.Provider = "hash"
	e, closeFn, err := newEmbedder(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if e.Dimension() != cfg.Embedding.Dimension {
		t.Errorf("expected dimension %d, got %d", cfg.Embedding.Dimension, e.Dimension())
	}

	cfg.Embedding.Provider = "openai"
	e2, closeFn2, err := newEmbedder(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn2()
	if e2.ModelName() != "all-minilm" {
		t.Errorf("expected all-minilm, got %s", e2.ModelName())
	}

	cfg.Embedding.Provider = "word2vec"
	if _, _, err := newEmbedder(cfg, root); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
