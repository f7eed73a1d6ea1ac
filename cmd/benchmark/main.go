package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"eadrag/config"
	"eadrag/internal/adapter/analyzer"
	"eadrag/internal/adapter/chunker"
	"eadrag/internal/adapter/embedding"
	"eadrag/internal/adapter/retriever"
	"eadrag/internal/adapter/store"
	"eadrag/internal/domain"
	"eadrag/internal/port"
	"eadrag/internal/usecase"
)

// querySet is a YAML list of questions with the collections that should
// answer them.
type querySet struct {
	Queries []struct {
		Query    string   `yaml:"query"`
		Expected []string `yaml:"expected"`
	} `yaml:"queries"`
}

func main() {
	rootDir := flag.String("dir", ".", "Directory holding eadrag.yaml and .eadrag/")
	query := flag.String("q", "", "Query to test")
	setPath := flag.String("set", "", "YAML query set with expected collections")
	topK := flag.Int("k", 10, "Number of neighbors")
	flag.Parse()

	if *query == "" && *setPath == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir . -q \"query\"")
		fmt.Println("       go run ./cmd/benchmark -dir . -set queries.yaml")
		fmt.Println("\nReports:")
		fmt.Println("  1. Raw nearest neighbors with squared L2 distances")
		fmt.Println("  2. Precision, recall, MRR and NDCG over collections for a query set")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	chunks, err := store.NewJSONCorpusStore(cfg.CorpusPath(*rootDir)).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading corpus: %v\n", err)
		os.Exit(1)
	}

	embedder, err := setupEmbedder(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding not available: %v\n", err)
		os.Exit(1)
	}

	idx, err := usecase.OpenPairedIndex(cfg.IndexPath(*rootDir), chunks, embedder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening index: %v\n", err)
		if hint := usecase.RemediationHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
	defer idx.Close()

	r := retriever.NewSemanticRetriever(idx, embedder, chunks)

	fmt.Println("EAD RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Entries indexed: %d\n", idx.Count())
	fmt.Printf("Model: %s (%s)\n", embedder.ModelName(), cfg.Embedding.Provider)
	fmt.Printf("Dimension: %d\n", embedder.Dimension())
	fmt.Printf("Build: %s\n\n", idx.Manifest().BuildID)

	if *query != "" {
		if err := printNeighbors(r, *query, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}
	}

	if *setPath != "" {
		if err := evaluate(r, *setPath, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Evaluation error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printNeighbors(r *retriever.SemanticRetriever, query string, k int) error {
	fmt.Printf("Query: \"%s\"\n", query)
	fmt.Println(strings.Repeat("-", 70))

	neighbors, err := r.Search(context.Background(), query, k)
	if err != nil {
		return err
	}

	fmt.Printf("Top %d neighbors:\n\n", len(neighbors))
	for i, n := range neighbors {
		preview := strings.TrimSpace(chunker.StripLabel(n.Chunk.Text))
		if runes := []rune(preview); len(runes) > 150 {
			preview = string(runes[:150]) + "..."
		}
		preview = strings.ReplaceAll(preview, "\n", " ")

		fmt.Printf("%d. [d=%.4f] #%d %s (%s)\n", i+1, n.Distance, n.Position, n.Chunk.Metadata.File, n.Chunk.Metadata.Section)
		fmt.Printf("   %s\n\n", preview)
	}

	if len(neighbors) > 0 {
		fmt.Println(strings.Repeat("=", 70))
		fmt.Printf("  Nearest distance:  %.4f\n", neighbors[0].Distance)
		fmt.Printf("  Farthest distance: %.4f\n", neighbors[len(neighbors)-1].Distance)
		fmt.Printf("  Collections:       %d\n", len(retriever.DistinctFiles(files(neighbors))))
	}
	return nil
}

func evaluate(r *retriever.SemanticRetriever, path string, k int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var set querySet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(set.Queries) == 0 {
		return fmt.Errorf("%s has no queries", path)
	}

	fmt.Printf("%-40s %6s %6s %6s %6s\n", "QUERY", "P", "R", "RR", "NDCG")
	var sumP, sumR, sumRR, sumNDCG float64
	for _, q := range set.Queries {
		neighbors, err := r.Search(context.Background(), q.Query, k)
		if err != nil {
			return fmt.Errorf("query %q: %w", q.Query, err)
		}
		ranked := retriever.DistinctFiles(files(neighbors))

		p := retriever.PrecisionAtK(ranked, q.Expected)
		rc := retriever.RecallAtK(ranked, q.Expected)
		rr := retriever.ReciprocalRank(ranked, q.Expected)
		ndcg := retriever.NDCG(ranked, q.Expected)
		sumP, sumR, sumRR, sumNDCG = sumP+p, sumR+rc, sumRR+rr, sumNDCG+ndcg

		fmt.Printf("%-40s %6.3f %6.3f %6.3f %6.3f\n", truncate(q.Query, 40), p, rc, rr, ndcg)
	}

	n := float64(len(set.Queries))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("%-40s %6.3f %6.3f %6.3f %6.3f\n", "MEAN", sumP/n, sumR/n, sumRR/n, sumNDCG/n)
	return nil
}

func files(neighbors []domain.Neighbor) []string {
	out := make([]string, len(neighbors))
	for i, n := range neighbors {
		out[i] = n.Chunk.Metadata.File
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func setupEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		var apiKey string
		if cfg.Embedding.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.Embedding.APIKeyEnv)
		}
		return embedding.NewOpenAIEmbedder(embedding.Config{
			APIKey:    apiKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			BatchSize: cfg.Embedding.BatchSize,
		}), nil
	case "hash":
		return embedding.NewHashEmbedder(cfg.Embedding.Dimension, analyzer.NewTokenizer()), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Embedding.Provider)
	}
}
