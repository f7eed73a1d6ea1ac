package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eadrag/internal/adapter/store"
	"eadrag/internal/domain"
	"eadrag/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the corpus and rebuild the vector index",
	Long: `Embed every chunk of the stored corpus, in order, and replace the vector
index (.eadrag/ead_index.db by default). The index records which corpus and
model it was built from, so a later corpus change is detected at query time.

Examples:
  eadrag index
  eadrag index --config eadrag.yaml`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, err := buildIndex(cmd, nil)
	return err
}

// buildIndex embeds chunks (or the stored corpus when chunks is nil) and
// rebuilds the index.
func buildIndex(cmd *cobra.Command, chunks []domain.Chunk) (*usecase.BuildResult, error) {
	cfg := GetConfig()
	root := GetRootDir()

	embedder, closeEmbedder, err := newEmbedder(cfg, root)
	if err != nil {
		logFailure("Index build failed", err)
		return nil, err
	}
	defer closeEmbedder()

	indexPath := cfg.IndexPath(root)
	idx, err := store.CreateBoltIndex(indexPath)
	if err != nil {
		err = fmt.Errorf("failed to open index: %w", err)
		logFailure("Index build failed", err)
		return nil, err
	}
	defer idx.Close()
	if lerr := idx.LoadErr(); lerr != nil {
		log.Debug("Previous index unreadable, replacing it", zap.String("path", indexPath), zap.Error(lerr))
	}

	corpus := store.NewJSONCorpusStore(cfg.CorpusPath(root))
	buildUC := usecase.NewBuildIndexUseCase(corpus, embedder, idx, cfg.Embedding.BatchSize)
	if chunks == nil {
		chunks = buildUC.LoadCorpus(cmd.Context())
	}

	fmt.Fprintf(os.Stderr, "Embedding %d chunks with %s (%s)...\n",
		len(chunks), cfg.Embedding.Model, cfg.Embedding.Provider)

	result, err := buildUC.Build(cmd.Context(), chunks, newProgress("Embedding"))
	if err != nil {
		logFailure("Index build failed", err)
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "\nIndexing complete:\n")
	fmt.Fprintf(os.Stderr, "  Entries:   %d\n", result.Manifest.ChunkCount)
	fmt.Fprintf(os.Stderr, "  Dimension: %d\n", result.Manifest.Dimension)
	fmt.Fprintf(os.Stderr, "  Build:     %s\n", result.Manifest.BuildID)
	fmt.Fprintf(os.Stderr, "  Took:      %s\n", formatDuration(result.Duration))
	fmt.Fprintf(os.Stderr, "\nIndex stored at: %s\n", indexPath)
	return result, nil
}
