package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"eadrag/internal/adapter/store"
	"eadrag/internal/domain"
	"eadrag/internal/usecase"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus and index state",
	Long: `Report the size of the stored corpus, the build the index came from, and
whether the two still belong together.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	embedder, closeEmbedder, err := newEmbedder(cfg, root)
	if err != nil {
		return err
	}
	defer closeEmbedder()

	report := usecase.NewStatusUseCase(
		store.NewJSONCorpusStore(cfg.CorpusPath(root)),
		cfg.IndexPath(root),
		embedder,
	).Status(cmd.Context())

	fmt.Printf("Corpus: %s\n", cfg.CorpusPath(root))
	if report.CorpusErr != nil {
		fmt.Printf("  unavailable: %v\n", report.CorpusErr)
	} else {
		fmt.Printf("  Chunks:      %d\n", report.CorpusChunks)
		for _, sec := range domain.Sections {
			fmt.Printf("    %-14s %d\n", sec, report.ChunksBySection[sec])
		}
		fmt.Printf("  Fingerprint: %s\n", report.CorpusFingerprint)
	}

	fmt.Printf("\nIndex: %s\n", report.IndexPath)
	if m := report.Manifest; m != nil {
		fmt.Printf("  Build:       %s\n", m.BuildID)
		fmt.Printf("  Built at:    %s\n", m.BuiltAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("  Entries:     %d\n", m.ChunkCount)
		fmt.Printf("  Model:       %s (%d dims)\n", m.Model, m.Dimension)
		fmt.Printf("  Schema:      v%d\n", m.SchemaVersion)
	}

	if report.Ready() {
		fmt.Println("\nStatus: ready")
		return nil
	}
	fmt.Printf("\nStatus: not ready\n")
	if report.IndexErr != nil {
		fmt.Printf("  %v\n", report.IndexErr)
		if hint := usecase.RemediationHint(report.IndexErr); hint != "" {
			fmt.Printf("  hint: %s\n", hint)
		}
	}
	if hint := usecase.RemediationHint(report.CorpusErr); report.CorpusErr != nil && hint != "" {
		fmt.Printf("  hint: %s\n", hint)
	}
	return nil
}
