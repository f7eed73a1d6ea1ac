package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"eadrag/internal/domain"
	"eadrag/internal/usecase"
)

var extractCmd = &cobra.Command{
	Use:   "extract [dir]",
	Short: "Extract and chunk finding aids into the corpus",
	Long: `Extract the bioghist, scopecontent, dsc and controlaccess sections of every
finding aid in the collections directory, split them into labelled chunks and
write the corpus (.eadrag/processed_chunks.json by default).

Examples:
  eadrag extract                # Use collections.dir from config
  eadrag extract /srv/ead       # Extract a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	dir := cfg.CollectionsDir(root)
	if len(args) > 0 {
		var err error
		dir, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	if _, err := extract(cmd, dir); err != nil {
		return err
	}
	return nil
}

// extract runs the ingest stage and prints its summary.
func extract(cmd *cobra.Command, dir string) (*usecase.IngestResult, error) {
	cfg := GetConfig()
	root := GetRootDir()

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("collections directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	if err := cfg.EnsureStorageDir(root); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Scanning %s...\n", dir)

	result, err := newIngestUseCase(cfg, root).Ingest(cmd.Context(), dir, newProgress("Extracting"))
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\nExtraction complete:\n")
	fmt.Fprintf(os.Stderr, "  Documents processed: %d\n", result.DocumentsProcessed)
	fmt.Fprintf(os.Stderr, "  Documents failed:    %d\n", result.DocumentsFailed)
	fmt.Fprintf(os.Stderr, "  Chunks created:      %d\n", result.ChunksCreated())
	for _, sec := range domain.Sections {
		if n := result.ChunksBySection[sec]; n > 0 {
			fmt.Fprintf(os.Stderr, "    %-14s %d\n", sec, n)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
	}

	if result.Saved {
		fmt.Fprintf(os.Stderr, "\nCorpus stored at: %s\n", cfg.CorpusPath(root))
	}
	return result, nil
}
