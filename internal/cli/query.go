package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eadrag/internal/adapter/analyzer"
	"eadrag/internal/adapter/retriever"
	"eadrag/internal/adapter/store"
	"eadrag/internal/domain"
	"eadrag/internal/usecase"
)

var (
	queryText           string
	queryTopK           int
	queryJSON           bool
	querySkipProcessing bool
	querySkipEmbeddings bool
	queryGenerate       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Find collections relevant to a question",
	Long: `Run the pipeline and print a prompt listing the finding-aid excerpts nearest
to the question. With --generate the prompt is answered by the configured
generative model instead (the key is read from generate.api_key_env).

By default the corpus is re-extracted and the index rebuilt first; use
--skip-processing and --skip-embeddings to reuse the stored artifacts.

Examples:
  eadrag query -q "What collections cover the Spanish-American War?"
  eadrag query -q "railroad freight" --skip-processing --skip-embeddings -k 10
  eadrag query -q "..." --skip-processing --skip-embeddings --generate`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to answer (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the aggregated result as JSON")
	queryCmd.Flags().BoolVar(&querySkipProcessing, "skip-processing", false, "reuse the stored corpus")
	queryCmd.Flags().BoolVar(&querySkipEmbeddings, "skip-embeddings", false, "reuse the stored index")
	queryCmd.Flags().BoolVar(&queryGenerate, "generate", false, "answer with the generative model")
	queryCmd.MarkFlagRequired("query")
}

// queryOutputJSON is the --json output, readable by runprompt.
type queryOutputJSON struct {
	domain.QueryResult
	Response string `json:"response"`
	Model    string `json:"model"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()
	ctx := cmd.Context()

	// Fail before any work when generation cannot run.
	responder, err := newResponder(cfg, queryGenerate)
	if err != nil {
		return err
	}

	var chunks []domain.Chunk
	if !querySkipProcessing {
		result, err := extract(cmd, cfg.CollectionsDir(root))
		if err != nil {
			logFailure("Extraction failed, continuing with an empty corpus", err)
			chunks = []domain.Chunk{}
		} else {
			chunks = result.Chunks
		}
	}

	if !querySkipEmbeddings {
		if _, err := buildIndex(cmd, chunks); err != nil {
			// already logged with its hint
			return nil
		}
	}

	if chunks == nil {
		chunks, err = store.NewJSONCorpusStore(cfg.CorpusPath(root)).Load()
		if err != nil {
			logFailure("Cannot load corpus", err)
			return nil
		}
	}

	embedder, closeEmbedder, err := newEmbedder(cfg, root)
	if err != nil {
		return err
	}
	defer closeEmbedder()

	idx, err := usecase.OpenPairedIndex(cfg.IndexPath(root), chunks, embedder)
	if err != nil {
		logFailure("Cannot open index", err)
		return nil
	}
	defer idx.Close()

	topK := cfg.Retrieve.PromptTopK
	if queryGenerate {
		topK = cfg.Retrieve.GenerateTopK
	}
	if queryTopK > 0 {
		topK = queryTopK
	}

	queryUC := usecase.NewQueryUseCase(
		retriever.NewSemanticRetriever(idx, embedder, chunks),
		usecase.NewAggregator(cfg.Retrieve.ExcerptChars),
		responder,
		analyzer.NewTokenizer(),
	)

	out, err := queryUC.Query(ctx, queryText, topK)
	if err != nil {
		logFailure("Query failed", err)
		return nil
	}

	log.Info("Query answered",
		zap.Int("top_k", topK),
		zap.Int("collections", len(out.Result.Collections)),
		zap.Int("prompt_tokens", out.PromptTokens),
		zap.String("responder", out.Model),
	)

	if queryJSON {
		data, err := json.MarshalIndent(queryOutputJSON{
			QueryResult: out.Result,
			Response:    out.Response,
			Model:       out.Model,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(out.Neighbors) == 0 {
		fmt.Fprintln(os.Stderr, "No chunks indexed; the prompt has no excerpts.")
	}
	fmt.Println(out.Response)
	return nil
}
