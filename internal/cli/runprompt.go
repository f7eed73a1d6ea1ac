package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eadrag/internal/domain"
	"eadrag/internal/usecase"
)

var (
	runpromptCtx      string
	runpromptQuery    string
	runpromptGenerate bool
)

var runpromptCmd = &cobra.Command{
	Use:   "runprompt",
	Short: "Render or answer a prompt from a saved query result",
	Long: `Re-render the prompt from a result saved with 'eadrag query --json', optionally
with a different question, and print it or send it to the generative model.

Examples:
  eadrag query -q "Spanish-American War?" --json > result.json
  eadrag runprompt --ctx result.json -q "volunteer regiments?"
  eadrag runprompt --ctx result.json --generate`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(runpromptCmd)
	runpromptCmd.Flags().StringVar(&runpromptCtx, "ctx", "", "path to saved query result JSON (required)")
	runpromptCmd.Flags().StringVarP(&runpromptQuery, "query", "q", "", "replace the saved question")
	runpromptCmd.Flags().BoolVar(&runpromptGenerate, "generate", false, "answer with the generative model")
	runpromptCmd.MarkFlagRequired("ctx")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	responder, err := newResponder(GetConfig(), runpromptGenerate)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(runpromptCtx)
	if err != nil {
		return fmt.Errorf("failed to read context file: %w", err)
	}

	var saved domain.QueryResult
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("failed to parse context file: %w", err)
	}

	query := saved.Query
	if runpromptQuery != "" {
		query = runpromptQuery
	}

	prompt, err := usecase.BuildPrompt(usecase.FormatContext(saved.Collections), query)
	if err != nil {
		return err
	}

	answer, err := responder.Respond(cmd.Context(), prompt)
	if err != nil {
		logFailure("Generation failed", err)
		return nil
	}

	fmt.Println(answer)
	return nil
}
