package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eadrag/config"
	"eadrag/internal/logger"
	"eadrag/internal/metrics"
)

var (
	cfgFile     string
	cfg         *config.Config
	rootDir     string
	logLevel    string
	metricsFile string
	log         = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "eadrag",
	Short: "Retrieval over EAD finding aids",
	Long: `eadrag extracts descriptive sections from EAD/XML finding aids, indexes them
as embeddings, and answers questions with a prompt (or a generated answer)
naming the collections most likely to hold relevant material.

Example usage:
  eadrag extract collections/                         # Build the chunk corpus
  eadrag index                                        # Embed the corpus
  eadrag query -q "Spanish-American War letters?"     # Extract, index and query
  eadrag query -q "..." --skip-processing --skip-embeddings --generate`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		log, err = logger.NewLogger(cfg.Logging.Format, level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))

		if metricsFile == "" {
			metricsFile = cfg.Metrics.Textfile
		}
		metrics.Register()

		return nil
	},
}

// Execute runs the root command and writes the metrics textfile, if one
// is configured, whatever the outcome.
func Execute() {
	err := rootCmd.Execute()

	if metricsFile != "" {
		if werr := metrics.WriteTextfile(metricsFile); werr != nil {
			log.Warn("Failed to write metrics", zap.String("path", metricsFile), zap.Error(werr))
		}
	}
	_ = log.Sync()

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./eadrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
