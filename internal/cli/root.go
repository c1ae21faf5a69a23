package cli

import (
	"context"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/skills"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumelens",
	Short: "Analyze resumes against job descriptions",
	Long: `Resumelens parses PDF and DOCX resumes, scores them against job
descriptions with a deterministic skills/ATS matcher, and augments the
results with AI: enhanced analysis, interview questions, topic Q&A and
resume rewriting. AI features degrade to deterministic heuristics when
no provider is configured.`,
}

var apiKeyFlag string

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// newAnalyzer builds the skills analyzer from the configured
// vocabulary file, or the built-in vocabulary when none is set.
func newAnalyzer(cfg *config.Config) (*skills.Analyzer, error) {
	vocab, err := config.LoadVocabulary(cfg.Analyzer.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return skills.NewAnalyzer(vocab), nil
}

func init() {
	// --config is consumed in main before cobra runs; it is declared
	// here so cobra accepts and documents it.
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: config.yaml in search paths)")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Gemini API key (overrides config and environment)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if apiKeyFlag != "" {
			getConfigFromContext(cmd.Context()).AI.APIKey = apiKeyFlag
		}
	}

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(qaCmd)
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
