package cli

import (
	"context"
	"fmt"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var qaCmd = &cobra.Command{
	Use:   "qa [resume-file]",
	Short: "Generate topic-scoped Q&A pairs grounded in the resume",
	Long: `Generate question/answer pairs about a single topic (for example
"leadership" or "kubernetes"), grounded in the resume content. Without
an AI provider the pairs come from a static per-topic bank.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if qaConfig.OutputFormat == "" {
			qaConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateTopic(qaTopic); err != nil {
			return err
		}
		if err := common.ValidateQuestionCount(qaCount); err != nil {
			return err
		}
		return common.ValidateOutputFormat(qaConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runQA,
}

var (
	qaConfig common.CommandConfig
	qaTopic  string
	qaCount  int
)

func init() {
	qaCmd.Flags().StringVarP(&qaConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	qaCmd.Flags().StringVar(&qaConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	qaCmd.Flags().StringVarP(&qaTopic, "topic", "t", "", "Topic to generate Q&A for (required)")
	qaCmd.Flags().IntVarP(&qaCount, "count", "n", 5, "Number of Q&A pairs to generate (1-20)")
	_ = qaCmd.MarkFlagRequired("topic")
}

func runQA(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load skills vocabulary: %w", err)
	}

	qaAIConfig := cfg.GetQAConfig()
	aiService, err := ai.NewService(&qaAIConfig, "qa", analyzer, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	createInput := func(resume *types.ResumeDocument, texts []string) (types.QAInput, error) {
		return types.QAInput{
			ResumeText: resume.Text,
			Topic:      qaTopic,
			Count:      qaCount,
		}, nil
	}

	logDetails := func(input types.QAInput, cfg common.CommandConfig) {
		logger.Info("Starting Q&A generation",
			"topic", input.Topic,
			"count", input.Count,
			"output_format", cfg.OutputFormat)
	}

	qaOperation := func(ctx context.Context, input types.QAInput) (types.QAOutput, *ai.TokenUsage, string, error) {
		output, usage, notice, err := aiService.GenerateQA(ctx, input, nil)
		output.Notice = notice
		return output, usage, notice, err
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		qaConfig,
		args[0],
		nil,
		createInput,
		qaOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate Q&A: %w", err)
	}
	logger.Info("Q&A generation completed successfully")
	return nil
}
