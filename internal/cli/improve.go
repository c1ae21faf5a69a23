package cli

import (
	"context"
	"fmt"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var improveCmd = &cobra.Command{
	Use:   "improve [resume-file] [job-description-file]",
	Short: "Rewrite a resume at a chosen enhancement level",
	Long: `Rewrite a resume to better target a job description. The enhancement
level controls how aggressively the text may be restructured:

  light     wording polish only, structure untouched
  moderate  rephrased bullets and tightened sections (default)
  full      free restructuring of sections and content

Without an AI provider the rewrite is rule-based: bullets are
normalized and the deterministic suggestions are appended.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if improveConfig.OutputFormat == "" {
			improveConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if _, err := common.ValidateEnhancementLevel(improveLevel); err != nil {
			return err
		}
		return common.ValidateOutputFormat(improveConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runImprove,
}

var (
	improveConfig common.CommandConfig
	improveLevel  string
)

func init() {
	improveCmd.Flags().StringVarP(&improveConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	improveCmd.Flags().StringVar(&improveConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	improveCmd.Flags().StringVarP(&improveLevel, "level", "l", "moderate", "Enhancement level: light, moderate, or full")
}

func runImprove(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load skills vocabulary: %w", err)
	}

	level, err := common.ValidateEnhancementLevel(improveLevel)
	if err != nil {
		return err
	}

	improveAIConfig := cfg.GetImproveConfig()
	aiService, err := ai.NewService(&improveAIConfig, "improve", analyzer, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	createInput := func(resume *types.ResumeDocument, texts []string) (types.ImproveInput, error) {
		input := types.ImproveInput{ResumeText: resume.Text, Level: level}
		if len(texts) > 0 {
			input.JobDescription = texts[0]
		}
		return input, nil
	}

	logDetails := func(input types.ImproveInput, cfg common.CommandConfig) {
		logger.Info("Starting resume improvement",
			"level", string(input.Level),
			"resume_chars", len(input.ResumeText),
			"output_format", cfg.OutputFormat)
	}

	improveOperation := func(ctx context.Context, input types.ImproveInput) (types.ImprovedResume, *ai.TokenUsage, string, error) {
		output, usage, notice, err := aiService.ImproveResume(ctx, input)
		output.Notice = notice
		return output, usage, notice, err
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		improveConfig,
		args[0],
		args[1:],
		createInput,
		improveOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to improve resume: %w", err)
	}
	logger.Info("Resume improvement completed successfully")
	return nil
}
