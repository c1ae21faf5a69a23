package cli

import (
	"context"
	"fmt"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Run the full analysis: deterministic match plus AI enhancement",
	Long: `Analyze a resume against a job description. The resume may be a PDF,
DOCX or plain text file ("-" reads stdin). The deterministic matcher
computes matched/missing skills, the ATS score and suggestions; the AI
layer adds a summary, strengths, gaps and recommendations when a
provider is configured, and degrades to heuristics when it is not.

The job description file is optional: without one the ATS score falls
back to a structure-and-density heuristic.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig    common.CommandConfig
	analyzeNoEnhance bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().BoolVar(&analyzeNoEnhance, "no-enhance", false, "Skip the AI enhancement step")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load skills vocabulary: %w", err)
	}

	// Create AI service for the enhance operation
	enhanceAIConfig := cfg.GetEnhanceConfig()
	aiService, err := ai.NewService(&enhanceAIConfig, "enhance", analyzer, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	createInput := func(resume *types.ResumeDocument, texts []string) (types.AnalyzeInput, error) {
		input := types.AnalyzeInput{ResumeText: resume.Text}
		if len(texts) > 0 {
			input.JobDescription = texts[0]
		}
		return input, nil
	}

	logDetails := func(input types.AnalyzeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, input types.AnalyzeInput) (types.AnalyzeOutput, *ai.TokenUsage, string, error) {
		match := analyzer.Match(input.ResumeText, input.JobDescription)

		output := types.AnalyzeOutput{Match: match}
		if analyzeNoEnhance {
			return output, nil, "", nil
		}

		enhanced, usage, notice, err := aiService.EnhanceAnalysis(ctx, input, match)
		if err != nil {
			return output, usage, notice, err
		}
		output.Enhanced = &enhanced
		output.Match.AINotice = notice
		return output, usage, notice, nil
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args[0],
		args[1:],
		createInput,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
