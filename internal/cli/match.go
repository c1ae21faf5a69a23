package cli

import (
	"context"
	"fmt"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume-file] [job-description-file]",
	Short: "Run the deterministic skills/ATS match only",
	Long: `Match a resume against a job description without any AI involvement.
The output is the deterministic result: matched skills, missing skills
with importance, coverage ratio, keyword density, structure score, the
composite ATS score and rule-based suggestions. The same inputs always
produce the same output.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load skills vocabulary: %w", err)
	}

	createInput := func(resume *types.ResumeDocument, texts []string) (types.AnalyzeInput, error) {
		input := types.AnalyzeInput{ResumeText: resume.Text}
		if len(texts) > 0 {
			input.JobDescription = texts[0]
		}
		return input, nil
	}

	logDetails := func(input types.AnalyzeInput, cfg common.CommandConfig) {
		logger.Info("Starting deterministic match",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, input types.AnalyzeInput) (types.MatchResult, *ai.TokenUsage, string, error) {
		return analyzer.Match(input.ResumeText, input.JobDescription), nil, "", nil
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		matchConfig,
		args[0],
		args[1:],
		createInput,
		matchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match resume: %w", err)
	}
	return nil
}
