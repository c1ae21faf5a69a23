package cli

import (
	"context"
	"fmt"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions [resume-file] [job-description-file]",
	Short: "Generate interview questions for a resume/job pair",
	Long: `Generate interview questions grounded in the resume, each with a
sample answer and a note on what the interviewer is looking for. Without
an AI provider the questions come from a static bank keyed by matched
skills.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if questionsConfig.OutputFormat == "" {
			questionsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateQuestionCount(questionsCount); err != nil {
			return err
		}
		return common.ValidateOutputFormat(questionsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runQuestions,
}

var (
	questionsConfig common.CommandConfig
	questionsCount  int
)

func init() {
	questionsCmd.Flags().StringVarP(&questionsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	questionsCmd.Flags().StringVar(&questionsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	questionsCmd.Flags().IntVarP(&questionsCount, "count", "n", 5, "Number of questions to generate (1-20)")
}

func runQuestions(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load skills vocabulary: %w", err)
	}

	questionsAIConfig := cfg.GetQuestionsConfig()
	aiService, err := ai.NewService(&questionsAIConfig, "questions", analyzer, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	createInput := func(resume *types.ResumeDocument, texts []string) (types.QuestionsInput, error) {
		input := types.QuestionsInput{ResumeText: resume.Text, Count: questionsCount}
		if len(texts) > 0 {
			input.JobDescription = texts[0]
		}
		return input, nil
	}

	logDetails := func(input types.QuestionsInput, cfg common.CommandConfig) {
		logger.Info("Starting interview question generation",
			"count", input.Count,
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	questionsOperation := func(ctx context.Context, input types.QuestionsInput) (types.QuestionsOutput, *ai.TokenUsage, string, error) {
		output, usage, notice, err := aiService.GenerateQuestions(ctx, input, nil)
		output.Notice = notice
		return output, usage, notice, err
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		questionsConfig,
		args[0],
		args[1:],
		createInput,
		questionsOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate questions: %w", err)
	}
	logger.Info("Question generation completed successfully")
	return nil
}
