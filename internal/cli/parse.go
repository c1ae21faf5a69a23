package cli

import (
	"fmt"

	"resumelens/internal/common"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Extract and normalize text from a resume document",
	Long: `Parse a PDF, DOCX or plain text resume and print the normalized
document: extracted text, detected sections and word count. Useful for
checking what the analyzer actually sees before running a match.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	doc, err := fileProcessor.ReadResume(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}

	logger.Info("Resume parsed",
		"file", args[0],
		"format", string(doc.SourceFormat),
		"words", doc.WordCount,
		"sections", len(doc.Sections))

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(doc, parseConfig)
}
