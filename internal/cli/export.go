package cli

import (
	"fmt"

	"resumelens/internal/common"
	"resumelens/internal/export"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [input-file]",
	Short: "Render resume text to a DOCX or PDF document",
	Long: `Render resume text (typically the output of the improve command) to a
binary document. The input may be plain text, Markdown-ish text with
"- " bullets, or an existing PDF/DOCX whose text is re-rendered.

PDF rendering drives a headless Chromium; the browser must be
installed on the host. DOCX rendering has no external dependency.

There is no fallback between formats: a failed PDF render is an error,
not a DOCX.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportFormat string
	exportOut    string
	exportTitle  string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "docx", "Export format: docx or pdf")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path (required)")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "Document title (default: derived from the file name)")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	fileProcessor := common.NewFileProcessor(logger)
	doc, err := fileProcessor.ReadResume(args[0])
	if err != nil {
		return err
	}

	exportDoc := types.ExportDocument{
		Title:    exportTitle,
		Body:     doc.Text,
		Sections: doc.Sections,
	}

	logger.Info("Starting export",
		"format", string(format),
		"input", args[0],
		"output", exportOut)

	exporter := export.NewExporter(logger)
	data, err := exporter.Render(cmd.Context(), format, exportDoc)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleBinaryOutput(data, exportOut); err != nil {
		return err
	}

	logger.Info("Export completed successfully",
		"format", string(format),
		"bytes", len(data),
		"output", exportOut)
	return nil
}
