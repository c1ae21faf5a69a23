package common

import (
	"fmt"

	"resumelens/internal/errors"
	"resumelens/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		err = oh.fileProcessor.WriteFile(config.OutputFile, output)
		if err != nil {
			return err // Error already wrapped by WriteFile
		}

		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
	} else {
		fmt.Print(output)
	}

	return nil
}

// HandleBinaryOutput writes rendered export bytes. Exports never print
// to stdout unless explicitly asked with "-": DOCX and PDF payloads
// would garble a terminal.
func (oh *OutputHandler) HandleBinaryOutput(data []byte, outputFile string) error {
	if outputFile == "-" {
		_, err := fmt.Print(string(data))
		return err
	}
	if outputFile == "" {
		return errors.NewValidationError("OUTPUT_FILE_REQUIRED",
			"An output file is required for binary export formats", nil)
	}

	if err := oh.fileProcessor.ValidateOutputFile(outputFile); err != nil {
		return err
	}

	if err := oh.fileProcessor.WriteFileBytes(outputFile, data); err != nil {
		return err
	}

	oh.logger.Info("Export written successfully",
		"file", outputFile, "bytes", len(data))
	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
