package common

import (
	"context"
	"fmt"
	"os"

	"resumelens/internal/ai"
	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// CreateInputFunc builds the operation input from the parsed resume and
// any additional text files (job descriptions, notes).
type CreateInputFunc[Input any] func(resume *types.ResumeDocument, texts []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// AIOperationFunc is a generic function signature for any AI operation.
// The string return carries a degradation notice when the deterministic
// fallback produced the result instead of the configured provider.
type AIOperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, string, error)

// RunAICommand encapsulates the common logic for resume-based CLI
// commands: read and parse the resume, read companion text files, run
// the operation, report token usage, and write the formatted output.
func RunAICommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	resumeFile string,
	textFiles []string,
	createInput CreateInputFunc[Input],
	aiOperation AIOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	resume, err := fileProcessor.ReadResume(resumeFile)
	if err != nil {
		return err
	}

	texts, err := fileProcessor.ValidateAndReadFiles(textFiles...)
	if err != nil {
		return err
	}

	input, err := createInput(resume, texts)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, tokenUsage, notice, err := aiOperation(ctx, input)
	if err != nil {
		return err
	}

	if notice != "" {
		if logger != nil {
			logger.Warn("AI provider unavailable, result produced without enhancement", "notice", notice)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", notice)
		}
	}

	// Report token usage
	if tokenUsage != nil {
		if logger != nil {
			logger.Info("AI token usage", "input_tokens", tokenUsage.InputTokens, "output_tokens", tokenUsage.OutputTokens, "total_tokens", tokenUsage.TotalTokens)
		} else {
			fmt.Fprintf(os.Stderr, "AI token usage: input=%d, output=%d, total=%d\n", tokenUsage.InputTokens, tokenUsage.OutputTokens, tokenUsage.TotalTokens)
		}
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
