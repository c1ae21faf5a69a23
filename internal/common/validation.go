package common

import (
	"fmt"
	"slices"
	"strings"

	"resumelens/internal/types"
)

// Question count bounds for the questions and qa commands.
const (
	MinQuestionCount = 1
	MaxQuestionCount = 20
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateEnhancementLevel checks the --level flag of the improve command.
func ValidateEnhancementLevel(level string) (types.EnhancementLevel, error) {
	switch types.EnhancementLevel(strings.ToLower(strings.TrimSpace(level))) {
	case types.EnhancementLight:
		return types.EnhancementLight, nil
	case types.EnhancementModerate, "":
		return types.EnhancementModerate, nil
	case types.EnhancementFull:
		return types.EnhancementFull, nil
	}
	return "", fmt.Errorf("unsupported enhancement level '%s'. Supported levels: [light moderate full]", level)
}

// ValidateQuestionCount bounds the number of generated questions.
// Zero means "use the default" and is left for the caller to fill in.
func ValidateQuestionCount(count int) error {
	if count == 0 {
		return nil
	}
	if count < MinQuestionCount || count > MaxQuestionCount {
		return fmt.Errorf("question count %d out of range [%d, %d]",
			count, MinQuestionCount, MaxQuestionCount)
	}
	return nil
}

// ValidateTopic checks the --topic flag of the qa command.
func ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	return nil
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}
