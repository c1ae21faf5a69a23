package config

import (
	"fmt"
	"os"
	"strings"
)

// maxPromptFileSize caps external prompt files so a misconfigured path
// (pointing at a resume dump, say) cannot balloon every AI request.
const maxPromptFileSize = 64 * 1024

// loadPromptsFromFiles resolves every *File prompt field into its inline
// counterpart. Inline prompts win over files so a config file can
// override a deployed prompt directory without editing it.
func (c *Config) loadPromptsFromFiles() error {
	prompts := []*PromptConfig{
		&c.AI.CustomPrompts,
		&c.AI.Enhance.CustomPrompts,
		&c.AI.Questions.CustomPrompts,
		&c.AI.QA.CustomPrompts,
		&c.AI.Improve.CustomPrompts,
	}

	for _, p := range prompts {
		pairs := []struct {
			file string
			dst  *string
		}{
			{p.SystemPrompts.EnhanceAnalysisFile, &p.SystemPrompts.EnhanceAnalysis},
			{p.SystemPrompts.GenerateQuestionsFile, &p.SystemPrompts.GenerateQuestions},
			{p.SystemPrompts.GenerateQAFile, &p.SystemPrompts.GenerateQA},
			{p.SystemPrompts.ImproveResumeFile, &p.SystemPrompts.ImproveResume},
			{p.UserPrompts.EnhanceAnalysisFile, &p.UserPrompts.EnhanceAnalysis},
			{p.UserPrompts.GenerateQuestionsFile, &p.UserPrompts.GenerateQuestions},
			{p.UserPrompts.GenerateQAFile, &p.UserPrompts.GenerateQA},
			{p.UserPrompts.ImproveResumeFile, &p.UserPrompts.ImproveResume},
		}

		for _, pair := range pairs {
			if pair.file == "" || *pair.dst != "" {
				continue
			}
			content, err := readPromptFile(pair.file)
			if err != nil {
				return err
			}
			*pair.dst = content
		}
	}

	return nil
}

func readPromptFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("prompt file %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("prompt file %s is a directory", path)
	}
	if info.Size() > maxPromptFileSize {
		return "", fmt.Errorf("prompt file %s exceeds %d bytes", path, maxPromptFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt file %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}

	return content, nil
}
