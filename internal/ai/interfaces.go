package ai

import (
	"context"

	"resumelens/internal/types"
)

// AIProvider is the generation backend for the augmentation layer.
// All methods return token usage information - callers can ignore it
// if not needed. The excerpts arguments carry retrieved resume chunks
// that ground the generation; providers may ignore them.
type AIProvider interface {
	EnhanceAnalysis(ctx context.Context, input types.AnalyzeInput, match types.MatchResult) (types.EnhancedAnalysis, *TokenUsage, error)
	GenerateQuestions(ctx context.Context, input types.QuestionsInput, excerpts []string) (types.QuestionsOutput, *TokenUsage, error)
	GenerateQA(ctx context.Context, input types.QAInput, excerpts []string) (types.QAOutput, *TokenUsage, error)
	ImproveResume(ctx context.Context, input types.ImproveInput) (types.ImprovedResume, *TokenUsage, error)
	Name() string
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
