package ai

import (
	"context"
	"fmt"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/skills"
	"resumelens/internal/types"
)

// NoticeFallback is attached to results produced by the deterministic
// fallback after the live provider failed.
const NoticeFallback = "AI enhancement unavailable; results were produced by the deterministic analyzer."

// Service handles one AI operation type, degrading to the
// deterministic fallback provider when the live provider is
// unavailable or fails. A Service call never returns an error to the
// user path: the fallback is total.
type Service struct {
	Provider AIProvider // Exported for access from server package
	fallback *FallbackProvider
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, analyzer *skills.Analyzer, logger *errors.Logger) (*Service, error) {
	fallback := NewFallbackProvider(analyzer)

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"has_api_key", cfg.APIKey != "")

	var provider AIProvider
	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			// Missing key selects fallback mode rather than failing.
			logger.Warn("No API key configured, running in fallback mode",
				"operation_type", operationType)
			provider = fallback
			break
		}
		gemini, err := NewGeminiProvider(cfg, operationType, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
				"Failed to create AI provider", err)
		}
		provider = gemini
	case "fallback":
		provider = fallback
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	return &Service{
		Provider: provider,
		fallback: fallback,
		config:   cfg,
		logger:   logger,
	}, nil
}

// InFallbackMode reports whether the service runs without a live
// provider.
func (s *Service) InFallbackMode() bool {
	return s.Provider.Name() == s.fallback.Name()
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases provider resources.
func (s *Service) Close() error {
	return s.Provider.Close()
}

// runWithFallback executes op against the live provider and retries it
// against the deterministic fallback when the live call fails. The
// returned notice is non-empty iff the fallback answered after a live
// failure.
func runWithFallback[Out any](
	s *Service,
	operation string,
	op func(AIProvider) (Out, *TokenUsage, error),
) (Out, *TokenUsage, string, error) {
	out, usage, err := op(s.Provider)
	if err == nil {
		return out, usage, "", nil
	}
	if s.InFallbackMode() {
		// Already on the fallback provider; nothing further to degrade to.
		return out, usage, "", err
	}

	s.logger.LogError(err, "AI operation failed, degrading to deterministic fallback",
		"operation", operation)

	out, usage, err = op(s.fallback)
	return out, usage, NoticeFallback, err
}

// EnhanceAnalysis augments a deterministic match result, degrading to
// the fallback rendering on provider failure.
func (s *Service) EnhanceAnalysis(ctx context.Context, input types.AnalyzeInput, match types.MatchResult) (types.EnhancedAnalysis, *TokenUsage, string, error) {
	return runWithFallback(s, "enhance_analysis", func(p AIProvider) (types.EnhancedAnalysis, *TokenUsage, error) {
		return p.EnhanceAnalysis(ctx, input, match)
	})
}

// GenerateQuestions generates interview questions with fallback.
func (s *Service) GenerateQuestions(ctx context.Context, input types.QuestionsInput, excerpts []string) (types.QuestionsOutput, *TokenUsage, string, error) {
	return runWithFallback(s, "generate_questions", func(p AIProvider) (types.QuestionsOutput, *TokenUsage, error) {
		return p.GenerateQuestions(ctx, input, excerpts)
	})
}

// GenerateQA generates topic-scoped Q&A pairs with fallback.
func (s *Service) GenerateQA(ctx context.Context, input types.QAInput, excerpts []string) (types.QAOutput, *TokenUsage, string, error) {
	return runWithFallback(s, "generate_qa", func(p AIProvider) (types.QAOutput, *TokenUsage, error) {
		return p.GenerateQA(ctx, input, excerpts)
	})
}

// ImproveResume rewrites a resume with fallback.
func (s *Service) ImproveResume(ctx context.Context, input types.ImproveInput) (types.ImprovedResume, *TokenUsage, string, error) {
	return runWithFallback(s, "improve_resume", func(p AIProvider) (types.ImprovedResume, *TokenUsage, error) {
		return p.ImproveResume(ctx, input)
	})
}
