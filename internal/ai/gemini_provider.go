package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumelens/internal/config"
	lensErrors "resumelens/internal/errors"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// Input truncation limits keep prompts inside model context without
// failing on very long documents.
const (
	maxResumeChars = 3000
	maxJobChars    = 2000
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *lensErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *lensErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, lensErrors.NewAIError(lensErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// Name implements AIProvider
func (g *GeminiProvider) Name() string { return "gemini" }

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection issues) are worth retrying
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Google API errors by HTTP status code
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeAIOperation is a generic helper to run AI operations with common tracing, circuit breaker, and parsing logic.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("resumelens.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, lensErrors.NewAIError(lensErrors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, lensErrors.NewAIError("AI_RESPONSE_PARSE_FAILED", "Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// EnhanceAnalysis implements AIProvider for AI-augmented match analysis
func (g *GeminiProvider) EnhanceAnalysis(ctx context.Context, input types.AnalyzeInput, match types.MatchResult) (types.EnhancedAnalysis, *TokenUsage, error) {
	missing := make([]string, 0, len(match.MissingSkills))
	for _, m := range match.MissingSkills {
		missing = append(missing, fmt.Sprintf("%s (%s)", m.Name, m.Importance))
	}

	userPrompt := fmt.Sprintf(g.getUserPrompt("enhance"),
		strings.Join(match.MatchedSkills, ", "),
		strings.Join(missing, ", "),
		match.ATSScore,
		truncate(input.ResumeText, maxResumeChars),
		truncate(input.JobDescription, maxJobChars),
	)

	output, tokenUsage, err := executeAIOperation[types.EnhancedAnalysis](
		g,
		ctx,
		"enhance_analysis",
		userPrompt,
		g.getSystemPrompt("enhance"),
		g.buildEnhanceSchema(),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Float64("ats.score", match.ATSScore),
	)
	if err != nil {
		return types.EnhancedAnalysis{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.strengths_count", len(output.Strengths)),
			attribute.Int("output.gaps_count", len(output.Gaps)),
		)
	}

	return output, tokenUsage, nil
}

// GenerateQuestions implements AIProvider for interview question generation
func (g *GeminiProvider) GenerateQuestions(ctx context.Context, input types.QuestionsInput, excerpts []string) (types.QuestionsOutput, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(g.getUserPrompt("questions"),
		input.Count,
		excerptBlock(excerpts, input.ResumeText),
		truncate(input.JobDescription, maxJobChars),
	)

	output, tokenUsage, err := executeAIOperation[types.QuestionsOutput](
		g,
		ctx,
		"generate_questions",
		userPrompt,
		g.getSystemPrompt("questions"),
		g.buildQuestionsSchema(),
		attribute.Int("input.question_count", input.Count),
		attribute.Int("input.excerpt_count", len(excerpts)),
	)
	if err != nil {
		return types.QuestionsOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("output.questions_count", len(output.Questions)))
	}

	return output, tokenUsage, nil
}

// GenerateQA implements AIProvider for topic-scoped Q&A generation
func (g *GeminiProvider) GenerateQA(ctx context.Context, input types.QAInput, excerpts []string) (types.QAOutput, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(g.getUserPrompt("qa"),
		input.Count,
		input.Topic,
		excerptBlock(excerpts, input.ResumeText),
		input.Topic,
	)

	output, tokenUsage, err := executeAIOperation[types.QAOutput](
		g,
		ctx,
		"generate_qa",
		userPrompt,
		g.getSystemPrompt("qa"),
		g.buildQASchema(),
		attribute.String("input.topic", input.Topic),
		attribute.Int("input.excerpt_count", len(excerpts)),
	)
	if err != nil {
		return types.QAOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("output.pairs_count", len(output.Pairs)))
	}

	return output, tokenUsage, nil
}

// ImproveResume implements AIProvider for resume rewriting
func (g *GeminiProvider) ImproveResume(ctx context.Context, input types.ImproveInput) (types.ImprovedResume, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(g.getUserPrompt("improve"),
		string(input.Level),
		input.ResumeText,
		truncate(input.JobDescription, maxJobChars),
	)

	output, tokenUsage, err := executeAIOperation[types.ImprovedResume](
		g,
		ctx,
		"improve_resume",
		userPrompt,
		g.getSystemPrompt("improve"),
		g.buildImproveSchema(),
		attribute.String("input.level", string(input.Level)),
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)
	if err != nil {
		return types.ImprovedResume{}, nil, err
	}

	output.EnhancementLevel = input.Level

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.content_length", len(output.Content)),
			attribute.Int("output.changes_count", len(output.ChangesSummary)),
		)
	}

	return output, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetStats(),
	}
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy()
	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// The genai client has no Close in single-shot usage
	return nil
}

func (g *GeminiProvider) newGenerateConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	return cfg
}

// buildEnhanceSchema creates the response schema for enhanced analysis
func (g *GeminiProvider) buildEnhanceSchema() *genai.GenerateContentConfig {
	return g.newGenerateConfig(&genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
			"strengths": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"gaps": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"recommendations": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"summary", "strengths", "gaps", "recommendations"},
	})
}

// buildQuestionsSchema creates the response schema for interview questions
func (g *GeminiProvider) buildQuestionsSchema() *genai.GenerateContentConfig {
	return g.newGenerateConfig(&genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question":     {Type: genai.TypeString},
						"sampleAnswer": {Type: genai.TypeString},
						"lookingFor":   {Type: genai.TypeString},
					},
					Required: []string{"question", "sampleAnswer", "lookingFor"},
				},
			},
		},
		Required: []string{"questions"},
	})
}

// buildQASchema creates the response schema for Q&A generation
func (g *GeminiProvider) buildQASchema() *genai.GenerateContentConfig {
	return g.newGenerateConfig(&genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"pairs": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question": {Type: genai.TypeString},
						"answer":   {Type: genai.TypeString},
					},
					Required: []string{"question", "answer"},
				},
			},
		},
		Required: []string{"pairs"},
	})
}

// buildImproveSchema creates the response schema for resume rewriting
func (g *GeminiProvider) buildImproveSchema() *genai.GenerateContentConfig {
	return g.newGenerateConfig(&genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"content": {Type: genai.TypeString},
			"changesSummary": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"content", "changesSummary"},
	})
}

// getSystemPrompt returns the appropriate system prompt
func (g *GeminiProvider) getSystemPrompt(promptType string) string {
	custom := g.config.CustomPrompts.SystemPrompts
	switch promptType {
	case "enhance":
		return resolvePrompt(custom.EnhanceAnalysis, DefaultSystemPrompts.EnhanceAnalysis)
	case "questions":
		return resolvePrompt(custom.GenerateQuestions, DefaultSystemPrompts.GenerateQuestions)
	case "qa":
		return resolvePrompt(custom.GenerateQA, DefaultSystemPrompts.GenerateQA)
	case "improve":
		return resolvePrompt(custom.ImproveResume, DefaultSystemPrompts.ImproveResume)
	default:
		return ""
	}
}

// getUserPrompt returns the appropriate user prompt template
func (g *GeminiProvider) getUserPrompt(promptType string) string {
	custom := g.config.CustomPrompts.UserPrompts
	switch promptType {
	case "enhance":
		return resolvePrompt(custom.EnhanceAnalysis, DefaultUserPrompts.EnhanceAnalysis)
	case "questions":
		return resolvePrompt(custom.GenerateQuestions, DefaultUserPrompts.GenerateQuestions)
	case "qa":
		return resolvePrompt(custom.GenerateQA, DefaultUserPrompts.GenerateQA)
	case "improve":
		return resolvePrompt(custom.ImproveResume, DefaultUserPrompts.ImproveResume)
	default:
		return ""
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// excerptBlock joins retrieved chunks for prompt inclusion, falling
// back to the truncated full text when retrieval produced nothing.
func excerptBlock(excerpts []string, fullText string) string {
	if len(excerpts) == 0 {
		return truncate(fullText, maxResumeChars)
	}
	return strings.Join(excerpts, "\n---\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
