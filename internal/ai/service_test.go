package ai

import (
	"context"
	"log/slog"
	"testing"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// failingProvider simulates a live provider whose every call fails.
type failingProvider struct{}

var _ AIProvider = (*failingProvider)(nil)

func (p *failingProvider) fail() error {
	return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "simulated network failure", nil)
}

func (p *failingProvider) EnhanceAnalysis(ctx context.Context, input types.AnalyzeInput, match types.MatchResult) (types.EnhancedAnalysis, *TokenUsage, error) {
	return types.EnhancedAnalysis{}, nil, p.fail()
}

func (p *failingProvider) GenerateQuestions(ctx context.Context, input types.QuestionsInput, excerpts []string) (types.QuestionsOutput, *TokenUsage, error) {
	return types.QuestionsOutput{}, nil, p.fail()
}

func (p *failingProvider) GenerateQA(ctx context.Context, input types.QAInput, excerpts []string) (types.QAOutput, *TokenUsage, error) {
	return types.QAOutput{}, nil, p.fail()
}

func (p *failingProvider) ImproveResume(ctx context.Context, input types.ImproveInput) (types.ImprovedResume, *TokenUsage, error) {
	return types.ImprovedResume{}, nil, p.fail()
}

func (p *failingProvider) Name() string { return "failing" }

func (p *failingProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Name: "failing", Available: false}
}

func (p *failingProvider) Close() error { return nil }

func newTestService(provider AIProvider) *Service {
	fallback := NewFallbackProvider(nil)
	if provider == nil {
		provider = fallback
	}
	return &Service{
		Provider: provider,
		fallback: fallback,
		logger:   errors.NewLogger(slog.LevelError, "text"),
	}
}

func TestServiceDegradesToFallbackOnProviderFailure(t *testing.T) {
	svc := newTestService(&failingProvider{})
	ctx := context.Background()

	input := types.AnalyzeInput{
		ResumeText:     "Python engineer with Docker experience",
		JobDescription: "Looking for Python and AWS",
	}
	match := types.MatchResult{
		MatchedSkills: []string{"python"},
		MissingSkills: []types.MissingSkill{{Name: "aws", Importance: types.ImportanceHigh}},
		ATSScore:      55,
	}

	enhanced, _, notice, err := svc.EnhanceAnalysis(ctx, input, match)
	if err != nil {
		t.Fatalf("expected fallback result, got error: %v", err)
	}
	if notice != NoticeFallback {
		t.Errorf("notice = %q, want fallback notice", notice)
	}
	if enhanced.Summary == "" {
		t.Error("fallback enhanced analysis has empty summary")
	}
	if len(enhanced.Gaps) != 1 {
		t.Errorf("Gaps = %v, want one entry for aws", enhanced.Gaps)
	}
}

func TestServiceNoNoticeOnLiveProviderSuccess(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	out, _, notice, err := svc.GenerateQA(ctx, types.QAInput{Topic: "general", ResumeText: "Python"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notice != "" {
		t.Errorf("notice = %q, want empty when provider answered directly", notice)
	}
	if len(out.Pairs) == 0 {
		t.Error("expected Q&A pairs from the static bank")
	}
}

func TestServiceAllOperationsSurviveProviderFailure(t *testing.T) {
	svc := newTestService(&failingProvider{})
	ctx := context.Background()

	t.Run("questions", func(t *testing.T) {
		out, _, notice, err := svc.GenerateQuestions(ctx,
			types.QuestionsInput{ResumeText: "Python and SQL", JobDescription: "Python role", Count: 3}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if notice == "" {
			t.Error("expected fallback notice")
		}
		if len(out.Questions) != 3 {
			t.Errorf("got %d questions, want 3", len(out.Questions))
		}
	})

	t.Run("qa", func(t *testing.T) {
		out, _, notice, err := svc.GenerateQA(ctx,
			types.QAInput{ResumeText: "Python", Topic: "kubernetes operations"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if notice == "" {
			t.Error("expected fallback notice")
		}
		if len(out.Pairs) == 0 {
			t.Error("expected a generic Q&A pair for unknown topic")
		}
	})

	t.Run("improve", func(t *testing.T) {
		out, _, notice, err := svc.ImproveResume(ctx, types.ImproveInput{
			ResumeText: "• Python engineer\n\n\n\nExperience",
			Level:      types.EnhancementLight,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if notice == "" {
			t.Error("expected fallback notice")
		}
		if out.Content == "" {
			t.Error("fallback improve returned empty content")
		}
		if out.EnhancementLevel != types.EnhancementLight {
			t.Errorf("EnhancementLevel = %s, want light", out.EnhancementLevel)
		}
	})
}

func TestFallbackProviderQuestionsPreferMatchedSkills(t *testing.T) {
	provider := NewFallbackProvider(nil)
	out, _, err := provider.GenerateQuestions(context.Background(), types.QuestionsInput{
		ResumeText:     "Built services in Go with PostgreSQL",
		JobDescription: "Go and PostgreSQL backend role",
		Count:          2,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(out.Questions))
	}
	for _, q := range out.Questions {
		if q.SampleAnswer == "" || q.LookingFor == "" {
			t.Errorf("question %q lacks coaching material", q.Question)
		}
	}
}
