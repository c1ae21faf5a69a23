package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumelens/internal/types"
)

func sampleMatch() types.MatchResult {
	return types.MatchResult{
		MatchedSkills: []string{"go", "python"},
		MissingSkills: []types.MissingSkill{
			{Name: "kubernetes", Importance: types.ImportanceHigh},
		},
		ATSScore:      72.5,
		CoverageRatio: 0.67,
		Suggestions:   []string{"Add kubernetes experience"},
	}
}

func TestFormatJSON(t *testing.T) {
	registry := NewFormatterRegistry()

	output, err := registry.Format(sampleMatch(), "json")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded types.MatchResult
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.ATSScore != 72.5 {
		t.Errorf("round-tripped ATSScore = %v, want 72.5", decoded.ATSScore)
	}
}

func TestFormatMatchText(t *testing.T) {
	registry := NewFormatterRegistry()

	output, err := registry.Format(sampleMatch(), "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{
		"ATS Score: 72.50/100",
		"- go",
		"- kubernetes (high)",
		"Add kubernetes experience",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatAnalyzeMarkdown(t *testing.T) {
	registry := NewFormatterRegistry()

	result := types.AnalyzeOutput{
		Match: sampleMatch(),
		Enhanced: &types.EnhancedAnalysis{
			Summary:         "Strong backend profile.",
			Strengths:       []string{"Production Go experience"},
			Gaps:            []string{"No container orchestration"},
			Recommendations: []string{"Highlight any k8s exposure"},
		},
	}

	output, err := registry.Format(result, "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{
		"# Resume Analysis",
		"## AI Assessment",
		"Strong backend profile.",
		"- Production Go experience",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestFormatAnalyzeTextWithoutEnhancement(t *testing.T) {
	registry := NewFormatterRegistry()

	output, err := registry.Format(types.AnalyzeOutput{Match: sampleMatch()}, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(output, "AI ASSESSMENT") {
		t.Error("text output should omit the AI section when enhancement is absent")
	}
}

func TestFormatQuestionsText(t *testing.T) {
	registry := NewFormatterRegistry()

	result := types.QuestionsOutput{
		Questions: []types.InterviewQuestion{
			{
				Question:     "Describe a service you scaled.",
				SampleAnswer: "I sharded the ingest pipeline.",
				LookingFor:   "Concrete metrics",
			},
		},
		Notice: "AI enhancement unavailable",
	}

	output, err := registry.Format(result, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	for _, want := range []string{
		"1. Describe a service you scaled.",
		"Sample answer: I sharded the ingest pipeline.",
		"Note: AI enhancement unavailable",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("questions output missing %q", want)
		}
	}
}

func TestFormatImproveText(t *testing.T) {
	registry := NewFormatterRegistry()

	result := types.ImprovedResume{
		Content:          "Jane Doe\nImproved body",
		ChangesSummary:   []string{"Tightened summary", "Added metrics"},
		EnhancementLevel: types.EnhancementModerate,
	}

	output, err := registry.Format(result, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	for _, want := range []string{"IMPROVED RESUME (moderate)", "Tightened summary", "Added metrics"} {
		if !strings.Contains(output, want) {
			t.Errorf("improve output missing %q", want)
		}
	}
}

func TestFormatUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()

	if _, err := registry.Format(sampleMatch(), "yaml"); err == nil {
		t.Error("Format() = nil, want error for unknown format")
	}
}

func TestUnknownTypeFallsBackToJSON(t *testing.T) {
	registry := NewFormatterRegistry()

	output, err := registry.Format(map[string]int{"a": 1}, "json")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(output, "\"a\": 1") {
		t.Errorf("generic JSON output unexpected: %s", output)
	}
}
