package ai

import (
	"context"
	"fmt"
	"strings"

	"resumelens/internal/parser"
	"resumelens/internal/skills"
	"resumelens/internal/types"
)

// FallbackProvider is the deterministic AIProvider used when no API
// key is configured or the live provider fails. It never errors and
// never calls the network, so callers can rely on it as the terminal
// degradation step.
type FallbackProvider struct {
	analyzer *skills.Analyzer
}

var _ AIProvider = (*FallbackProvider)(nil)

// NewFallbackProvider builds a deterministic provider over the given
// analyzer (nil selects the default vocabulary).
func NewFallbackProvider(analyzer *skills.Analyzer) *FallbackProvider {
	if analyzer == nil {
		analyzer = skills.NewAnalyzer(nil)
	}
	return &FallbackProvider{analyzer: analyzer}
}

// Name implements AIProvider
func (f *FallbackProvider) Name() string { return "fallback" }

// GetModelInfo implements AIProvider
func (f *FallbackProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{
		Name:        "deterministic-fallback",
		DisplayName: "Deterministic heuristics (no AI)",
		Available:   true,
	}
}

// Close implements AIProvider
func (f *FallbackProvider) Close() error { return nil }

// EnhanceAnalysis assembles the enhanced view from the deterministic
// match result alone.
func (f *FallbackProvider) EnhanceAnalysis(ctx context.Context, input types.AnalyzeInput, match types.MatchResult) (types.EnhancedAnalysis, *TokenUsage, error) {
	out := types.EnhancedAnalysis{
		Summary: fmt.Sprintf(
			"The resume matches %d of the job's skill requirements (ATS score %.1f/100, %.0f%% keyword coverage).",
			len(match.MatchedSkills), match.ATSScore, match.CoverageRatio*100),
	}

	for _, s := range match.MatchedSkills {
		out.Strengths = append(out.Strengths,
			fmt.Sprintf("Demonstrated experience with %s, which the role explicitly asks for.", s))
	}
	for _, m := range match.MissingSkills {
		out.Gaps = append(out.Gaps,
			fmt.Sprintf("%s (%s importance) is required but not evident in the resume.", m.Name, m.Importance))
	}
	out.Recommendations = match.Suggestions
	if len(out.Recommendations) == 0 {
		out.Recommendations = f.analyzer.Suggestions(input.ResumeText, match)
	}

	return out, nil, nil
}

// questionBank holds the static interview questions used without AI.
// Skill-specific questions are generated per matched skill on top of
// these.
var questionBank = []types.InterviewQuestion{
	{
		Question:     "Tell me about yourself and your background.",
		SampleAnswer: "Walk through your most recent roles, anchoring each on one achievement from your resume.",
		LookingFor:   "A concise narrative that connects past experience to this role.",
	},
	{
		Question:     "Describe a challenging project and how you handled it.",
		SampleAnswer: "Pick a project from your experience section; describe the constraint, your action, and a measurable outcome.",
		LookingFor:   "Ownership, structured problem solving, and quantified results.",
	},
	{
		Question:     "Why are you interested in this role?",
		SampleAnswer: "Relate the job description's requirements to the skills listed on your resume.",
		LookingFor:   "Evidence the candidate understands the role and has matching experience.",
	},
	{
		Question:     "How do you approach learning new technologies?",
		SampleAnswer: "Give a concrete example of a tool on your resume you picked up on the job.",
		LookingFor:   "Self-direction and a repeatable learning process.",
	},
}

// GenerateQuestions produces interview questions from the static bank
// plus one targeted question per skill shared by resume and job.
func (f *FallbackProvider) GenerateQuestions(ctx context.Context, input types.QuestionsInput, excerpts []string) (types.QuestionsOutput, *TokenUsage, error) {
	count := input.Count
	if count <= 0 {
		count = 5
	}

	out := types.QuestionsOutput{Questions: []types.InterviewQuestion{}}

	match := f.analyzer.Match(input.ResumeText, input.JobDescription)
	for _, skill := range match.MatchedSkills {
		if len(out.Questions) >= count {
			break
		}
		out.Questions = append(out.Questions, types.InterviewQuestion{
			Question:     fmt.Sprintf("Can you walk me through your experience with %s?", skill),
			SampleAnswer: fmt.Sprintf("Describe a specific project where you used %s, the problem it solved, and the result.", skill),
			LookingFor:   fmt.Sprintf("Hands-on depth with %s rather than familiarity in passing.", skill),
		})
	}
	for _, q := range questionBank {
		if len(out.Questions) >= count {
			break
		}
		out.Questions = append(out.Questions, q)
	}

	return out, nil, nil
}

// fallbackQABank holds static Q&A pairs per topic.
var fallbackQABank = map[string][]types.QAPair{
	"general": {
		{
			Question: "Tell me about yourself and your background.",
			Answer:   "Based on your resume, highlight your key experiences, skills, and achievements that make you a strong candidate for this role.",
		},
		{
			Question: "What are your key strengths?",
			Answer:   "Focus on the technical and soft skills prominently featured in your resume and provide specific examples.",
		},
	},
	"technical skills": {
		{
			Question: "Describe your technical expertise and experience.",
			Answer:   "Reference the programming languages, tools, and technologies listed in your resume with specific project examples.",
		},
		{
			Question: "How do you approach learning new technologies?",
			Answer:   "Discuss your continuous learning approach and how you've applied new skills in your projects.",
		},
	},
}

// GenerateQA returns the static Q&A bank for the topic, or a generic
// pair when the topic is unknown.
func (f *FallbackProvider) GenerateQA(ctx context.Context, input types.QAInput, excerpts []string) (types.QAOutput, *TokenUsage, error) {
	topic := strings.ToLower(strings.TrimSpace(input.Topic))
	if pairs, ok := fallbackQABank[topic]; ok {
		return types.QAOutput{Pairs: pairs}, nil, nil
	}
	return types.QAOutput{Pairs: []types.QAPair{
		{
			Question: fmt.Sprintf("Tell me about your experience with %s.", input.Topic),
			Answer:   "Based on your resume, provide specific examples and achievements related to this topic.",
		},
	}}, nil, nil
}

// ImproveResume applies rule-based cleanup: normalization plus an
// appended suggestions section. It cannot rewrite prose, so the
// changes it reports are purely mechanical.
func (f *FallbackProvider) ImproveResume(ctx context.Context, input types.ImproveInput) (types.ImprovedResume, *TokenUsage, error) {
	normalized := parser.NormalizeText(input.ResumeText)

	var changes []string
	if normalized != strings.TrimSpace(input.ResumeText) {
		changes = append(changes, "Normalized whitespace, bullets and line breaks.")
	}

	match := f.analyzer.Match(input.ResumeText, input.JobDescription)
	suggestions := match.Suggestions

	var b strings.Builder
	b.WriteString(normalized)
	if len(suggestions) > 0 {
		b.WriteString("\n\nSuggested improvements\n")
		for _, s := range suggestions {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
		changes = append(changes, "Appended a suggested-improvements section derived from keyword analysis.")
	}
	if len(changes) == 0 {
		changes = append(changes, "No mechanical improvements applicable.")
	}

	return types.ImprovedResume{
		Content:          b.String(),
		ChangesSummary:   changes,
		EnhancementLevel: input.Level,
	}, nil, nil
}
