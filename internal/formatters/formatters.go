package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumelens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry is the process-wide registry used by the CLI and server.
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "MatchResult", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchResult", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "AnalyzeOutput", &AnalyzeTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeOutput", &AnalyzeMarkdownFormatter{})
	registry.RegisterFormatter("text", "QuestionsOutput", &QuestionsTextFormatter{})
	registry.RegisterFormatter("markdown", "QuestionsOutput", &QuestionsMarkdownFormatter{})
	registry.RegisterFormatter("text", "QAOutput", &QATextFormatter{})
	registry.RegisterFormatter("markdown", "QAOutput", &QAMarkdownFormatter{})
	registry.RegisterFormatter("text", "ImprovedResume", &ImproveTextFormatter{})
	registry.RegisterFormatter("markdown", "ImprovedResume", &ImproveMarkdownFormatter{})
	registry.RegisterFormatter("text", "ResumeDocument", &ParseTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeDocument", &ParseMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchResult:
		return "MatchResult"
	case types.AnalyzeOutput:
		return "AnalyzeOutput"
	case types.QuestionsOutput:
		return "QuestionsOutput"
	case types.QAOutput:
		return "QAOutput"
	case types.ImprovedResume:
		return "ImprovedResume"
	case types.ResumeDocument, *types.ResumeDocument:
		return "ResumeDocument"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func writeMatchText(output *strings.Builder, result types.MatchResult) {
	output.WriteString(fmt.Sprintf("ATS Score: %.2f/100\n", result.ATSScore))
	output.WriteString(fmt.Sprintf("Coverage: %.0f%% of job skills found in resume\n\n", result.CoverageRatio*100))

	output.WriteString("Matched Skills:\n")
	if len(result.MatchedSkills) == 0 {
		output.WriteString("  (none)\n")
	}
	for _, skill := range result.MatchedSkills {
		output.WriteString(fmt.Sprintf("  - %s\n", skill))
	}
	output.WriteString("\nMissing Skills:\n")
	if len(result.MissingSkills) == 0 {
		output.WriteString("  (none)\n")
	}
	for _, skill := range result.MissingSkills {
		output.WriteString(fmt.Sprintf("  - %s (%s)\n", skill.Name, skill.Importance))
	}

	if len(result.Suggestions) > 0 {
		output.WriteString("\nSuggestions:\n")
		for _, s := range result.Suggestions {
			output.WriteString(fmt.Sprintf("  - %s\n", s))
		}
	}
	if result.FromCache {
		output.WriteString("\n(cached result)\n")
	}
	if result.AINotice != "" {
		output.WriteString(fmt.Sprintf("\nNote: %s\n", result.AINotice))
	}
}

func writeMatchMarkdown(output *strings.Builder, result types.MatchResult) {
	output.WriteString(fmt.Sprintf("**ATS Score:** %.2f/100\n\n", result.ATSScore))
	output.WriteString(fmt.Sprintf("**Coverage:** %.0f%% of job skills found in resume\n\n", result.CoverageRatio*100))

	output.WriteString("## Matched Skills\n\n")
	if len(result.MatchedSkills) == 0 {
		output.WriteString("_none_\n")
	}
	for _, skill := range result.MatchedSkills {
		output.WriteString(fmt.Sprintf("- %s\n", skill))
	}
	output.WriteString("\n## Missing Skills\n\n")
	if len(result.MissingSkills) == 0 {
		output.WriteString("_none_\n")
	}
	for _, skill := range result.MissingSkills {
		output.WriteString(fmt.Sprintf("- %s (%s)\n", skill.Name, skill.Importance))
	}

	if len(result.Suggestions) > 0 {
		output.WriteString("\n## Suggestions\n\n")
		for _, s := range result.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}
	if result.AINotice != "" {
		output.WriteString(fmt.Sprintf("\n> %s\n", result.AINotice))
	}
}

// MatchTextFormatter handles text formatting for deterministic match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== SKILLS MATCH ===\n\n")
	writeMatchText(&output, result)
	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return "MatchResult"
}

// MatchMarkdownFormatter handles markdown formatting for deterministic match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Skills Match\n\n")
	writeMatchMarkdown(&output, result)
	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return "MatchResult"
}

// AnalyzeTextFormatter handles text formatting for full analysis results
type AnalyzeTextFormatter struct{}

func (atf *AnalyzeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	writeMatchText(&output, result.Match)

	if result.Enhanced != nil {
		output.WriteString("\n=== AI ASSESSMENT ===\n\n")
		output.WriteString("Summary:\n")
		output.WriteString(result.Enhanced.Summary)
		output.WriteString("\n\nStrengths:\n")
		for _, s := range result.Enhanced.Strengths {
			output.WriteString(fmt.Sprintf("  - %s\n", s))
		}
		output.WriteString("\nGaps:\n")
		for _, g := range result.Enhanced.Gaps {
			output.WriteString(fmt.Sprintf("  - %s\n", g))
		}
		output.WriteString("\nRecommendations:\n")
		for _, r := range result.Enhanced.Recommendations {
			output.WriteString(fmt.Sprintf("  - %s\n", r))
		}
	}

	return output.String(), nil
}

func (atf *AnalyzeTextFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// AnalyzeMarkdownFormatter handles markdown formatting for full analysis results
type AnalyzeMarkdownFormatter struct{}

func (amf *AnalyzeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Analysis\n\n")
	writeMatchMarkdown(&output, result.Match)

	if result.Enhanced != nil {
		output.WriteString("\n## AI Assessment\n\n")
		output.WriteString(result.Enhanced.Summary)
		output.WriteString("\n\n### Strengths\n\n")
		for _, s := range result.Enhanced.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", s))
		}
		output.WriteString("\n### Gaps\n\n")
		for _, g := range result.Enhanced.Gaps {
			output.WriteString(fmt.Sprintf("- %s\n", g))
		}
		output.WriteString("\n### Recommendations\n\n")
		for _, r := range result.Enhanced.Recommendations {
			output.WriteString(fmt.Sprintf("- %s\n", r))
		}
	}

	return output.String(), nil
}

func (amf *AnalyzeMarkdownFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// QuestionsTextFormatter handles text formatting for interview questions
type QuestionsTextFormatter struct{}

func (qtf *QuestionsTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QuestionsOutput)
	if !ok {
		return "", fmt.Errorf("expected QuestionsOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== INTERVIEW QUESTIONS ===\n")
	for i, q := range result.Questions {
		output.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, q.Question))
		if q.SampleAnswer != "" {
			output.WriteString(fmt.Sprintf("   Sample answer: %s\n", q.SampleAnswer))
		}
		if q.LookingFor != "" {
			output.WriteString(fmt.Sprintf("   Interviewers look for: %s\n", q.LookingFor))
		}
	}
	if result.Notice != "" {
		output.WriteString(fmt.Sprintf("\nNote: %s\n", result.Notice))
	}

	return output.String(), nil
}

func (qtf *QuestionsTextFormatter) SupportedType() string {
	return "QuestionsOutput"
}

// QuestionsMarkdownFormatter handles markdown formatting for interview questions
type QuestionsMarkdownFormatter struct{}

func (qmf *QuestionsMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QuestionsOutput)
	if !ok {
		return "", fmt.Errorf("expected QuestionsOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Interview Questions\n")
	for i, q := range result.Questions {
		output.WriteString(fmt.Sprintf("\n## %d. %s\n\n", i+1, q.Question))
		if q.SampleAnswer != "" {
			output.WriteString(fmt.Sprintf("**Sample answer:** %s\n\n", q.SampleAnswer))
		}
		if q.LookingFor != "" {
			output.WriteString(fmt.Sprintf("**Interviewers look for:** %s\n", q.LookingFor))
		}
	}
	if result.Notice != "" {
		output.WriteString(fmt.Sprintf("\n> %s\n", result.Notice))
	}

	return output.String(), nil
}

func (qmf *QuestionsMarkdownFormatter) SupportedType() string {
	return "QuestionsOutput"
}

// QATextFormatter handles text formatting for topical Q&A pairs
type QATextFormatter struct{}

func (qtf *QATextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QAOutput)
	if !ok {
		return "", fmt.Errorf("expected QAOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== Q&A PREPARATION ===\n")
	for i, pair := range result.Pairs {
		output.WriteString(fmt.Sprintf("\nQ%d: %s\n", i+1, pair.Question))
		output.WriteString(fmt.Sprintf("A%d: %s\n", i+1, pair.Answer))
	}
	if result.Notice != "" {
		output.WriteString(fmt.Sprintf("\nNote: %s\n", result.Notice))
	}

	return output.String(), nil
}

func (qtf *QATextFormatter) SupportedType() string {
	return "QAOutput"
}

// QAMarkdownFormatter handles markdown formatting for topical Q&A pairs
type QAMarkdownFormatter struct{}

func (qmf *QAMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QAOutput)
	if !ok {
		return "", fmt.Errorf("expected QAOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Q&A Preparation\n")
	for _, pair := range result.Pairs {
		output.WriteString(fmt.Sprintf("\n**Q:** %s\n\n", pair.Question))
		output.WriteString(fmt.Sprintf("**A:** %s\n", pair.Answer))
	}
	if result.Notice != "" {
		output.WriteString(fmt.Sprintf("\n> %s\n", result.Notice))
	}

	return output.String(), nil
}

func (qmf *QAMarkdownFormatter) SupportedType() string {
	return "QAOutput"
}

// ImproveTextFormatter handles text formatting for improved resumes
type ImproveTextFormatter struct{}

func (itf *ImproveTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImprovedResume)
	if !ok {
		return "", fmt.Errorf("expected ImprovedResume, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("=== IMPROVED RESUME (%s) ===\n\n", result.EnhancementLevel))
	output.WriteString(result.Content)
	output.WriteString("\n")
	if len(result.ChangesSummary) > 0 {
		output.WriteString("\n=== CHANGES ===\n")
		for _, change := range result.ChangesSummary {
			output.WriteString(fmt.Sprintf("  - %s\n", change))
		}
	}
	if result.Notice != "" {
		output.WriteString(fmt.Sprintf("\nNote: %s\n", result.Notice))
	}

	return output.String(), nil
}

func (itf *ImproveTextFormatter) SupportedType() string {
	return "ImprovedResume"
}

// ImproveMarkdownFormatter handles markdown formatting for improved resumes
type ImproveMarkdownFormatter struct{}

func (imf *ImproveMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImprovedResume)
	if !ok {
		return "", fmt.Errorf("expected ImprovedResume, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# Improved Resume (%s)\n\n", result.EnhancementLevel))
	output.WriteString(result.Content)
	output.WriteString("\n")
	if len(result.ChangesSummary) > 0 {
		output.WriteString("\n## Changes\n\n")
		for _, change := range result.ChangesSummary {
			output.WriteString(fmt.Sprintf("- %s\n", change))
		}
	}
	if result.Notice != "" {
		output.WriteString(fmt.Sprintf("\n> %s\n", result.Notice))
	}

	return output.String(), nil
}

func (imf *ImproveMarkdownFormatter) SupportedType() string {
	return "ImprovedResume"
}

// ParseTextFormatter handles text formatting for parsed resume documents
type ParseTextFormatter struct{}

func asResumeDocument(data any) (types.ResumeDocument, bool) {
	switch doc := data.(type) {
	case types.ResumeDocument:
		return doc, true
	case *types.ResumeDocument:
		if doc != nil {
			return *doc, true
		}
	}
	return types.ResumeDocument{}, false
}

func (ptf *ParseTextFormatter) Format(data any) (string, error) {
	doc, ok := asResumeDocument(data)
	if !ok {
		return "", fmt.Errorf("expected ResumeDocument, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== PARSED RESUME ===\n")
	output.WriteString(fmt.Sprintf("File: %s\n", doc.FileName))
	output.WriteString(fmt.Sprintf("Format: %s\n", doc.SourceFormat))
	output.WriteString(fmt.Sprintf("Words: %d\n", doc.WordCount))
	if len(doc.Sections) > 0 {
		output.WriteString(fmt.Sprintf("Sections: %s\n", strings.Join(doc.Sections, ", ")))
	}
	output.WriteString("\n")
	output.WriteString(doc.Text)
	output.WriteString("\n")

	return output.String(), nil
}

func (ptf *ParseTextFormatter) SupportedType() string {
	return "ResumeDocument"
}

// ParseMarkdownFormatter handles markdown formatting for parsed resume documents
type ParseMarkdownFormatter struct{}

func (pmf *ParseMarkdownFormatter) Format(data any) (string, error) {
	doc, ok := asResumeDocument(data)
	if !ok {
		return "", fmt.Errorf("expected ResumeDocument, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Parsed Resume\n\n")
	output.WriteString(fmt.Sprintf("- **File:** %s\n", doc.FileName))
	output.WriteString(fmt.Sprintf("- **Format:** %s\n", doc.SourceFormat))
	output.WriteString(fmt.Sprintf("- **Words:** %d\n", doc.WordCount))
	if len(doc.Sections) > 0 {
		output.WriteString(fmt.Sprintf("- **Sections:** %s\n", strings.Join(doc.Sections, ", ")))
	}
	output.WriteString("\n```\n")
	output.WriteString(doc.Text)
	output.WriteString("\n```\n")

	return output.String(), nil
}

func (pmf *ParseMarkdownFormatter) SupportedType() string {
	return "ResumeDocument"
}
