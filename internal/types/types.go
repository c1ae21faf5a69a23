package types

// SourceFormat identifies the document format a resume was parsed from.
type SourceFormat string

const (
	FormatPDF  SourceFormat = "pdf"
	FormatDOCX SourceFormat = "docx"
	FormatText SourceFormat = "text"
)

// ResumeDocument is the normalized result of parsing an uploaded resume.
// It is immutable once produced.
type ResumeDocument struct {
	Text         string       `json:"text"`
	SourceFormat SourceFormat `json:"sourceFormat"`
	FileName     string       `json:"fileName,omitempty"`
	WordCount    int          `json:"wordCount"`
	Sections     []string     `json:"sections,omitempty"`
}

// Importance labels how critical a missing skill is for the target role.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// MissingSkill is a job-description skill absent from the resume,
// tagged from the static importance table.
type MissingSkill struct {
	Name       string     `json:"name"`
	Importance Importance `json:"importance"`
}

// MatchResult is the deterministic output of the skills/ATS analyzer.
// MatchedSkills and MissingSkills are disjoint; together they cover the
// job-description skill set whenever one was provided.
type MatchResult struct {
	MatchedSkills  []string       `json:"matchedSkills"`
	MissingSkills  []MissingSkill `json:"missingSkills"`
	ATSScore       float64        `json:"atsScore"`
	CoverageRatio  float64        `json:"coverageRatio"`
	KeywordDensity float64        `json:"keywordDensity"`
	StructureScore float64        `json:"structureScore"`
	Suggestions    []string       `json:"suggestions,omitempty"`
	FromCache      bool           `json:"fromCache,omitempty"`
	AINotice       string         `json:"aiNotice,omitempty"`
}

// AnalyzeInput carries the raw text pair for a match/analyze request.
type AnalyzeInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// EnhancedAnalysis is the AI-augmented view of a match result.
type EnhancedAnalysis struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzeOutput bundles the deterministic result with the optional
// AI enhancement.
type AnalyzeOutput struct {
	Match    MatchResult       `json:"match"`
	Enhanced *EnhancedAnalysis `json:"enhanced,omitempty"`
}

// QuestionsInput requests interview questions for a resume/job pair.
type QuestionsInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	Count          int    `json:"count,omitempty"`
}

// InterviewQuestion is a single generated interview question with
// coaching material.
type InterviewQuestion struct {
	Question     string `json:"question"`
	SampleAnswer string `json:"sampleAnswer"`
	LookingFor   string `json:"lookingFor"`
}

// QuestionsOutput is the interview-question generation result.
type QuestionsOutput struct {
	Questions []InterviewQuestion `json:"questions"`
	Notice    string              `json:"notice,omitempty"`
}

// QAInput requests topic-scoped questions and answers grounded in the
// resume content.
type QAInput struct {
	ResumeText string `json:"resumeText"`
	Topic      string `json:"topic"`
	Count      int    `json:"count,omitempty"`
}

// QAPair is one generated question/answer pair.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QAOutput is the Q&A generation result.
type QAOutput struct {
	Pairs  []QAPair `json:"pairs"`
	Notice string   `json:"notice,omitempty"`
}

// EnhancementLevel controls how aggressively a resume rewrite may
// restructure the source text.
type EnhancementLevel string

const (
	EnhancementLight    EnhancementLevel = "light"
	EnhancementModerate EnhancementLevel = "moderate"
	EnhancementFull     EnhancementLevel = "full"
)

// ImproveInput requests a rewritten resume.
type ImproveInput struct {
	ResumeText     string           `json:"resumeText"`
	JobDescription string           `json:"jobDescription,omitempty"`
	Level          EnhancementLevel `json:"level"`
}

// ImprovedResume is the rewritten resume plus a summary of what changed.
type ImprovedResume struct {
	Content          string           `json:"content"`
	ChangesSummary   []string         `json:"changesSummary"`
	EnhancementLevel EnhancementLevel `json:"enhancementLevel"`
	Notice           string           `json:"notice,omitempty"`
}

// ExportDocument is the structured content handed to an export renderer.
type ExportDocument struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Sections []string `json:"sections,omitempty"`
}
