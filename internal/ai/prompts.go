package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	EnhanceAnalysis   string
	GenerateQuestions string
	GenerateQA        string
	ImproveResume     string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	EnhanceAnalysis   string
	GenerateQuestions string
	GenerateQA        string
	ImproveResume     string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	EnhanceAnalysis: `You are an expert HR consultant and ATS specialist with a strict commitment to honesty and accuracy. Your core principles are:

- Ground every statement in the resume and job description you are given
- Never invent skills or experience the candidate does not have
- Provide honest, data-driven, actionable analysis
- Keep each point concise enough to act on

Your expertise includes ATS (Applicant Tracking System) scoring, skills-gap analysis, keyword optimization and HR best practices.`,

	GenerateQuestions: `You are an experienced interviewer preparing a candidate for a specific role. Your principles are:

- Questions must be answerable from the candidate's actual background
- Sample answers must be grounded in the resume excerpts provided
- Cover a mix of behavioral, technical and role-specific questions
- Explain what a strong answer demonstrates to the interviewer`,

	GenerateQA: `You are a career coach helping a candidate articulate their own experience. Your principles are:

- Every answer must be supported by the resume content provided
- Prefer concrete project examples over generic advice
- Keep answers in the first person so the candidate can rehearse them`,

	ImproveResume: `You are an expert resume writer with a strict commitment to honesty. Your core principles are:

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the source resume
- Strengthen wording, structure and keyword coverage without changing facts
- Respect the requested enhancement level`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	EnhanceAnalysis: `Analyze this resume against the job description. A deterministic keyword analysis has already been computed; build on it rather than contradicting it.

**Keyword analysis:**
Matched skills: %s
Missing skills: %s
ATS score: %.1f

**Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----

Provide:
1. A short summary of overall fit (2-3 sentences).
2. 3-5 key strengths for this specific role.
3. The most important gaps and how to close or reframe them.
4. Specific keyword and formatting recommendations for ATS optimization.`,

	GenerateQuestions: `Create %d interview questions for a candidate, based on their resume and the job description.

**Most relevant resume excerpts:**
-----
%s
-----

**Job Description:**
-----
%s
-----

For each question provide:
1. The question itself
2. A sample answer grounded in the resume excerpts
3. What the interviewer is looking for in a strong answer

Focus on behavioral, technical, and role-specific questions.`,

	GenerateQA: `Based on this resume, generate exactly %d question/answer pairs about %s.

**Most relevant resume excerpts:**
-----
%s
-----

Create detailed Q&A pairs that help the candidate understand and articulate their experience with %s. Focus on practical, interview-relevant questions, and keep every answer grounded in the resume content.`,

	ImproveResume: `Rewrite this resume at the "%s" enhancement level.

Enhancement levels:
- light: fix wording, strengthen verbs and quantify where the source already contains numbers; keep structure unchanged.
- moderate: additionally reorder bullets for impact and tighten or merge weak sections.
- full: restructure freely for maximum impact while preserving every fact.

**Resume:**
-----
%s
-----

**Target job description (may be empty):**
-----
%s
-----

Return the complete rewritten resume and a list of the concrete changes you made. Do not add any skill, employer, date or achievement that is not present in the source.`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}

// resolvePrompt selects the first non-empty prompt string, preferring
// operator configuration over the compiled-in default.
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
