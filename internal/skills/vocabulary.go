package skills

import (
	"sort"

	"resumelens/internal/types"
)

// Vocabulary is the reference data the analyzer matches against. It is
// plain data: callers may replace it wholesale from a config file, and
// the zero-cost default below ships compiled in.
type Vocabulary struct {
	// Skills is the single-token skill lexicon, lowercase.
	Skills map[string]struct{}
	// MultiWord lists phrases matched before tokenization, lowercase.
	MultiWord []string
	// Variations maps a canonical skill to the spellings that imply it.
	Variations map[string][]string
	// Importance tags skills for gap reporting. Skills absent from the
	// table default to low.
	Importance map[string]types.Importance
	// Stopwords are tokens excluded from matching.
	Stopwords map[string]struct{}
}

// ImportanceOf returns the static importance label for a skill.
func (v *Vocabulary) ImportanceOf(skill string) types.Importance {
	if imp, ok := v.Importance[skill]; ok {
		return imp
	}
	return types.ImportanceLow
}

// Has reports whether token is a known single-token skill.
func (v *Vocabulary) Has(token string) bool {
	_, ok := v.Skills[token]
	return ok
}

// IsStopword reports whether token should be ignored entirely.
func (v *Vocabulary) IsStopword(token string) bool {
	_, ok := v.Stopwords[token]
	return ok
}

func setOf(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// DefaultVocabulary returns the built-in skill lexicon. The categories
// mirror what recruiters and ATS products commonly index: languages,
// frameworks, databases, cloud/devops, data/ML, tooling, web standards,
// methodologies, mobile and testing.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		Skills: setOf(
			// Programming languages
			"python", "java", "javascript", "typescript", "c++", "c#", "c",
			"go", "rust", "php", "ruby", "swift", "kotlin", "scala", "r",
			"matlab", "perl", "shell", "bash", "powershell",
			// Web frameworks and libraries
			"react", "angular", "vue", "svelte", "django", "flask",
			"fastapi", "express", "node", "nodejs", "spring", "laravel",
			"rails", "asp.net", "blazor",
			// Databases
			"sql", "mysql", "postgresql", "postgres", "mongodb", "redis",
			"cassandra", "elasticsearch", "sqlite", "oracle", "mssql",
			"dynamodb", "firebase",
			// Cloud and devops
			"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
			"ansible", "jenkins", "gitlab", "github", "ci/cd", "nginx",
			"apache", "linux", "unix", "windows",
			// Data science and ML
			"pandas", "numpy", "scikit-learn", "tensorflow", "pytorch",
			"keras", "matplotlib", "seaborn", "jupyter", "anaconda", "ml",
			"machine learning", "deep learning", "nlp", "opencv", "spark",
			"hadoop", "kafka", "airflow",
			// Tools
			"git", "svn", "jira", "confluence", "slack", "teams", "figma",
			"adobe", "photoshop", "excel", "powerbi", "tableau", "looker",
			"grafana",
			// API and web technologies
			"rest", "restful", "graphql", "soap", "json", "xml", "html",
			"css", "sass", "less", "bootstrap", "tailwind", "webpack",
			"vite", "npm", "yarn",
			// Methodologies
			"agile", "scrum", "kanban", "devops", "tdd", "bdd",
			"microservices", "api", "mvp", "lean", "waterfall",
			// Mobile
			"ios", "android", "react native", "flutter", "xamarin",
			"cordova", "ionic",
			// Testing
			"junit", "pytest", "jest", "selenium", "cypress", "postman",
			"unit testing", "integration testing", "automation testing",
		),
		MultiWord: []string{
			"machine learning", "deep learning", "data analysis",
			"web development", "software development", "unit testing",
			"integration testing", "automation testing", "rest api",
			"react native", "node.js", "asp.net", "ci/cd",
		},
		Variations: map[string][]string{
			"python":     {"python", "py"},
			"javascript": {"javascript", "js", "ecmascript"},
			"postgresql": {"postgresql", "postgres", "psql"},
			"mysql":      {"mysql", "my sql"},
			"aws":        {"aws", "amazon web services"},
			"docker":     {"docker", "containerization"},
			"kubernetes": {"kubernetes", "k8s"},
			"react":      {"react", "reactjs", "react.js"},
			"nodejs":     {"nodejs", "node.js", "node"},
			"git":        {"git", "version control"},
			"agile":      {"agile", "scrum"},
			"rest":       {"rest", "restful", "rest api"},
			"ci/cd":      {"ci/cd", "continuous integration", "continuous deployment"},
		},
		Importance: map[string]types.Importance{},
		Stopwords: setOf(
			"and", "or", "the", "a", "an", "for", "to", "in", "on", "with",
			"of", "by", "at", "is", "are", "this", "that", "from", "as",
			"it", "be", "using", "used", "use",
		),
	}

	// Core requirements read as hard blockers when missing.
	for _, s := range []string{
		"python", "java", "javascript", "typescript", "c++", "c#", "go",
		"rust", "sql", "postgresql", "mysql", "mongodb", "aws", "azure",
		"gcp", "docker", "kubernetes", "react", "machine learning",
		"deep learning",
	} {
		v.Importance[s] = types.ImportanceHigh
	}
	for _, s := range []string{
		"angular", "vue", "django", "flask", "fastapi", "spring", "nodejs",
		"redis", "elasticsearch", "kafka", "terraform", "ansible",
		"jenkins", "ci/cd", "graphql", "rest", "microservices", "linux",
		"git", "pandas", "numpy", "tensorflow", "pytorch", "spark",
		"agile", "devops",
	} {
		v.Importance[s] = types.ImportanceMedium
	}

	return v
}

// SkillSet is a normalized, deduplicated set of skill terms.
type SkillSet map[string]struct{}

// Add inserts a skill into the set.
func (s SkillSet) Add(skill string) { s[skill] = struct{}{} }

// Contains reports set membership.
func (s SkillSet) Contains(skill string) bool {
	_, ok := s[skill]
	return ok
}

// Sorted returns the set as a sorted slice for stable output.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for skill := range s {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}
