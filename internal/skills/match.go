package skills

import (
	"math"
	"strings"
	"sync"

	"resumelens/internal/types"
)

// Score weighting constants. The combination is a fixed linear blend:
// matched-skill coverage dominates, section structure and keyword
// density share the remainder. Density saturates at 20% of the resume
// so keyword stuffing stops paying off.
const (
	weightCoverage  = 0.6
	weightStructure = 0.2
	weightDensity   = 0.2
	densityCeiling  = 5.0

	// weights used when no job description is available and the score
	// degrades to a text-quality heuristic
	fallbackWeightStructure = 0.6
	fallbackWeightDensity   = 0.4
)

// Analyzer is the deterministic skills/ATS engine. It is stateless
// apart from its vocabulary and safe for concurrent use; the
// vocabulary may be swapped at runtime via SetVocabulary.
type Analyzer struct {
	mu    sync.RWMutex
	vocab *Vocabulary
}

// NewAnalyzer returns an analyzer over the given vocabulary, falling
// back to the built-in lexicon when vocab is nil.
func NewAnalyzer(vocab *Vocabulary) *Analyzer {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Analyzer{vocab: vocab}
}

// Vocabulary exposes the analyzer's reference data. Callers must treat
// the returned value as read-only.
func (a *Analyzer) Vocabulary() *Vocabulary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.vocab
}

// SetVocabulary replaces the lexicon. In-flight operations keep the
// snapshot they started with; nil is ignored.
func (a *Analyzer) SetVocabulary(vocab *Vocabulary) {
	if vocab == nil {
		return
	}
	a.mu.Lock()
	a.vocab = vocab
	a.mu.Unlock()
}

// Match computes the full MatchResult for a resume / job-description
// text pair. It is a pure function of its inputs: no error paths, no
// randomness, and identical inputs always produce identical results.
//
// Set semantics: matched = resume ∩ job; missing = job − resume. When
// the job description yields no skills, matched falls back to the full
// resume skill set and missing stays empty, since gap analysis has no
// target.
func (a *Analyzer) Match(resumeText, jobText string) types.MatchResult {
	vocab := a.Vocabulary()
	resumeSkills := a.ExtractSkills(resumeText)
	jobSkills := a.ExtractSkills(jobText)

	matched := make(SkillSet)
	missing := make(SkillSet)

	if len(jobSkills) == 0 {
		matched = resumeSkills
	} else {
		for skill := range resumeSkills {
			if jobSkills.Contains(skill) {
				matched.Add(skill)
			}
		}
		for skill := range jobSkills {
			if !resumeSkills.Contains(skill) {
				missing.Add(skill)
			}
		}
	}

	result := types.MatchResult{
		MatchedSkills: matched.Sorted(),
		MissingSkills: make([]types.MissingSkill, 0, len(missing)),
	}
	for _, skill := range missing.Sorted() {
		result.MissingSkills = append(result.MissingSkills, types.MissingSkill{
			Name:       skill,
			Importance: vocab.ImportanceOf(skill),
		})
	}

	// Empty resume scores zero regardless of the job description.
	if strings.TrimSpace(resumeText) == "" {
		result.MatchedSkills = []string{}
		return result
	}

	coverage := 0.0
	if len(jobSkills) > 0 {
		coverage = float64(len(matched)) / float64(len(jobSkills))
	}
	density := keywordDensity(resumeText, matched)
	structure := structureScore(resumeText)

	var score float64
	if len(jobSkills) > 0 {
		score = weightCoverage*coverage +
			weightStructure*structure +
			weightDensity*math.Min(density*densityCeiling, 1.0)
	} else {
		// Text-quality heuristic: no coverage target exists, so grade
		// the resume on structure and skill density alone.
		score = fallbackWeightStructure*structure +
			fallbackWeightDensity*math.Min(density*densityCeiling, 1.0)
	}

	result.CoverageRatio = round2(coverage)
	result.KeywordDensity = round2(density)
	result.StructureScore = round2(structure)
	result.ATSScore = clamp(round2(score*100), 0, 100)
	result.Suggestions = a.Suggestions(resumeText, result)
	return result
}

// keywordDensity is the ratio of matched-skill mentions to total
// resume tokens.
func keywordDensity(resumeText string, matched SkillSet) float64 {
	totalTokens := len(strings.Fields(resumeText))
	if totalTokens == 0 {
		return 0
	}
	resumeLower := strings.ToLower(resumeText)
	mentions := 0
	for skill := range matched {
		mentions += strings.Count(resumeLower, skill)
	}
	return float64(mentions) / float64(totalTokens)
}

// sectionProbes maps resume sections to the fixed point value each
// contributes to the structure score. Values sum to 1.
var sectionProbes = []struct {
	points  float64
	markers []string
}{
	{0.25, []string{"@", "phone", "tel:", "linkedin"}},           // contact
	{0.25, []string{"experience", "employment", "work history"}}, // experience
	{0.20, []string{"education", "degree", "university"}},        // education
	{0.20, []string{"skills", "technologies", "competencies"}},   // skills
	{0.10, []string{"summary", "objective", "profile"}},          // summary
}

// structureScore awards fixed points for each expected resume section
// detected in the text. The result is in [0,1].
func structureScore(text string) float64 {
	textLower := strings.ToLower(text)
	score := 0.0
	for _, probe := range sectionProbes {
		for _, marker := range probe.markers {
			if strings.Contains(textLower, marker) {
				score += probe.points
				break
			}
		}
	}
	return score
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
