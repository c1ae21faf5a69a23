package skills

import (
	"fmt"
	"strings"

	"resumelens/internal/types"
)

const shortResumeWords = 200

var actionVerbs = []string{"achieved", "led", "improved", "optimized", "delivered", "launched"}

var metricMarkers = []string{"%", "increased", "reduced", "improved"}

// Suggestions derives deterministic improvement advice from the resume
// text and a computed match result. It always returns at least one
// entry.
func (a *Analyzer) Suggestions(resumeText string, result types.MatchResult) []string {
	var out []string
	resumeLower := strings.ToLower(resumeText)

	if names := highPriorityMissing(result.MissingSkills); len(names) > 0 {
		out = append(out, fmt.Sprintf(
			"Consider adding or demonstrating experience with: %s (if applicable).",
			strings.Join(names, ", ")))
	}
	if len(strings.Fields(resumeText)) < shortResumeWords {
		out = append(out, "Resume seems short; consider expanding achievements with quantified impact.")
	}
	if !containsAny(resumeLower, actionVerbs) {
		out = append(out, "Include action verbs (achieved, led, improved, optimized) to emphasize impact.")
	}
	if strings.Count(resumeText, "\n\n") < 2 {
		out = append(out, "Add clear section breaks (Experience, Skills, Education).")
	}
	if !containsAny(resumeLower, metricMarkers) {
		out = append(out, "Quantify results with metrics or percentages.")
	}
	if len(out) == 0 {
		out = append(out, "Resume structure and keywords look solid. Fine-tune bullet specificity for further impact.")
	}
	return out
}

// highPriorityMissing returns high- and medium-importance gaps, high
// first, preserving the caller's sorted order within each tier.
func highPriorityMissing(missing []types.MissingSkill) []string {
	var high, medium []string
	for _, m := range missing {
		switch m.Importance {
		case types.ImportanceHigh:
			high = append(high, m.Name)
		case types.ImportanceMedium:
			medium = append(medium, m.Name)
		}
	}
	return append(high, medium...)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
