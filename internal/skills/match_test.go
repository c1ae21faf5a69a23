package skills

import (
	"reflect"
	"strings"
	"testing"

	"resumelens/internal/types"
)

const sampleResume = `John Doe
john.doe@example.com | 555-0100

Summary
Backend engineer focused on data platforms.

Experience
Led a team that improved pipeline throughput by 40% using Python and SQL.
Achieved 99.9% uptime for services deployed with Docker.

Education
B.Sc. Computer Science, State University

Skills
Python, SQL, Docker, Git, communication`

const sampleJob = `We are hiring a backend engineer.
Requirements: Python, AWS, Kubernetes, SQL, leadership.`

func TestMatchSetSemantics(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	result := analyzer.Match(sampleResume, sampleJob)

	wantMatched := []string{"python", "sql"}
	if !reflect.DeepEqual(result.MatchedSkills, wantMatched) {
		t.Errorf("MatchedSkills = %v, want %v", result.MatchedSkills, wantMatched)
	}

	wantMissing := []string{"aws", "kubernetes"}
	var gotMissing []string
	for _, m := range result.MissingSkills {
		gotMissing = append(gotMissing, m.Name)
	}
	if !reflect.DeepEqual(gotMissing, wantMissing) {
		t.Errorf("MissingSkills = %v, want %v", gotMissing, wantMissing)
	}

	// matched and missing must be disjoint and together cover the job
	// skill set exactly
	jobSkills := analyzer.ExtractSkills(sampleJob)
	covered := make(map[string]bool)
	for _, s := range result.MatchedSkills {
		covered[s] = true
	}
	for _, m := range result.MissingSkills {
		if covered[m.Name] {
			t.Errorf("skill %q appears in both matched and missing sets", m.Name)
		}
		covered[m.Name] = true
	}
	if len(covered) != len(jobSkills) {
		t.Errorf("matched ∪ missing has %d skills, job set has %d", len(covered), len(jobSkills))
	}
	for s := range jobSkills {
		if !covered[s] {
			t.Errorf("job skill %q not covered by matched ∪ missing", s)
		}
	}
}

func TestMatchImportanceLabels(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	result := analyzer.Match("Python developer", "Need Python, AWS and Jira experience")

	labels := make(map[string]types.Importance)
	for _, m := range result.MissingSkills {
		labels[m.Name] = m.Importance
	}
	if labels["aws"] != types.ImportanceHigh {
		t.Errorf("aws importance = %s, want high", labels["aws"])
	}
	if labels["jira"] != types.ImportanceLow {
		t.Errorf("jira importance = %s, want low", labels["jira"])
	}
}

func TestMatchScoreBounds(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	tests := []struct {
		name   string
		resume string
		job    string
	}{
		{"both empty", "", ""},
		{"empty resume", "", sampleJob},
		{"empty job", sampleResume, ""},
		{"full pair", sampleResume, sampleJob},
		{"no overlap", "gardening and cooking", "quantum physics"},
		{"keyword stuffing", strings.Repeat("python aws kubernetes ", 200), "python aws kubernetes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzer.Match(tt.resume, tt.job)
			if result.ATSScore < 0 || result.ATSScore > 100 {
				t.Errorf("ATSScore = %v, out of [0,100]", result.ATSScore)
			}
		})
	}
}

func TestMatchEmptyResume(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	result := analyzer.Match("", sampleJob)

	if result.ATSScore != 0 {
		t.Errorf("ATSScore = %v, want 0 for empty resume", result.ATSScore)
	}
	if len(result.MatchedSkills) != 0 {
		t.Errorf("MatchedSkills = %v, want empty", result.MatchedSkills)
	}
	jobSkills := analyzer.ExtractSkills(sampleJob)
	if len(result.MissingSkills) != len(jobSkills) {
		t.Errorf("MissingSkills has %d entries, want full job set of %d",
			len(result.MissingSkills), len(jobSkills))
	}
}

func TestMatchEmptyJobDescription(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	result := analyzer.Match(sampleResume, "")

	resumeSkills := analyzer.ExtractSkills(sampleResume).Sorted()
	if !reflect.DeepEqual(result.MatchedSkills, resumeSkills) {
		t.Errorf("MatchedSkills = %v, want full resume set %v", result.MatchedSkills, resumeSkills)
	}
	if len(result.MissingSkills) != 0 {
		t.Errorf("MissingSkills = %v, want empty without a job target", result.MissingSkills)
	}
	if result.ATSScore <= 0 {
		t.Errorf("ATSScore = %v, want text-quality heuristic > 0", result.ATSScore)
	}
}

func TestMatchDeterministic(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	first := analyzer.Match(sampleResume, sampleJob)
	for i := 0; i < 5; i++ {
		again := analyzer.Match(sampleResume, sampleJob)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Match not deterministic on run %d", i)
		}
	}
}

func TestMatchStructureScore(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	structured := analyzer.Match(sampleResume, sampleJob)
	flat := analyzer.Match("python sql docker", sampleJob)

	if structured.StructureScore <= flat.StructureScore {
		t.Errorf("structured resume score %v should exceed flat list %v",
			structured.StructureScore, flat.StructureScore)
	}
	if flat.StructureScore != 0 {
		t.Errorf("flat skill list StructureScore = %v, want 0", flat.StructureScore)
	}
}

func TestSuggestions(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	t.Run("short unstructured resume", func(t *testing.T) {
		result := analyzer.Match("python", "python aws")
		joined := strings.Join(result.Suggestions, " ")
		for _, want := range []string{"short", "action verbs", "section breaks", "metrics"} {
			if !strings.Contains(joined, want) {
				t.Errorf("suggestions missing %q hint: %v", want, result.Suggestions)
			}
		}
	})

	t.Run("gap suggestion names high-importance skills first", func(t *testing.T) {
		result := analyzer.Match("python developer", "python aws jira")
		if len(result.Suggestions) == 0 {
			t.Fatal("expected suggestions")
		}
		first := result.Suggestions[0]
		if !strings.Contains(first, "aws") {
			t.Errorf("first suggestion should mention aws gap: %q", first)
		}
	})

	t.Run("solid resume gets positive note", func(t *testing.T) {
		text := sampleResume + strings.Repeat(" detailed accomplishment line with measurable outcomes", 40)
		suggestions := analyzer.Suggestions(text, types.MatchResult{})
		if len(suggestions) != 1 || !strings.Contains(suggestions[0], "solid") {
			t.Errorf("expected single positive suggestion, got %v", suggestions)
		}
	})
}
