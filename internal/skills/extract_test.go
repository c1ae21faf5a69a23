package skills

import (
	"reflect"
	"testing"
)

func TestExtractSkills(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "empty input",
			text:     "",
			expected: []string{},
		},
		{
			name:     "whitespace only",
			text:     "   \n\t  ",
			expected: []string{},
		},
		{
			name:     "simple skill list",
			text:     "Python, SQL, communication",
			expected: []string{"python", "sql"},
		},
		{
			name:     "tech suffix tokens survive",
			text:     "Worked with C++ and C# services behind nginx",
			expected: []string{"c#", "c++", "nginx"},
		},
		{
			name:     "multi-word phrases",
			text:     "Built machine learning pipelines and REST API services with CI/CD",
			expected: []string{"api", "ci/cd", "machine learning", "rest", "rest api"},
		},
		{
			name:     "alias variations map to canonical skills",
			text:     "Deployed to k8s clusters on Amazon Web Services",
			expected: []string{"aws", "kubernetes"},
		},
		{
			name:     "word boundaries avoid substring collisions",
			text:     "JavaScript developer",
			expected: []string{"javascript"},
		},
		{
			name:     "duplicates collapse",
			text:     "python python PYTHON Python",
			expected: []string{"python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.ExtractSkills(tt.text).Sorted()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractSkills(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractSkillsDeterministic(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	text := "Python engineer with Docker, Kubernetes, PostgreSQL and machine learning experience"

	first := analyzer.ExtractSkills(text).Sorted()
	for i := 0; i < 10; i++ {
		again := analyzer.ExtractSkills(text).Sorted()
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("extraction not deterministic: run %d got %v, want %v", i, again, first)
		}
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		text   string
		phrase string
		want   bool
	}{
		{"java developer", "java", true},
		{"javascript developer", "java", false},
		{"expert in go", "go", true},
		{"mongodb admin", "go", false},
		{"node.js backend", "node.js", true},
		{"ci/cd pipelines", "ci/cd", true},
	}

	for _, tt := range tests {
		if got := containsPhrase(tt.text, tt.phrase); got != tt.want {
			t.Errorf("containsPhrase(%q, %q) = %v, want %v", tt.text, tt.phrase, got, tt.want)
		}
	}
}
