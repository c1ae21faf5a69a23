package parser

import (
	"reflect"
	"strings"
	"testing"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses space runs",
			input:    "Python    SQL\tDocker",
			expected: "Python SQL Docker",
		},
		{
			name:     "normalizes bullets",
			input:    "• Led team\n● Shipped product\n* Reduced costs",
			expected: "- Led team\n- Shipped product\n- Reduced costs",
		},
		{
			name:     "collapses blank line runs",
			input:    "Experience\n\n\n\n\nEducation",
			expected: "Experience\n\nEducation",
		},
		{
			name:     "replaces nbsp and CRLF",
			input:    "John Doe\r\nEngineer",
			expected: "John Doe\nEngineer",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  \n resume text \n  ",
			expected: "resume text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.expected {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseText(t *testing.T) {
	doc := ParseText("Summary\n\nPython engineer.\n\nExperience\n\nEducation\n\nSkills")

	if doc.SourceFormat != types.FormatText {
		t.Errorf("SourceFormat = %s, want text", doc.SourceFormat)
	}
	if doc.WordCount != 6 {
		t.Errorf("WordCount = %d, want 6", doc.WordCount)
	}
	wantSections := []string{"summary", "experience", "education", "skills"}
	if !reflect.DeepEqual(doc.Sections, wantSections) {
		t.Errorf("Sections = %v, want %v", doc.Sections, wantSections)
	}
}

func TestParseRejectsUnsupportedFormat(t *testing.T) {
	_, err := Parse("resume.txt", []byte("plain text resume content"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeUnsupportedFormat {
		t.Errorf("error code = %s, want %s", appErr.Code, errors.ErrCodeUnsupportedFormat)
	}
}

func TestParseRejectsEmptyFile(t *testing.T) {
	_, err := Parse("resume.pdf", nil)
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeEmptyInput {
		t.Errorf("error code = %s, want %s", appErr.Code, errors.ErrCodeEmptyInput)
	}
}

func TestParseRejectsCorruptPDF(t *testing.T) {
	_, err := Parse("resume.pdf", []byte("%PDF-1.7 not actually a pdf"))
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeCorruptFile {
		t.Errorf("error code = %s, want %s", appErr.Code, errors.ErrCodeCorruptFile)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     types.SourceFormat
	}{
		{"pdf extension", "cv.pdf", []byte("anything"), types.FormatPDF},
		{"docx extension", "cv.docx", []byte("anything"), types.FormatDOCX},
		{"case insensitive extension", "CV.PDF", []byte("anything"), types.FormatPDF},
		{"pdf magic without extension", "upload", []byte("%PDF-1.4 ..."), types.FormatPDF},
		{"zip magic without extension", "upload", []byte("PK\x03\x04..."), types.FormatDOCX},
		{"unknown", "notes.md", []byte("# notes"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.fileName, tt.data); got != tt.want {
				t.Errorf("detectFormat(%q) = %q, want %q", tt.fileName, got, tt.want)
			}
		})
	}
}

func TestStripXMLText(t *testing.T) {
	raw := `<w:document><w:body>` +
		`<w:p><w:r><w:t>John Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Python</w:t></w:r><w:r><w:t> engineer</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	got := stripXMLText(raw)
	want := "John Doe\nPython engineer"
	if got != want {
		t.Errorf("stripXMLText = %q, want %q", got, want)
	}
	if strings.Contains(got, "<") {
		t.Errorf("markup leaked into output: %q", got)
	}
}
