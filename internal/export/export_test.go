package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	lensErrors "resumelens/internal/errors"
	"resumelens/internal/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"docx", FormatDOCX, false},
		{"pdf", FormatPDF, false},
		{"  PDF ", FormatPDF, false},
		{"Docx", FormatDOCX, false},
		{"html", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) = %q, want error", tt.input, got)
				}
				var appErr *lensErrors.AppError
				if !errors.As(err, &appErr) || appErr.Code != lensErrors.ErrCodeInvalidFormat {
					t.Errorf("ParseFormat(%q) error = %v, want INVALID_FORMAT AppError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBlocksOf(t *testing.T) {
	doc := types.ExportDocument{
		Body: "Summary\nSeasoned engineer.\n\nSkills:\n- go\n- python\n\nPlain trailing line",
		Sections: []string{
			"Summary", "Skills",
		},
	}

	blocks := blocksOf(doc)
	want := []block{
		{Text: "Summary", Kind: blockHeading},
		{Text: "Seasoned engineer.", Kind: blockText},
		{Text: "Skills:", Kind: blockHeading},
		{Text: "go", Kind: blockBullet},
		{Text: "python", Kind: blockBullet},
		{Text: "Plain trailing line", Kind: blockText},
	}

	if len(blocks) != len(want) {
		t.Fatalf("blocksOf() returned %d blocks, want %d: %+v", len(blocks), len(want), blocks)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("block[%d] = %+v, want %+v", i, blocks[i], want[i])
		}
	}
}

func TestBlocksOfRecognizesKnownHeadingsWithoutSectionList(t *testing.T) {
	doc := types.ExportDocument{Body: "Experience\nDid things."}
	blocks := blocksOf(doc)
	if len(blocks) != 2 || blocks[0].Kind != blockHeading {
		t.Errorf("expected Experience recognized as heading, got %+v", blocks)
	}
}

func TestRenderDOCX(t *testing.T) {
	doc := types.ExportDocument{
		Title:    "Jane Doe",
		Body:     "Summary\nBuilds reliable services & tools.\n- go\n- kubernetes",
		Sections: []string{"Summary"},
	}

	data, err := renderDOCX(doc)
	if err != nil {
		t.Fatalf("renderDOCX() error = %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}

	parts := map[string]bool{}
	var documentXML string
	for _, f := range reader.File {
		parts[f.Name] = true
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			content, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatal(err)
			}
			documentXML = string(content)
		}
	}

	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		if !parts[name] {
			t.Errorf("archive is missing part %s", name)
		}
	}

	if !strings.Contains(documentXML, "Jane Doe") {
		t.Error("document.xml missing title text")
	}
	if !strings.Contains(documentXML, "Builds reliable services &amp; tools.") {
		t.Error("document.xml should carry XML-escaped body text")
	}
	if !strings.Contains(documentXML, "kubernetes") {
		t.Error("document.xml missing bullet text")
	}
	if strings.Contains(documentXML, "&amp;amp;") {
		t.Error("body text was escaped twice")
	}
}

func TestRenderHTML(t *testing.T) {
	doc := types.ExportDocument{
		Title: "Jane <Doe>",
		Body:  "Skills\n- go & rust",
	}

	html, err := renderHTML(doc)
	if err != nil {
		t.Fatalf("renderHTML() error = %v", err)
	}

	if !strings.Contains(html, "Jane &lt;Doe&gt;") {
		t.Error("title should be HTML-escaped")
	}
	if !strings.Contains(html, "<h2>Skills</h2>") {
		t.Error("section heading should render as h2")
	}
	if !strings.Contains(html, "<li>go &amp; rust</li>") {
		t.Error("dash lines should render as list items")
	}
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	e := NewExporter(nil)
	_, err := e.Render(context.Background(), FormatDOCX, types.ExportDocument{Body: "   "})
	if err == nil {
		t.Fatal("Render() = nil, want error for empty document")
	}
	var appErr *lensErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != lensErrors.ErrCodeEmptyInput {
		t.Errorf("Render() error = %v, want EMPTY_INPUT AppError", err)
	}
}
