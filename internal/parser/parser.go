// Package parser turns uploaded resume files into normalized text.
// PDF extraction uses github.com/ledongthuc/pdf, DOCX uses
// github.com/nguyenthenguyen/docx; scanned documents that yield almost
// no text are rejected since no OCR engine is wired in.
package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// minExtractedChars is the threshold below which a parsed document is
// assumed to be a scanned image rather than a text layer.
const minExtractedChars = 40

// Parse extracts and normalizes text from an uploaded resume. The
// format is chosen from the file extension, falling back to content
// sniffing when the extension is missing or lies.
func Parse(fileName string, data []byte) (*types.ResumeDocument, error) {
	if len(data) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"uploaded file is empty", nil)
	}

	format := detectFormat(fileName, data)

	var raw string
	var err error
	switch format {
	case types.FormatPDF:
		raw, err = extractPDF(data)
	case types.FormatDOCX:
		raw, err = extractDOCX(data)
	default:
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
			"unsupported file type; only PDF and DOCX resumes are accepted", nil).
			WithContext("fileName", fileName)
	}
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeCorruptFile,
			"could not read document content", err).
			WithContext("fileName", fileName).
			WithContext("format", string(format))
	}

	text := NormalizeText(raw)
	if len(text) < minExtractedChars {
		return nil, errors.NewIOError(errors.ErrCodeOCRUnavailable,
			"document contains no extractable text layer; it may be scanned and OCR is not available", nil).
			WithContext("fileName", fileName).
			WithContext("extractedChars", len(text))
	}

	return newDocument(text, format, fileName), nil
}

// ParseText wraps already-plain text in a ResumeDocument, normalizing
// it the same way file uploads are.
func ParseText(text string) *types.ResumeDocument {
	return newDocument(NormalizeText(text), types.FormatText, "")
}

func newDocument(text string, format types.SourceFormat, fileName string) *types.ResumeDocument {
	return &types.ResumeDocument{
		Text:         text,
		SourceFormat: format,
		FileName:     fileName,
		WordCount:    len(strings.Fields(text)),
		Sections:     detectSections(text),
	}
}

// LooksBinary reports whether data carries a PDF or ZIP (DOCX) signature.
// Callers use it to route extension-less input to the right extractor.
func LooksBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF")) || bytes.HasPrefix(data, []byte("PK"))
}

func detectFormat(fileName string, data []byte) types.SourceFormat {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return types.FormatPDF
	case ".docx":
		return types.FormatDOCX
	}
	// Extension missing or unknown: sniff the magic bytes.
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return types.FormatPDF
	}
	if bytes.HasPrefix(data, []byte("PK")) {
		return types.FormatDOCX
	}
	return ""
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	// GetContent returns the raw document.xml; strip the markup into
	// paragraph-separated plain text.
	return stripXMLText(doc.Editable().GetContent()), nil
}

// stripXMLText collapses WordprocessingML into plain text, emitting a
// newline at each paragraph or line break.
func stripXMLText(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

var sectionNames = []string{"summary", "objective", "experience", "education", "skills", "projects", "certifications"}

// detectSections reports which conventional resume sections appear in
// the text, in canonical order.
func detectSections(text string) []string {
	textLower := strings.ToLower(text)
	var found []string
	for _, name := range sectionNames {
		if strings.Contains(textLower, name) {
			found = append(found, name)
		}
	}
	return found
}
