// Package export renders analyzed or improved resumes into portable
// document formats. DOCX output is assembled directly as an OOXML
// package; PDF output is printed through a headless Chromium.
package export

import (
	"context"
	"fmt"
	"strings"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// Format identifies an export target format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatDOCX:
		return FormatDOCX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", errors.NewExportError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported export format: %s (supported: docx, pdf)", s), nil)
	}
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
}

// Extension returns the conventional file extension without the dot.
func (f Format) Extension() string { return string(f) }

// Exporter renders documents into their target formats.
type Exporter struct {
	logger *errors.Logger
}

// NewExporter creates an exporter. logger may be nil.
func NewExporter(logger *errors.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Render produces the document bytes for the requested format. Render
// failures are terminal: there is no cross-format fallback, the caller
// gets the error as-is.
func (e *Exporter) Render(ctx context.Context, format Format, doc types.ExportDocument) ([]byte, error) {
	if strings.TrimSpace(doc.Body) == "" {
		return nil, errors.NewExportError(errors.ErrCodeEmptyInput,
			"Export document has no content", nil)
	}

	switch format {
	case FormatDOCX:
		return renderDOCX(doc)
	case FormatPDF:
		return e.renderPDF(ctx, doc)
	default:
		return nil, errors.NewExportError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported export format: %s", format), nil)
	}
}

// blockKind classifies a line of the document body for styling.
type blockKind int

const (
	blockText blockKind = iota
	blockHeading
	blockBullet
)

type block struct {
	Text string
	Kind blockKind
}

// knownHeadings are section names recognized even when the document
// carries no explicit section list.
var knownHeadings = []string{
	"summary", "objective", "experience", "work experience",
	"education", "skills", "projects", "certifications",
	"suggested improvements",
}

// blocksOf splits the document body into styled blocks. A short line
// that names one of the document's sections becomes a heading; lines
// starting with a dash stay bullets.
func blocksOf(doc types.ExportDocument) []block {
	headings := make(map[string]struct{}, len(doc.Sections)+len(knownHeadings))
	for _, h := range knownHeadings {
		headings[h] = struct{}{}
	}
	for _, s := range doc.Sections {
		headings[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	var blocks []block
	for _, line := range strings.Split(doc.Body, "\n") {
		line = strings.TrimRight(line, " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		key := strings.ToLower(strings.TrimSuffix(trimmed, ":"))
		if _, ok := headings[key]; ok && len(trimmed) <= 60 {
			blocks = append(blocks, block{Text: trimmed, Kind: blockHeading})
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
			blocks = append(blocks, block{Text: rest, Kind: blockBullet})
			continue
		}
		blocks = append(blocks, block{Text: trimmed, Kind: blockText})
	}
	return blocks
}
