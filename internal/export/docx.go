package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"text/template"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// The OOXML package is assembled from scratch: three fixed parts plus
// a templated word/document.xml. Word and LibreOffice accept this
// minimal layout; no styles part is needed because formatting is
// carried as direct run properties.

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// docxParagraph is the prepared, already-escaped input to the
// document.xml template. Sizes are half-points.
type docxParagraph struct {
	Text   string
	Bold   bool
	Size   int
	Indent bool
	Bullet bool
}

var documentTemplate = template.Must(template.New("document.xml").Parse(
	`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
{{- range .}}
    <w:p><w:pPr>{{if .Indent}}<w:ind w:left="360"/>{{end}}<w:spacing w:after="120"/></w:pPr><w:r><w:rPr>{{if .Bold}}<w:b/>{{end}}<w:sz w:val="{{.Size}}"/></w:rPr><w:t xml:space="preserve">{{if .Bullet}}&#8226; {{end}}{{.Text}}</w:t></w:r></w:p>
{{- end}}
    <w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134"/></w:sectPr>
  </w:body>
</w:document>`))

func renderDOCX(doc types.ExportDocument) ([]byte, error) {
	paragraphs := docxParagraphs(doc)

	var documentXML bytes.Buffer
	if err := documentTemplate.Execute(&documentXML, paragraphs); err != nil {
		return nil, errors.NewExportError(errors.ErrCodeExportFailed,
			"Failed to render DOCX document body", err)
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"word/document.xml", documentXML.Bytes()},
	}
	for _, part := range parts {
		w, err := writer.Create(part.name)
		if err != nil {
			return nil, errors.NewExportError(errors.ErrCodeExportFailed,
				"Failed to assemble DOCX package", err)
		}
		if _, err := w.Write(part.content); err != nil {
			return nil, errors.NewExportError(errors.ErrCodeExportFailed,
				"Failed to assemble DOCX package", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewExportError(errors.ErrCodeExportFailed,
			"Failed to finalize DOCX package", err)
	}

	return output.Bytes(), nil
}

func docxParagraphs(doc types.ExportDocument) []docxParagraph {
	var paragraphs []docxParagraph
	if doc.Title != "" {
		paragraphs = append(paragraphs, docxParagraph{
			Text: escapeXML(doc.Title), Bold: true, Size: 32,
		})
	}
	for _, b := range blocksOf(doc) {
		p := docxParagraph{Text: escapeXML(b.Text), Size: 22}
		switch b.Kind {
		case blockHeading:
			p.Bold = true
			p.Size = 26
		case blockBullet:
			p.Indent = true
			p.Bullet = true
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
