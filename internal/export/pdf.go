package export

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// pdfRenderTimeout bounds the whole browser session, including
// Chromium startup.
const pdfRenderTimeout = 45 * time.Second

type htmlBlock struct {
	Text    string
	Heading bool
	Bullet  bool
}

type htmlPage struct {
	Title  string
	Blocks []htmlBlock
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; color: #1a1a1a; line-height: 1.45; }
  h1 { font-size: 17pt; margin: 0 0 10px 0; }
  h2 { font-size: 13pt; margin: 14px 0 6px 0; border-bottom: 1px solid #999; padding-bottom: 2px; }
  p { margin: 4px 0; }
  ul { margin: 4px 0; padding-left: 20px; }
  li { margin: 2px 0; }
</style>
</head>
<body>
{{if .Title}}<h1>{{.Title}}</h1>{{end}}
{{range .Blocks}}{{if .Heading}}<h2>{{.Text}}</h2>
{{else if .Bullet}}<ul><li>{{.Text}}</li></ul>
{{else}}<p>{{.Text}}</p>
{{end}}{{end}}</body>
</html>`))

func renderHTML(doc types.ExportDocument) (string, error) {
	pageData := htmlPage{Title: doc.Title}
	for _, b := range blocksOf(doc) {
		pageData.Blocks = append(pageData.Blocks, htmlBlock{
			Text:    b.Text,
			Heading: b.Kind == blockHeading,
			Bullet:  b.Kind == blockBullet,
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderPDF prints the document through a headless Chromium. Requires
// Chrome/Chromium to be installed on the system.
func (e *Exporter) renderPDF(ctx context.Context, doc types.ExportDocument) ([]byte, error) {
	html, err := renderHTML(doc)
	if err != nil {
		return nil, errors.NewExportError(errors.ErrCodeExportFailed,
			"Failed to render PDF page content", err)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, pdfRenderTimeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(false).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.5).
				WithMarginLeft(0.6).
				WithMarginRight(0.6).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if e.logger != nil {
			e.logger.LogError(err, "PDF rendering failed")
		}
		return nil, errors.NewExportError(errors.ErrCodeExportFailed,
			"Failed to print PDF (is Chromium installed?)", err)
	}

	return pdf, nil
}
