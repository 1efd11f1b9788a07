package extract

import (
	"context"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Extractor turns a stored document into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

// Extract returns the plain text of every page joined with "\n", each page
// trimmed of surrounding whitespace. Pages without content contribute an empty line.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pt, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(pt))
	}
	return strings.Join(pages, "\n"), nil
}
