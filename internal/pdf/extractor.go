package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Extractor converts an uploaded PDF into ordered per-page plain text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Pages extracts the text of every page in document order. Blank pages yield
// empty strings so page numbering stays aligned with the source document.
func (e *Extractor) Pages(ctx context.Context, document []byte) ([]string, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("pdf: empty document")
	}
	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return nil, fmt.Errorf("pdf: open document: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	pages := make([]string, 0, count)
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("pdf: extract page %d: %w", i+1, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}
