package chunk

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Slicer builds independently decodable page-range documents. Abstracted so
// the planner can be tested without real PDFs.
type Slicer interface {
	PageCount(doc []byte) (int, error)
	// PageRange returns a standalone document holding pages [start, end]
	// (1-based, inclusive).
	PageRange(doc []byte, start, end int) ([]byte, error)
}

// PDFSlicer implements Slicer with pdfcpu. Each call works on the chunk
// being built, so memory stays proportional to the chunk, not the document.
type PDFSlicer struct {
	conf *model.Configuration
}

func NewPDFSlicer() *PDFSlicer {
	conf := model.NewDefaultConfiguration()
	// tolerate the slightly broken PDFs scanners produce
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFSlicer{conf: conf}
}

func (s *PDFSlicer) PageCount(doc []byte) (int, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc), s.conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}

func (s *PDFSlicer) PageRange(doc []byte, start, end int) ([]byte, error) {
	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid page range %d-%d", start, end)
	}
	var buf bytes.Buffer
	sel := []string{fmt.Sprintf("%d-%d", start, end)}
	if err := api.Trim(bytes.NewReader(doc), &buf, sel, s.conf); err != nil {
		return nil, fmt.Errorf("pdfcpu trim %d-%d: %w", start, end, err)
	}
	return buf.Bytes(), nil
}
