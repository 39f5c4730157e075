package chunk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/restobooks/invoice-pipeline/constants"
	"github.com/restobooks/invoice-pipeline/internal/extraction"
)

// Planner walks a source document chunk by chunk, shrinking the page window
// whenever the extraction service rejects a chunk for size. Images go through
// in a single call.
type Planner struct {
	Extractor extraction.Extractor
	Slicer    Slicer
	Logger    *slog.Logger

	// ChunkPages is the initial window width; defaults to
	// constants.DefaultChunkPages.
	ChunkPages int
}

func NewPlanner(ex extraction.Extractor, slicer Slicer, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		Extractor:  ex,
		Slicer:     slicer,
		Logger:     logger,
		ChunkPages: constants.DefaultChunkPages,
	}
}

// Extract returns every invoice reported across all chunks, in chunk-arrival
// order, before merging. Single images are assumed to fit under the service's
// size ceiling and are sent as-is.
func (p *Planner) Extract(ctx context.Context, doc []byte, mediaType string) ([]extraction.RawInvoice, error) {
	if constants.MapMediaTypeToFormat(mediaType) != constants.PDF {
		res, err := p.Extractor.Extract(ctx, doc, mediaType, "")
		if err != nil {
			return nil, err
		}
		return res.Invoices, nil
	}
	return p.extractPaginated(ctx, doc, mediaType)
}

// extractPaginated is an iterative state machine over [start, end) windows.
// Invariants: on PayloadTooLarge the width strictly decreases (floor 1), so
// each starting offset survives at most O(log width) retries; on success
// start advances. Both guarantee termination.
func (p *Planner) extractPaginated(ctx context.Context, doc []byte, mediaType string) ([]extraction.RawInvoice, error) {
	total, err := p.Slicer.PageCount(doc)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if total < 1 {
		return nil, fmt.Errorf("document has no pages")
	}

	width := p.ChunkPages
	if width < 1 {
		width = constants.DefaultChunkPages
	}

	var acc []extraction.RawInvoice
	start := 1
	for start <= total {
		end := start + width - 1
		if end > total {
			end = total
		}

		sub, err := p.Slicer.PageRange(doc, start, end)
		if err != nil {
			return nil, fmt.Errorf("build pages %d-%d: %w", start, end, err)
		}

		note := fmt.Sprintf(
			"This document contains pages %d through %d of a %d-page original. "+
				"An invoice may continue across page boundaries; keep vendor and invoice number consistent for continuation pages.",
			start, end, total)

		res, err := p.Extractor.Extract(ctx, sub, mediaType, note)
		if err != nil {
			if errors.Is(err, extraction.ErrPayloadTooLarge) {
				cur := end - start + 1
				if cur <= 1 {
					// already a single page; nothing left to shrink
					return nil, fmt.Errorf("page %d exceeds service size limit: %w", start, err)
				}
				width = cur / 2
				p.Logger.Warn("chunk.window.shrink",
					"start", start, "rejected_pages", cur, "new_width", width, "total_pages", total)
				continue
			}
			return nil, fmt.Errorf("extract pages %d-%d: %w", start, end, err)
		}

		p.Logger.Info("chunk.window.ok",
			"start", start, "end", end, "total_pages", total, "invoices", len(res.Invoices))
		acc = append(acc, res.Invoices...)
		start = end + 1
	}
	return acc, nil
}
