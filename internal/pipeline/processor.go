package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/restobooks/invoice-pipeline/internal/chunk"
	"github.com/restobooks/invoice-pipeline/internal/entity"
)

// Processor coordinates chunked extraction, cross-chunk merging, and
// per-invoice normalization. One run per source document; runs share no
// state, so distinct documents may be processed concurrently as long as the
// catalog tolerates concurrent reads.
type Processor struct {
	Logger     *slog.Logger
	Planner    *chunk.Planner
	Normalizer *Normalizer

	// DocumentDelay is the pause between documents in ProcessBatch, to stay
	// under the extraction service's rate limits.
	DocumentDelay time.Duration
}

func NewProcessor(logger *slog.Logger, planner *chunk.Planner, normalizer *Normalizer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Planner: planner, Normalizer: normalizer}
}

// Document is one batch input.
type Document struct {
	Name      string
	Bytes     []byte
	MediaType string
}

// ProcessDocument runs extract → merge → normalize for one source document
// and returns the ordered normalized invoices. Warnings ride on the invoices;
// an error here means a fatal extraction failure (unparseable response, or a
// single page still over the service size limit).
func (p *Processor) ProcessDocument(ctx context.Context, doc []byte, mediaType string) ([]entity.NormalizedInvoice, error) {
	runID := uuid.New().String()
	start := time.Now()

	p.Logger.Info("pipeline.run.start", "run_id", runID, "media_type", mediaType, "doc_bytes", len(doc))

	raws, err := p.Planner.Extract(ctx, doc, mediaType)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "run_id", runID, "error", err)
		return nil, fmt.Errorf("extract document: %w", err)
	}

	merged := chunk.MergeInvoices(raws)
	if len(merged) < len(raws) {
		p.Logger.Info("pipeline.merge.collapsed",
			"run_id", runID, "fragments", len(raws), "invoices", len(merged))
	}

	out := make([]entity.NormalizedInvoice, 0, len(merged))
	warnings := 0
	for _, raw := range merged {
		inv := p.Normalizer.Normalize(ctx, raw)
		warnings += len(inv.Warnings)
		out = append(out, inv)
	}

	p.Logger.Info("pipeline.run.ok",
		"run_id", runID,
		"invoices", len(out),
		"warnings", warnings,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ProcessBatch runs documents sequentially with DocumentDelay between them.
// A fatal failure on one document is recorded and the batch continues; the
// per-document results and errors are returned index-aligned with docs.
func (p *Processor) ProcessBatch(ctx context.Context, docs []Document) ([][]entity.NormalizedInvoice, []error) {
	results := make([][]entity.NormalizedInvoice, len(docs))
	errs := make([]error, len(docs))
	for i, d := range docs {
		if i > 0 && p.DocumentDelay > 0 {
			select {
			case <-time.After(p.DocumentDelay):
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return results, errs
			}
		}
		invs, err := p.ProcessDocument(ctx, d.Bytes, d.MediaType)
		if err != nil {
			p.Logger.Error("pipeline.batch.document_failed", "name", d.Name, "error", err)
			errs[i] = err
			continue
		}
		results[i] = invs
	}
	return results, errs
}
