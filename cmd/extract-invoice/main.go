package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/restobooks/invoice-pipeline/constants"
	"github.com/restobooks/invoice-pipeline/internal/catalog"
	"github.com/restobooks/invoice-pipeline/internal/chunk"
	"github.com/restobooks/invoice-pipeline/internal/common"
	"github.com/restobooks/invoice-pipeline/internal/export"
	"github.com/restobooks/invoice-pipeline/internal/extraction"
	"github.com/restobooks/invoice-pipeline/internal/pipeline"
)

// extract-invoice runs the full pipeline over one scanned invoice file and
// writes a review workbook next to it.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: extract-invoice <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	mediaType := constants.MapExtToMediaType(filepath.Ext(path))
	if mediaType == "" {
		logger.Error("unsupported file extension", "path", path)
		os.Exit(2)
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read document", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	pool, err := catalog.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open catalog", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := catalog.NewPostgresStore(pool, logger)
	resolver := catalog.NewResolver(store, logger)

	client := extraction.NewClient(extraction.Config{
		APIKey:      cfg.Extraction.APIKey,
		BaseURL:     cfg.Extraction.BaseURL,
		Model:       cfg.Extraction.Model,
		Temperature: cfg.Extraction.Temperature,
		Timeout:     cfg.Extraction.Timeout,
	}, logger)

	planner := chunk.NewPlanner(client, chunk.NewPDFSlicer(), logger)
	planner.ChunkPages = cfg.Pipeline.ChunkPages

	proc := pipeline.NewProcessor(logger, planner, pipeline.NewNormalizer(resolver, logger))

	invoices, err := proc.ProcessDocument(ctx, doc, mediaType)
	if err != nil {
		logger.Error("pipeline failed", "path", path, "error", err)
		os.Exit(1)
	}

	wb, err := export.NewService(logger).ReviewWorkbookXLSX(invoices)
	if err != nil {
		logger.Error("build review workbook", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Pipeline.ReviewDir, 0o755); err != nil {
		logger.Error("create review dir", "dir", cfg.Pipeline.ReviewDir, "error", err)
		os.Exit(1)
	}
	base := filepath.Base(path)
	out := filepath.Join(cfg.Pipeline.ReviewDir, base[:len(base)-len(filepath.Ext(base))]+".xlsx")
	if err := os.WriteFile(out, wb, 0o644); err != nil {
		logger.Error("write review workbook", "path", out, "error", err)
		os.Exit(1)
	}

	logger.Info("done", "invoices", len(invoices), "workbook", out)
}
