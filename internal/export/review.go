package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/restobooks/invoice-pipeline/internal/entity"
)

// Service produces XLSX bytes for the human review queue: one row per
// normalized invoice, with its warnings spelled out so unmatched vendors and
// total mismatches can be worked through by hand.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReviewWorkbookXLSX renders the invoices into a workbook. Invoices without
// warnings are included too — the sheet doubles as an import audit trail.
func (s *Service) ReviewWorkbookXLSX(invoices []entity.NormalizedInvoice) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Vendor",
		"Vendor Matched",
		"Invoice #",
		"Invoice Date",
		"Venue",
		"Total",
		"Line Sum",
		"Lines",
		"Unmatched Lines",
		"Warnings",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	warningCount := 0
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		unmatched := 0
		lineSum := decimal.Zero
		for _, line := range inv.Lines {
			lineSum = lineSum.Add(line.LineTotal)
			if line.ItemID == nil {
				unmatched++
			}
		}

		write(1, inv.VendorName)
		write(2, yesNo(inv.VendorID != nil))
		write(3, inv.InvoiceNumber)
		write(4, inv.InvoiceDate)
		write(5, inv.VenueName)
		write(6, inv.TotalAmount.StringFixed(2))
		write(7, lineSum.StringFixed(2))
		write(8, len(inv.Lines))
		write(9, unmatched)
		write(10, truncate(strings.Join(inv.Warnings, "; "), 500))

		warningCount += len(inv.Warnings)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // vendor
	_ = f.SetColWidth(sheet, "C", "D", 14)
	_ = f.SetColWidth(sheet, "E", "E", 24) // venue
	_ = f.SetColWidth(sheet, "F", "G", 12)
	_ = f.SetColWidth(sheet, "J", "J", 80) // warnings

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.review_workbook.ok",
		"invoices", len(invoices),
		"warnings", warningCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
