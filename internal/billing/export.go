package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ExportHistory renders a client's billing history as an xlsx workbook with
// one sheet for local requests and one for processor-confirmed payments.
func (s *Service) ExportHistory(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	history, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const requestsSheet = "Payment Requests"
	f.SetSheetName("Sheet1", requestsSheet)
	headers := []string{"ID", "Amount", "Currency", "Description", "Status", "Checkout Link", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(requestsSheet, cell, h)
	}
	for row, req := range history.Requests {
		link := ""
		if req.CheckoutURL != nil {
			link = *req.CheckoutURL
		}
		values := []interface{}{
			req.ID.String(),
			float64(req.AmountCents) / 100,
			req.Currency,
			req.Description,
			string(req.Status),
			link,
			req.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(requestsSheet, cell, v)
		}
	}

	const paymentsSheet = "Processor Payments"
	if _, err := f.NewSheet(paymentsSheet); err != nil {
		return nil, fmt.Errorf("failed to add payments sheet: %w", err)
	}
	headers = []string{"ID", "Type", "Amount", "Currency", "Status", "Receipt", "Sample", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(paymentsSheet, cell, h)
	}
	for row, rec := range history.Payments {
		values := []interface{}{
			rec.ID,
			string(rec.Type),
			float64(rec.AmountCents) / 100,
			rec.Currency,
			rec.Status,
			rec.ReceiptURL,
			rec.Sample,
			rec.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(paymentsSheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
