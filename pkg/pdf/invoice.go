package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// InvoiceData is everything an invoice or receipt PDF needs to render.
// Amounts are cents; the renderer is the only place they become dollars.
type InvoiceData struct {
	Number      string
	IssuedAt    time.Time
	ClientName  string
	ClientEmail string
	Description string
	AmountCents int64
	Currency    string
	Status      string
	CheckoutURL string
	Sample      bool
}

// RenderInvoice produces a single-page invoice PDF.
func RenderInvoice(data InvoiceData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(120, 12, "Payment Request")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 12, "Invoice "+data.Number, "", 1, "R", false, 0, "")

	if data.Sample {
		pdf.SetTextColor(200, 80, 0)
		pdf.CellFormat(0, 6, "SAMPLE — demo data, no payment due", "", 1, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Issued: "+data.IssuedAt.Format("January 2, 2006"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Billed to: "+data.ClientName)
	if data.ClientEmail != "" {
		pdf.Ln(6)
		pdf.Cell(0, 6, data.ClientEmail)
	}

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(130, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(130, 8, data.Description, "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, formatAmount(data.AmountCents, data.Currency), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "Total due", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, formatAmount(data.AmountCents, data.Currency), "1", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Status: "+data.Status)
	if data.CheckoutURL != "" {
		pdf.Ln(6)
		pdf.SetTextColor(0, 0, 200)
		pdf.CellFormat(0, 6, "Pay online: "+data.CheckoutURL, "", 1, "L", false, 0, data.CheckoutURL)
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(cents int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}
