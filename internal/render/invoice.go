// Package render turns finished records into sendable documents.
package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"shop-agent/internal/core"
)

var hundred = decimal.NewFromInt(100)

// PDFRenderer renders invoices as single-column A4 PDFs.
type PDFRenderer struct{}

// NewPDFRenderer returns a renderer with the default layout.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// RenderInvoice lays out the invoice header, line items and totals and
// returns the PDF bytes.
func (r *PDFRenderer) RenderInvoice(inv *core.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Invoice")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, "Invoice ID: "+inv.ID)
	pdf.Ln(5)
	pdf.Cell(0, 5, "Customer: "+inv.Customer)
	pdf.Ln(5)
	pdf.Cell(0, 5, "Date: "+inv.Date)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range inv.Items {
		pdf.CellFormat(90, 6, item.Product, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, item.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, item.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	r.totalLine(pdf, "Subtotal", inv.Subtotal.StringFixed(2), false)
	r.totalLine(pdf, fmt.Sprintf("Tax (%s%%)", inv.TaxRate.String()),
		inv.Subtotal.Mul(inv.TaxRate).Div(hundred).StringFixed(2), false)
	r.totalLine(pdf, "Discount", inv.Discount.StringFixed(2), false)
	r.totalLine(pdf, "Grand Total", inv.GrandTotal.StringFixed(2), true)
	r.totalLine(pdf, "Paid", inv.Paid.StringFixed(2), false)
	r.totalLine(pdf, "Due", inv.Due.StringFixed(2), false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) totalLine(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	if bold {
		pdf.SetFont("Helvetica", "B", 11)
		defer pdf.SetFont("Helvetica", "", 10)
	}
	pdf.CellFormat(150, 6, label+":", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, value, "", 1, "R", false, 0, "")
}
