// Package receipt renders sale receipts to PDF and stores the files.
package receipt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/sales"
)

// StoreInfo is the header block printed on every receipt.
type StoreInfo struct {
	Name    string
	Address string
	Phone   string
}

// PDFRenderer implements sales.Renderer with an A4 PDF layout.
type PDFRenderer struct {
	store StoreInfo
}

// NewPDFRenderer creates a new PDF receipt renderer.
func NewPDFRenderer(store StoreInfo) *PDFRenderer {
	return &PDFRenderer{store: store}
}

const (
	pageLeft  = 14.0
	pageRight = 196.0
)

// Render draws the receipt and returns the PDF bytes.
func (r *PDFRenderer) Render(_ context.Context, data sales.ReceiptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header: store name, address, phone.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, r.store.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, r.store.Address, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Phone: "+r.store.Phone, "", 1, "C", false, 0, "")
	pdf.Ln(2)
	r.rule(pdf)

	// Receipt info.
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(70, 6, "Receipt No: "+data.ReceiptNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, "Cashier: "+data.CashierName, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, data.DateTime.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(70, 6, "Customer: "+data.CustomerName, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Phone: "+data.CustomerPhone, "", 1, "L", false, 0, "")
	r.rule(pdf)
	pdf.Ln(2)

	// Items table header.
	pdf.SetFillColor(220, 220, 220)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(10, 7, "No", "", 0, "L", true, 0, "")
	pdf.CellFormat(82, 7, "Item Description", "", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Unit Price", "", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Amount", "", 1, "R", true, 0, "")

	// Items, alternate row shading.
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(242, 242, 242)
	for i, item := range data.Items {
		fill := i%2 == 1
		desc := item.Description
		if len(desc) > 48 {
			desc = desc[:48]
		}
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "", 0, "L", fill, 0, "")
		pdf.CellFormat(82, 6, desc, "", 0, "L", fill, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "R", fill, 0, "")
		pdf.CellFormat(35, 6, money(item.UnitPrice), "", 0, "R", fill, 0, "")
		pdf.CellFormat(35, 6, money(item.Amount), "", 1, "R", fill, 0, "")
	}

	pdf.Ln(2)
	r.rule(pdf)

	// Totals.
	pdf.SetFont("Helvetica", "", 9)
	r.totalRow(pdf, "Subtotal:", money(data.Subtotal))
	r.totalRow(pdf, "VAT (7.5%):", money(data.VAT))
	r.totalRow(pdf, "Discount:", money(data.Discount))
	r.rule(pdf)
	pdf.SetFont("Helvetica", "B", 11)
	r.totalRow(pdf, "GRAND TOTAL:", money(data.GrandTotal))

	// Footer.
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "Reference: "+data.Reference, "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.CellFormat(0, 4, "Thank you for shopping with us!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, "Goods once sold cannot be returned.", "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.Line(70, pdf.GetY(), 140, pdf.GetY())
	pdf.Ln(1)
	pdf.CellFormat(0, 4, "Authorized Signature", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) rule(pdf *gofpdf.Fpdf) {
	pdf.Line(pageLeft, pdf.GetY(), pageRight, pdf.GetY())
	pdf.Ln(1)
}

func (r *PDFRenderer) totalRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(147, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, value, "", 1, "R", false, 0, "")
}

func money(m types.Money) string {
	return m.StringFixed(2)
}
