// Package pdf renders invoices as downloadable A4 documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth = 190.0
	lineH     = 6.0
)

// column widths of the line item table; they add up to pageWidth
var cols = [4]float64{100, 20, 35, 35}

// RenderInvoice lays out inv issued by from. from may be nil, in which case
// the issuer block is left out.
func RenderInvoice(inv *domain.Invoice, from *domain.User) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetAuthor(issuerName(from), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(pageWidth/2, 10, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(pageWidth/2, 10, tr(inv.InvoiceNumber), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(pageWidth/2, lineH, "Status: "+string(inv.Status), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/2, lineH, "Issued: "+inv.IssueDate.String(), "", 1, "R", false, 0, "")
	pdf.CellFormat(pageWidth/2, lineH, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/2, lineH, "Due: "+inv.DueDate.String(), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	if from != nil {
		block(pdf, tr, "From", issuerLines(from))
	}
	block(pdf, tr, "Bill to", []string{inv.ClientName, inv.ClientEmail, inv.ClientAddress})

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Description", "Qty", "Unit price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 8, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range inv.Items {
		pdf.CellFormat(cols[0], 7, tr(it.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, it.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, it.LineTotal().StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	labelW := cols[0] + cols[1] + cols[2]
	total := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, value, "", 1, "R", false, 0, "")
	}
	total("Subtotal", inv.Subtotal.StringFixed(2), false)
	total(fmt.Sprintf("Tax (%s%%)", domain.TaxRate.Shift(2).String()), inv.Tax.StringFixed(2), false)
	total("Total", inv.Amount.StringFixed(2), true)

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pageWidth, lineH, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(pageWidth, 5, tr(inv.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name for inv.
func Filename(inv *domain.Invoice) string {
	return inv.InvoiceNumber + ".pdf"
}

func block(pdf *gofpdf.Fpdf, tr func(string) string, title string, lines []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(pageWidth, lineH, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		if l == "" {
			continue
		}
		pdf.CellFormat(pageWidth, 5, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func issuerName(u *domain.User) string {
	if u == nil {
		return ""
	}
	if u.BusinessName != "" {
		return u.BusinessName
	}
	return u.Name
}

func issuerLines(u *domain.User) []string {
	lines := []string{issuerName(u), u.Email, u.Address}
	if loc := joinNonEmpty(" ", u.PostalCode, u.City); loc != "" {
		lines = append(lines, joinNonEmpty(", ", loc, u.Country))
	} else if u.Country != "" {
		lines = append(lines, u.Country)
	}
	if u.VATNumber != "" {
		lines = append(lines, "VAT: "+u.VATNumber)
	}
	if u.RegistrationNumber != "" {
		lines = append(lines, "Reg. no: "+u.RegistrationNumber)
	}
	if u.Phone != "" {
		lines = append(lines, u.Phone)
	}
	return lines
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
