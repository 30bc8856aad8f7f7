package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

const (
	dateLayout = "Jan 02, 2006"
	font       = "Helvetica"
	margin     = 20.0
)

// column widths of the items table, in mm; they add up to the printable width.
var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Description", 80, "L"},
	{"Qty", 20, "C"},
	{"Unit Price", 30, "R"},
	{"Total", 30, "R"},
}

// Renderer implements ports.InvoiceRenderer with an A4 layout.
type Renderer struct {
	company string
}

func NewRenderer(company string) *Renderer {
	return &Renderer{company: company}
}

// Render produces the PDF document for inv.
func (r *Renderer) Render(ctx context.Context, inv *domain.Invoice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(inv.IssueDate)
	doc.SetModificationDate(inv.IssueDate)
	doc.SetTitle("Invoice "+inv.InvoiceNumber, false)
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.AliasNbPages("")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(font, "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	r.header(doc, tr, inv)
	r.billTo(doc, tr, inv)
	r.items(doc, tr, inv)
	r.total(doc, inv)
	r.notes(doc)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(doc *fpdf.Fpdf, tr func(string) string, inv *domain.Invoice) {
	doc.SetFont(font, "B", 24)
	doc.SetTextColor(33, 37, 41)
	doc.CellFormat(85, 12, "INVOICE", "", 0, "L", false, 0, "")

	doc.SetFont(font, "", 10)
	doc.CellFormat(0, 12, tr(r.company), "", 1, "R", false, 0, "")
	doc.Ln(4)

	rows := [][2]string{
		{"Invoice #:", inv.InvoiceNumber},
		{"Issue Date:", inv.IssueDate.Format(dateLayout)},
		{"Due Date:", inv.DueDate.Format(dateLayout)},
		{"Status:", string(inv.Status)},
	}
	if inv.AcceptedDate != nil {
		rows = append(rows, [2]string{"Accepted:", inv.AcceptedDate.Format(dateLayout)})
	}
	for _, row := range rows {
		doc.SetFont(font, "B", 10)
		doc.CellFormat(30, 6, row[0], "", 0, "L", false, 0, "")
		doc.SetFont(font, "", 10)
		doc.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)
}

func (r *Renderer) billTo(doc *fpdf.Fpdf, tr func(string) string, inv *domain.Invoice) {
	doc.SetFont(font, "B", 12)
	doc.CellFormat(0, 7, "Bill To:", "", 1, "L", false, 0, "")
	doc.SetFont(font, "", 11)
	doc.MultiCell(0, 6, tr(inv.CustomerName), "", "L", false)
	doc.Ln(6)
}

func (r *Renderer) items(doc *fpdf.Fpdf, tr func(string) string, inv *domain.Invoice) {
	doc.SetFont(font, "B", 10)
	doc.SetFillColor(52, 58, 64)
	doc.SetTextColor(255, 255, 255)
	for _, col := range itemColumns {
		doc.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont(font, "", 10)
	doc.SetTextColor(33, 37, 41)
	for i, it := range inv.Items {
		fill := i%2 == 1
		doc.SetFillColor(245, 245, 245)
		cells := []string{
			strconv.Itoa(i + 1),
			tr(it.Description),
			strconv.Itoa(it.Quantity),
			"$" + it.UnitPrice.StringFixed(2),
			"$" + it.TotalPrice.StringFixed(2),
		}
		for c, col := range itemColumns {
			doc.CellFormat(col.width, 7, cells[c], "1", 0, col.align, fill, 0, "")
		}
		doc.Ln(-1)
	}
	doc.Ln(4)
}

func (r *Renderer) total(doc *fpdf.Fpdf, inv *domain.Invoice) {
	doc.SetFont(font, "B", 12)
	doc.CellFormat(140, 8, "Total:", "", 0, "R", false, 0, "")
	doc.CellFormat(30, 8, "$"+inv.TotalAmount.StringFixed(2), "T", 1, "R", false, 0, "")
	doc.Ln(10)
}

func (r *Renderer) notes(doc *fpdf.Fpdf) {
	doc.SetFont(font, "B", 10)
	doc.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
	doc.SetFont(font, "", 10)
	doc.CellFormat(0, 6, "Thank you for your business!", "", 1, "L", false, 0, "")
}
