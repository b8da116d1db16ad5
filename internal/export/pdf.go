package export

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// PDFOptions tweaks document metadata. Zero values are filled in by RenderPDF.
type PDFOptions struct {
	DocumentID string
	Now        func() time.Time
}

const (
	pageMargin = 15.0
	lineHeight = 7.0
	labelWidth = 40.0
)

// RenderPDF writes p as a portrait A4 document to w and returns the document id
// embedded in the title.
func RenderPDF(w io.Writer, p Preview, opts PDFOptions) (string, error) {
	docID := opts.DocumentID
	if docID == "" {
		docID = uuid.NewString()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("Invoice "+docID, true)
	pdf.SetCreator("backend-invoice", true)
	pdf.SetCreationDate(now())
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	width, _ := pdf.GetPageSize()
	contentWidth := width - 2*pageMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentWidth, 10, tr(p.Greeting), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(contentWidth, lineHeight, tr(p.Intro), "", "L", false)
	pdf.Ln(3)

	section(pdf, tr, contentWidth, "Your Order")
	for _, row := range p.Details {
		labelled(pdf, tr, contentWidth, row)
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range p.Items {
		pdf.CellFormat(contentWidth, lineHeight, tr(item), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	section(pdf, tr, contentWidth, "Amount")
	pdf.SetFont("Helvetica", "", 11)
	for i, row := range p.Amounts {
		if i == len(p.Amounts)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(labelWidth, lineHeight, tr(row.Label+":"), "T", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth-labelWidth, lineHeight, tr(row.Value), "T", 1, "R", false, 0, "")
	}

	pdf.SetAutoPageBreak(false, 0)
	pdf.SetY(-pageMargin - lineHeight)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentWidth, lineHeight, tr("Document "+docID), "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return docID, nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, width float64, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(width, 9, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func labelled(pdf *gofpdf.Fpdf, tr func(string) string, width float64, row Row) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelWidth, lineHeight, tr(row.Label+":"), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(width-labelWidth, lineHeight, tr(row.Value), "", 1, "L", false, 0, "")
}
