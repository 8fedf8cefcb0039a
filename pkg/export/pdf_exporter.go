package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 277.0 // A4 landscape minus margins

// PDFExporter renders datasets into a single-table landscape PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with a title line, an optional subtitle and the table.
func (e *PDFExporter) Render(data Dataset, title, subtitle string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	}
	if subtitle != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, subtitle, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	colWidth := pageWidth / float64(len(data.Headers))
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(data.Rows) == 0 {
		pdf.CellFormat(pageWidth, 7, "no rows", "1", 1, "C", false, 0, "")
	}
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
