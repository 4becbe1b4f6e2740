package internal

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// pdfCanvas adapts an fpdf document to the Canvas interface. fpdf places
// the origin at the top-left with y growing downward, so every y coordinate
// is flipped against the page height.
type pdfCanvas struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

func newPDFCanvas() *pdfCanvas {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return &pdfCanvas{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *pdfCanvas) SetFont(style FontStyle, size float64) {
	styleStr := ""
	if style == StyleBold {
		styleStr = "B"
	}
	c.pdf.SetFont("Helvetica", styleStr, size)
}

func (c *pdfCanvas) Text(x, y float64, text string) {
	c.pdf.Text(x, pageHeight-y, c.translate(text))
}

func (c *pdfCanvas) StringWidth(text string) float64 {
	return c.pdf.GetStringWidth(c.translate(text))
}

func (c *pdfCanvas) Rule(x1, y, x2 float64) {
	c.pdf.Line(x1, pageHeight-y, x2, pageHeight-y)
}

func (c *pdfCanvas) NewPage() {
	c.pdf.AddPage()
}

// RenderBriefPDF lays a brief out as a paginated PDF and writes it to
// filename.
func RenderBriefPDF(brief, filename string) error {
	canvas := newPDFCanvas()
	NewLayout(canvas).Render(brief)

	if err := canvas.pdf.OutputFileAndClose(filename); err != nil {
		return fmt.Errorf("writing PDF %s: %w", filename, err)
	}
	return nil
}
