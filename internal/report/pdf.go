package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// Generator renders report data to document bytes.
type Generator interface {
	Generate(ctx context.Context, data Data, opts Options) ([]byte, error)
}

// PDFGenerator renders the Program Flow as an A4 PDF.
type PDFGenerator struct {
	// Author is written to the document metadata.
	Author string
}

var _ Generator = PDFGenerator{}

// column layout in millimetres
var pdfColumns = []struct {
	header string
	width  float64
	align  string
}{
	{"Time", 22, "L"},
	{"Message", 70, "L"},
	{"Duration", 20, "R"},
	{"Program", 38, "L"},
	{"Notes", 30, "L"},
}

const (
	pdfLineHeight = 6.0
	pdfLogoHeight = 12.0
)

// Generate renders data. The context is checked between groups so a long
// report can be abandoned.
func (g PDFGenerator) Generate(ctx context.Context, data Data, opts Options) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(data.Title, true)
	pdf.SetCreator("spotgrid", true)
	if g.Author != "" {
		pdf.SetAuthor(g.Author, true)
	}
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, "Page "+strconv.Itoa(pdf.PageNo())+" of {nb}", "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if opts.LogoPath != "" {
		if _, err := os.Stat(opts.LogoPath); err != nil {
			return nil, fmt.Errorf("reading logo: %w", err)
		}
		pdf.ImageOptions(opts.LogoPath, 10, 10, 0, pdfLogoHeight, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		pdf.SetY(10 + pdfLogoHeight + 2)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(data.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(data.Date), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	for _, group := range data.TimeSlotGroups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.writeGroup(pdf, tr, group, data.EmptyTimeIndicator)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g PDFGenerator) writeGroup(pdf *fpdf.Fpdf, tr func(string) string, group TimeSlotGroup, emptyIndicator string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(225, 228, 240)
	header := fmt.Sprintf("%s   (%d spots, %s)", group.TimeLabel, group.SpotCount, group.TotalDuration)
	pdf.CellFormat(0, 7, tr(header), "B", 1, "L", true, 0, "")

	if len(group.Items) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, pdfLineHeight, tr(emptyIndicator), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		return
	}

	pdf.SetFont("Helvetica", "B", 9)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, pdfLineHeight, c.header, "B", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range group.Items {
		values := []string{it.Time, it.Message, it.Duration, it.Program, it.Notes}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, pdfLineHeight, fitText(pdf, tr(values[i]), c.width), "", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(pdfColumns[0].width+pdfColumns[1].width, pdfLineHeight, "Subtotal", "T", 0, "R", false, 0, "")
	pdf.CellFormat(pdfColumns[2].width, pdfLineHeight, group.TotalDuration, "T", 0, "R", false, 0, "")
	pdf.CellFormat(0, pdfLineHeight, "", "T", 1, "L", false, 0, "")
	pdf.Ln(2)
}

// fitText shortens s with an ellipsis until it fits width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > limit {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
