package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/kozaktomas/photo-report/internal/layout"
)

const (
	fontFamily     = "Helvetica"
	headerFontSize = 10.0
	footerFontSize = 8.0
	ptToMM         = 25.4 / 72.0
	lineSpacing    = 1.2
	captionGray    = 40
)

// PDFWriter renders composed pages to an A4 PDF.
type PDFWriter struct {
	layout layout.Config
}

// NewPDFWriter creates a writer for pages composed with cfg.
func NewPDFWriter(cfg layout.Config) *PDFWriter {
	return &PDFWriter{layout: cfg}
}

// Write implements Writer. Nothing is returned unless every page rendered.
func (w *PDFWriter) Write(meta Metadata, pages []layout.Page, images map[string][]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, layout.ErrNoItems
	}
	cfg := w.layout

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(cfg.MarginMM, cfg.MarginMM, cfg.MarginMM)
	pdf.SetAutoPageBreak(false, cfg.MarginMM)
	pdf.AliasNbPages("")
	pdf.SetCreator("photo-report", true)
	pdf.SetTitle(meta.HeaderText(), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() { w.drawHeader(pdf, tr, meta) })
	pdf.SetFooterFunc(func() { w.drawFooter(pdf, tr, meta) })

	registered := make(map[string]bool)
	for _, page := range pages {
		pdf.AddPage()
		for _, p := range page.Placements {
			data, ok := images[p.ID]
			if !ok {
				return nil, fmt.Errorf("no image data for asset %s on page %d", p.ID, page.Number)
			}
			if !registered[p.ID] {
				pdf.RegisterImageOptionsReader(p.ID, gofpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(data))
				if pdf.Err() {
					return nil, fmt.Errorf("failed to register image %s: %w", p.ID, pdf.Error())
				}
				registered[p.ID] = true
			}
			w.drawPlacement(pdf, tr, p)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *PDFWriter) drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, meta Metadata) {
	cfg := w.layout
	pdf.SetFont(fontFamily, "", headerFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(cfg.MarginMM, cfg.MarginMM+cfg.HeaderHeightMM/2, tr(meta.HeaderText()))

	ruleY := cfg.ContentTop() - 1
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.25)
	pdf.Line(cfg.MarginMM, ruleY, layout.PageW-cfg.MarginMM, ruleY)
}

func (w *PDFWriter) drawFooter(pdf *gofpdf.Fpdf, tr func(string) string, meta Metadata) {
	cfg := w.layout
	y := layout.PageH - cfg.MarginMM - cfg.FooterHeightMM/2 + footerFontSize*ptToMM/2
	pdf.SetFont(fontFamily, "", footerFontSize)
	pdf.SetTextColor(0, 0, 0)
	if meta.DateText != "" {
		pdf.Text(cfg.MarginMM, y, tr(meta.DateText))
	}

	label := meta.PageLabel
	if label == "" {
		label = "Page"
	}
	folio := tr(fmt.Sprintf("%s %d / {nb}", label, pdf.PageNo()))
	pdf.Text(layout.PageW-cfg.MarginMM-pdf.GetStringWidth(folio), y, folio)
}

// drawPlacement strokes the border, places the photo and writes the wrapped
// caption inside its rect. Lines past the rect are not drawn; CheckCaptions
// reports them.
func (w *PDFWriter) drawPlacement(pdf *gofpdf.Fpdf, tr func(string) string, p layout.Placement) {
	cfg := w.layout

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(cfg.BorderLineWidthMM)
	pdf.Rect(p.Border.X, p.Border.Y, p.Border.W, p.Border.H, "D")

	pdf.ImageOptions(p.ID, p.Image.X, p.Image.Y, p.Image.W, p.Image.H, false,
		gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")

	if p.Caption == "" {
		return
	}
	pdf.SetFont(fontFamily, "", cfg.CaptionFontSizePt)
	pdf.SetTextColor(captionGray, captionGray, captionGray)
	lines, maxLines := w.wrapCaption(pdf, tr, p)
	lineH := w.captionLineHeight()
	for i, line := range lines[:min(len(lines), maxLines)] {
		pdf.SetXY(p.CaptionRect.X, p.CaptionRect.Y+float64(i)*lineH)
		pdf.CellFormat(p.CaptionRect.W, lineH, string(line), "", 0, "L", false, 0, "")
	}
}

func (w *PDFWriter) captionLineHeight() float64 {
	return w.layout.CaptionFontSizePt * ptToMM * lineSpacing
}

// wrapCaption splits the caption to the caption rect width with the current
// font and returns how many of the lines fit its height.
func (w *PDFWriter) wrapCaption(pdf *gofpdf.Fpdf, tr func(string) string, p layout.Placement) ([][]byte, int) {
	maxLines := int(math.Floor(p.CaptionRect.H / w.captionLineHeight()))
	return pdf.SplitLines([]byte(tr(p.Caption)), p.CaptionRect.W), maxLines
}

// CheckCaptions implements CaptionChecker using the caption font metrics.
func (w *PDFWriter) CheckCaptions(pages []layout.Page) []layout.ValidationWarning {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont(fontFamily, "", w.layout.CaptionFontSizePt)

	var warnings []layout.ValidationWarning
	for _, page := range pages {
		for _, p := range page.Placements {
			if p.Caption == "" {
				continue
			}
			lines, maxLines := w.wrapCaption(pdf, tr, p)
			if len(lines) <= maxLines {
				continue
			}
			warnings = append(warnings, layout.ValidationWarning{
				PageNumber: page.Number,
				SlotIndex:  p.SlotIndex,
				Message: fmt.Sprintf("caption of %s needs %d lines but %d fit, %d not printed",
					p.ID, len(lines), maxLines, len(lines)-maxLines),
				Severity: "warning",
			})
		}
	}
	return warnings
}
