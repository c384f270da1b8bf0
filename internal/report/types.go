package report

import (
	"fmt"

	"github.com/kozaktomas/photo-report/internal/layout"
)

// Metadata is the caller-chosen text printed on every page.
type Metadata struct {
	Number    string // report number, e.g. "1234/7-000123-4"
	Label     string // variant label printed before the number
	DateText  string // already formatted by the caller
	PageLabel string // folio prefix, defaults to "Page"
}

// HeaderText returns the header line of every page.
func (m Metadata) HeaderText() string {
	if m.Label == "" {
		return m.Number
	}
	return m.Label + " " + m.Number
}

// Writer serializes composed pages into document bytes. Images are keyed by
// placement ID and hold JPEG data.
type Writer interface {
	Write(meta Metadata, pages []layout.Page, images map[string][]byte) ([]byte, error)
}

// CaptionChecker is implemented by writers that can tell whether each caption
// fits the space the layout reserved for it.
type CaptionChecker interface {
	CheckCaptions(pages []layout.Page) []layout.ValidationWarning
}

// --- Export Report Types ---

// ExportReport contains metadata about a generated document for quality analysis.
type ExportReport struct {
	ReportNumber string       `json:"report_number"`
	PageCount    int          `json:"page_count"`
	PhotoCount   int          `json:"photo_count"`
	Bytes        int          `json:"bytes"`
	Pages        []ReportPage `json:"pages"`
	Warnings     []string     `json:"warnings"`
}

// ReportPage describes a single page in the export report.
type ReportPage struct {
	PageNumber int           `json:"page_number"`
	Photos     []ReportPhoto `json:"photos"`
}

// ReportPhoto describes a single photo placement in the export report.
type ReportPhoto struct {
	AssetID      string  `json:"asset_id"`
	SlotIndex    int     `json:"slot_index"`
	Bytes        int     `json:"bytes"`
	EffectiveDPI float64 `json:"effective_dpi"`
	LowRes       bool    `json:"low_res"`
}

// BuildExportReport summarizes composed pages and their validation warnings.
func BuildExportReport(meta Metadata, pages []layout.Page, images map[string][]byte, warnings []layout.ValidationWarning, size int) *ExportReport {
	report := &ExportReport{
		ReportNumber: meta.Number,
		PageCount:    len(pages),
		Bytes:        size,
		Pages:        make([]ReportPage, 0, len(pages)),
	}
	for _, page := range pages {
		rp := ReportPage{PageNumber: page.Number}
		for _, p := range page.Placements {
			rp.Photos = append(rp.Photos, ReportPhoto{
				AssetID:      p.ID,
				SlotIndex:    p.SlotIndex,
				Bytes:        len(images[p.ID]),
				EffectiveDPI: p.EffectiveDPI,
				LowRes:       p.LowRes,
			})
			report.PhotoCount++
		}
		report.Pages = append(report.Pages, rp)
	}
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Layout: %s", w))
	}
	return report
}
