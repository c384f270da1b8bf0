package layout

import (
	"fmt"
)

// ValidationWarning describes a layout issue found during validation.
type ValidationWarning struct {
	PageNumber int
	SlotIndex  int
	Message    string
	Severity   string // "error" or "warning"
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("page %d slot %d: %s", w.PageNumber, w.SlotIndex, w.Message)
}

// Validate checks all pages for layout integrity issues.
func Validate(pages []Page, config Config) []ValidationWarning {
	var warnings []ValidationWarning
	for _, page := range pages {
		warnings = append(warnings, validatePage(page, config)...)
	}
	return warnings
}

func validatePage(page Page, config Config) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01
	content := config.ContentRect()

	add := func(slot int, severity, format string, args ...any) {
		warnings = append(warnings, ValidationWarning{
			PageNumber: page.Number,
			SlotIndex:  slot,
			Message:    fmt.Sprintf(format, args...),
			Severity:   severity,
		})
	}

	for _, p := range page.Placements {
		i := p.SlotIndex

		// Zone integrity: everything stays inside the slot, the slot inside the content area
		if !content.Contains(p.Slot, eps) {
			add(i, "error", "slot (%.2f, %.2f, %.2f, %.2f) extends past the content area", p.Slot.X, p.Slot.Y, p.Slot.W, p.Slot.H)
		}
		if !p.Slot.Contains(p.Image, eps) {
			add(i, "error", "image rect extends past its slot")
		}
		if !p.Slot.Contains(p.Border, eps) {
			add(i, "error", "border rect extends past its slot")
		}
		if !p.Slot.Contains(p.CaptionRect, eps) {
			add(i, "error", "caption rect extends past its slot")
		}

		// Border must enclose the image with a positive margin on every side
		margins := []float64{
			p.Image.X - p.Border.X,
			p.Image.Y - p.Border.Y,
			p.Border.Right() - p.Image.Right(),
			p.Border.Bottom() - p.Image.Bottom(),
		}
		for _, m := range margins {
			if m <= 0 {
				add(i, "error", "border does not enclose image (margin %.2f)", m)
				break
			}
		}

		// Caption strictly below the image, no vertical overlap
		if p.CaptionRect.Y <= p.Image.Bottom() {
			add(i, "error", "caption top (%.2f) is not below image bottom (%.2f)", p.CaptionRect.Y, p.Image.Bottom())
		}
		if p.CaptionRect.H <= 0 {
			add(i, "error", "caption rect has no height")
		}

		if p.LowRes {
			add(i, "warning", "effective DPI %.0f is low for print", p.EffectiveDPI)
		}
	}

	// No overlaps: check all pairs of placements
	for i := 0; i < len(page.Placements); i++ {
		pi := page.Placements[i]
		for j := i + 1; j < len(page.Placements); j++ {
			pj := page.Placements[j]
			if pi.Slot.Overlaps(pj.Slot, eps) {
				add(pi.SlotIndex, "error", "slot %d overlaps with slot %d", pi.SlotIndex, pj.SlotIndex)
			}
			if pi.CaptionRect.Overlaps(pj.Border, eps) || pj.CaptionRect.Overlaps(pi.Border, eps) {
				add(pi.SlotIndex, "error", "caption of one slot overlaps the photo of the other (slots %d, %d)", pi.SlotIndex, pj.SlotIndex)
			}
		}
	}

	return warnings
}

// HasErrors reports whether any warning has error severity.
func HasErrors(warnings []ValidationWarning) bool {
	for _, w := range warnings {
		if w.Severity == "error" {
			return true
		}
	}
	return false
}

// rectsOverlap checks if two axis-aligned rectangles overlap with tolerance.
func rectsOverlap(x1, y1, w1, h1, x2, y2, w2, h2, eps float64) bool {
	if x1+w1 <= x2+eps || x2+w2 <= x1+eps {
		return false
	}
	if y1+h1 <= y2+eps || y2+h2 <= y1+eps {
		return false
	}
	return true
}
