package layout

import (
	"errors"
	"fmt"
)

// Page dimensions in mm (A4 portrait).
const (
	PageW = 210.0
	PageH = 297.0
)

// ErrInvalidPerPage is returned for page capacities other than 1 or 2.
var ErrInvalidPerPage = errors.New("photos per page must be 1 or 2")

// Config holds the page margins and the fixed spacing around each photo.
type Config struct {
	MarginMM          float64 // page margin on all four sides
	HeaderHeightMM    float64 // report number line below the top margin
	FooterHeightMM    float64 // date / folio line above the bottom margin
	SlotGapMM         float64 // vertical gap between the two slots of a page
	CaptionReserveMM  float64 // space kept free below each photo for its caption
	CaptionGapMM      float64 // gap between the border and the caption text
	CaptionInsetMM    float64 // horizontal inset of the caption inside the slot
	BorderInsetMM     float64 // distance from the photo edge to its border stroke
	BorderLineWidthMM float64
	CaptionFontSizePt float64
}

// DefaultConfig returns the field report layout.
func DefaultConfig() Config {
	return Config{
		MarginMM:          12.0,
		HeaderHeightMM:    12.0,
		FooterHeightMM:    8.0,
		SlotGapMM:         8.0,
		CaptionReserveMM:  16.0,
		CaptionGapMM:      2.0,
		CaptionInsetMM:    2.0,
		BorderInsetMM:     0.5,
		BorderLineWidthMM: 0.3,
		CaptionFontSizePt: 10.0,
	}
}

// Validate checks that every slot still has room for a photo and a caption.
func (c Config) Validate() error {
	switch {
	case c.MarginMM < 0 || c.HeaderHeightMM < 0 || c.FooterHeightMM < 0 || c.SlotGapMM < 0:
		return errors.New("margins and gaps must not be negative")
	case c.BorderInsetMM <= 0:
		return fmt.Errorf("border inset must be positive, got %.2f", c.BorderInsetMM)
	case c.CaptionReserveMM <= c.CaptionGapMM:
		return fmt.Errorf("caption reserve (%.2f) must exceed caption gap (%.2f)", c.CaptionReserveMM, c.CaptionGapMM)
	case 2*c.CaptionInsetMM >= c.UsableWidth():
		return fmt.Errorf("caption inset %.2f leaves no caption width", c.CaptionInsetMM)
	}
	slotH := (c.UsableHeight() - c.SlotGapMM) / 2
	if slotH-c.CaptionReserveMM-2*c.BorderInsetMM <= 0 {
		return fmt.Errorf("slot height %.2f leaves no room for a photo", slotH)
	}
	return nil
}

// UsableWidth returns the horizontal space between the side margins.
// 210 - 2*12 = 186mm for the default config.
func (c Config) UsableWidth() float64 {
	return PageW - 2*c.MarginMM
}

// UsableHeight returns the vertical space left for slots.
// 297 - 2*12 - 12 - 8 = 253mm for the default config.
func (c Config) UsableHeight() float64 {
	return PageH - 2*c.MarginMM - c.HeaderHeightMM - c.FooterHeightMM
}

// ContentTop returns the Y of the first slot, measured from the page top.
func (c Config) ContentTop() float64 {
	return c.MarginMM + c.HeaderHeightMM
}

// ContentRect returns the area all slots live in.
func (c Config) ContentRect() Rect {
	return Rect{X: c.MarginMM, Y: c.ContentTop(), W: c.UsableWidth(), H: c.UsableHeight()}
}

// Rect is an axis-aligned rectangle in mm, origin at the page top-left, Y down.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether o lies inside r with tolerance eps.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps && o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect, eps float64) bool {
	return rectsOverlap(r.X, r.Y, r.W, r.H, o.X, o.Y, o.W, o.H, eps)
}

// SlotRects returns the slot rectangles of one page. Each slot spans the usable
// width and an equal share of the usable height; two slots are separated by SlotGapMM.
func SlotRects(perPage int, config Config) ([]Rect, error) {
	if perPage != 1 && perPage != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPerPage, perPage)
	}
	gap := config.SlotGapMM * float64(perPage-1)
	slotH := (config.UsableHeight() - gap) / float64(perPage)

	slots := make([]Rect, perPage)
	for i := range perPage {
		slots[i] = Rect{
			X: config.MarginMM,
			Y: config.ContentTop() + float64(i)*(slotH+config.SlotGapMM),
			W: config.UsableWidth(),
			H: slotH,
		}
	}
	return slots, nil
}

// PageCount returns how many pages n photos occupy.
func PageCount(n, perPage int) int {
	if n <= 0 || perPage <= 0 {
		return 0
	}
	return (n + perPage - 1) / perPage
}
