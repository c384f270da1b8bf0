package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/kozaktomas/photo-report/internal/constants"
)

var (
	// ErrNoItems is returned when there is nothing to lay out.
	ErrNoItems = errors.New("no images to lay out")
	// ErrInvalidDimensions is returned for items with a zero or negative size.
	ErrInvalidDimensions = errors.New("image dimensions must be positive")
)

// Item is one photo to place: its pixel size and caption.
type Item struct {
	ID      string
	Width   int
	Height  int
	Caption string
}

// Placement holds the computed geometry of one photo on a page.
type Placement struct {
	PageNumber int // 1-based
	SlotIndex  int // 0 or 1 within the page
	ItemIndex  int // position in the input sequence
	ID         string
	Caption    string
	// Slot is the band reserved for this photo; every other rect lies inside it.
	Slot        Rect
	Image       Rect
	Border      Rect
	CaptionRect Rect
	// Scale is mm per source pixel.
	Scale        float64
	EffectiveDPI float64
	LowRes       bool
}

// Page is one output page with its occupied slots in slot order.
type Page struct {
	Number     int
	Placements []Placement
}

// Compose partitions items into pages of perPage slots, in input order, and
// computes where each photo, its border and its caption go. Slots without an
// item on the last page are left out.
func Compose(items []Item, perPage int, config Config) ([]Page, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	slots, err := SlotRects(perPage, config)
	if err != nil {
		return nil, err
	}
	for i, it := range items {
		if it.Width <= 0 || it.Height <= 0 {
			return nil, fmt.Errorf("%w: item %d is %dx%d", ErrInvalidDimensions, i, it.Width, it.Height)
		}
	}

	pages := make([]Page, 0, PageCount(len(items), perPage))
	for start := 0; start < len(items); start += perPage {
		page := Page{Number: len(pages) + 1}
		for slotIdx, slot := range slots {
			idx := start + slotIdx
			if idx >= len(items) {
				break
			}
			p := placeInSlot(items[idx], slot, config)
			p.PageNumber = page.Number
			p.SlotIndex = slotIdx
			p.ItemIndex = idx
			page.Placements = append(page.Placements, p)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// placeInSlot aspect-fits the photo into the slot above the caption reserve,
// centred horizontally and vertically within the photo box.
func placeInSlot(it Item, slot Rect, config Config) Placement {
	inset := config.BorderInsetMM
	boxW := slot.W - 2*inset
	boxH := slot.H - config.CaptionReserveMM - 2*inset

	scale := math.Min(boxW/float64(it.Width), boxH/float64(it.Height))
	drawW := float64(it.Width) * scale
	drawH := float64(it.Height) * scale

	img := Rect{
		X: slot.X + (slot.W-drawW)/2,
		Y: slot.Y + inset + (boxH-drawH)/2,
		W: drawW,
		H: drawH,
	}
	border := Rect{X: img.X - inset, Y: img.Y - inset, W: drawW + 2*inset, H: drawH + 2*inset}

	captionY := border.Bottom() + config.CaptionGapMM
	caption := Rect{
		X: slot.X + config.CaptionInsetMM,
		Y: captionY,
		W: slot.W - 2*config.CaptionInsetMM,
		H: slot.Bottom() - captionY,
	}

	dpi := math.Round(25.4/scale*10) / 10

	return Placement{
		ID:           it.ID,
		Caption:      it.Caption,
		Slot:         slot,
		Image:        img,
		Border:       border,
		CaptionRect:  caption,
		Scale:        scale,
		EffectiveDPI: dpi,
		LowRes:       dpi < constants.LowResDPIThreshold,
	}
}
