package layout

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.BorderInsetMM <= 0 {
		t.Error("border inset should be positive")
	}
}

func TestUsableArea(t *testing.T) {
	cfg := DefaultConfig()
	// 210 - 2*12 = 186
	if got := cfg.UsableWidth(); math.Abs(got-186.0) > 0.01 {
		t.Errorf("UsableWidth: expected 186.00, got %.2f", got)
	}
	// 297 - 2*12 - 12 - 8 = 253
	if got := cfg.UsableHeight(); math.Abs(got-253.0) > 0.01 {
		t.Errorf("UsableHeight: expected 253.00, got %.2f", got)
	}
	// Margins + header + usable + footer sum to the page height
	total := 2*cfg.MarginMM + cfg.HeaderHeightMM + cfg.UsableHeight() + cfg.FooterHeightMM
	if math.Abs(total-PageH) > 0.01 {
		t.Errorf("zones should sum to page height, got %.2f", total)
	}
}

func TestConfigValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero border inset", func(c *Config) { c.BorderInsetMM = 0 }},
		{"caption gap swallows reserve", func(c *Config) { c.CaptionGapMM = c.CaptionReserveMM }},
		{"no room for photo", func(c *Config) { c.CaptionReserveMM = 200 }},
		{"negative margin", func(c *Config) { c.MarginMM = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSlotRects(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("one per page", func(t *testing.T) {
		slots, err := SlotRects(1, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(slots) != 1 {
			t.Fatalf("expected 1 slot, got %d", len(slots))
		}
		if math.Abs(slots[0].H-cfg.UsableHeight()) > 0.01 {
			t.Errorf("single slot should take the usable height, got %.2f", slots[0].H)
		}
	})

	t.Run("two per page", func(t *testing.T) {
		slots, err := SlotRects(2, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(slots) != 2 {
			t.Fatalf("expected 2 slots, got %d", len(slots))
		}
		// (253 - 8) / 2 = 122.5
		for i, s := range slots {
			if math.Abs(s.H-122.5) > 0.01 {
				t.Errorf("slot %d: expected height 122.50, got %.2f", i, s.H)
			}
			if !cfg.ContentRect().Contains(s, 0.01) {
				t.Errorf("slot %d outside content area: %+v", i, s)
			}
		}
		if gap := slots[1].Y - slots[0].Bottom(); math.Abs(gap-cfg.SlotGapMM) > 0.01 {
			t.Errorf("expected gap %.2f between slots, got %.2f", cfg.SlotGapMM, gap)
		}
	})

	for _, perPage := range []int{0, 3, -1} {
		if _, err := SlotRects(perPage, cfg); !errors.Is(err, ErrInvalidPerPage) {
			t.Errorf("perPage %d: expected ErrInvalidPerPage, got %v", perPage, err)
		}
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		n, perPage, want int
	}{
		{0, 2, 0},
		{1, 2, 1},
		{2, 2, 1},
		{3, 2, 2},
		{3, 1, 3},
		{15, 2, 8},
	}
	for _, tt := range tests {
		if got := PageCount(tt.n, tt.perPage); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.n, tt.perPage, got, tt.want)
		}
	}
}

func scenarioItems() []Item {
	// First photo already reduced by the compression pre-pass (4000x3000 -> 2000x1500).
	return []Item{
		{ID: "a", Width: 2000, Height: 1500, Caption: "North facade"},
		{ID: "b", Width: 500, Height: 500, Caption: "Detail"},
		{ID: "c", Width: 1200, Height: 800, Caption: ""},
	}
}

func TestCompose_ThreeImagesTwoPerPage(t *testing.T) {
	cfg := DefaultConfig()
	pages, err := Compose(scenarioItems(), 2, cfg)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if len(pages[0].Placements) != 2 || len(pages[1].Placements) != 1 {
		t.Errorf("expected 2 then 1 placements, got %d and %d", len(pages[0].Placements), len(pages[1].Placements))
	}

	order := []string{"a", "b", "c"}
	k := 0
	for pi, page := range pages {
		if page.Number != pi+1 {
			t.Errorf("page %d numbered %d", pi+1, page.Number)
		}
		for si, p := range page.Placements {
			if p.ID != order[k] || p.ItemIndex != k {
				t.Errorf("placement %d: got %s/%d, want %s/%d", k, p.ID, p.ItemIndex, order[k], k)
			}
			if p.SlotIndex != si || p.PageNumber != page.Number {
				t.Errorf("placement %d: slot %d page %d", k, p.SlotIndex, p.PageNumber)
			}
			k++
		}
	}

	if warnings := Validate(pages, cfg); HasErrors(warnings) {
		t.Errorf("expected no layout errors, got %v", warnings)
	}
}

func TestCompose_PlacementRules(t *testing.T) {
	shapes := [][2]int{{2000, 1500}, {1500, 2000}, {500, 500}, {4000, 100}, {100, 4000}, {1, 1}}
	for _, perPage := range []int{1, 2} {
		var items []Item
		for _, s := range shapes {
			items = append(items, Item{Width: s[0], Height: s[1], Caption: "x"})
		}
		pages, err := Compose(items, perPage, DefaultConfig())
		if err != nil {
			t.Fatalf("Compose: %v", err)
		}
		for _, page := range pages {
			for _, p := range page.Placements {
				if !p.Slot.Contains(p.Image, 1e-9) {
					t.Errorf("perPage %d: image %+v outside slot %+v", perPage, p.Image, p.Slot)
				}
				if p.CaptionRect.Y <= p.Image.Bottom() {
					t.Errorf("perPage %d: caption not strictly below image", perPage)
				}
				if p.Border.X >= p.Image.X || p.Border.Y >= p.Image.Y ||
					p.Border.Right() <= p.Image.Right() || p.Border.Bottom() <= p.Image.Bottom() {
					t.Errorf("perPage %d: border %+v does not enclose image %+v", perPage, p.Border, p.Image)
				}
				srcAspect := float64(items[p.ItemIndex].Width) / float64(items[p.ItemIndex].Height)
				if got := p.Image.W / p.Image.H; math.Abs(got-srcAspect)/srcAspect > 1e-9 {
					t.Errorf("aspect changed from %.4f to %.4f", srcAspect, got)
				}
				if math.Abs(p.Image.X+p.Image.W/2-(p.Slot.X+p.Slot.W/2)) > 1e-9 {
					t.Error("image not horizontally centred in slot")
				}
			}
			if len(page.Placements) == 2 {
				a, b := page.Placements[0], page.Placements[1]
				if a.Image.Bottom() > b.Image.Y {
					t.Errorf("image rects overlap vertically: %.2f > %.2f", a.Image.Bottom(), b.Image.Y)
				}
				if a.CaptionRect.Bottom() > b.Border.Y {
					t.Error("caption of the first slot reaches into the second photo")
				}
			}
		}
		if warnings := Validate(pages, DefaultConfig()); HasErrors(warnings) {
			t.Errorf("perPage %d: unexpected errors %v", perPage, warnings)
		}
	}
}

func TestCompose_AspectFitSaturatesOneSide(t *testing.T) {
	cfg := DefaultConfig()
	pages, err := Compose([]Item{{Width: 4000, Height: 100}, {Width: 100, Height: 4000}}, 2, cfg)
	if err != nil {
		t.Fatal(err)
	}
	boxW := pages[0].Placements[0].Slot.W - 2*cfg.BorderInsetMM
	boxH := pages[0].Placements[0].Slot.H - cfg.CaptionReserveMM - 2*cfg.BorderInsetMM

	wide := pages[0].Placements[0]
	if math.Abs(wide.Image.W-boxW) > 1e-9 {
		t.Errorf("wide photo should fill the box width %.2f, got %.2f", boxW, wide.Image.W)
	}
	tall := pages[0].Placements[1]
	if math.Abs(tall.Image.H-boxH) > 1e-9 {
		t.Errorf("tall photo should fill the box height %.2f, got %.2f", boxH, tall.Image.H)
	}
}

func TestCompose_EffectiveDPI(t *testing.T) {
	pages, err := Compose([]Item{{Width: 2000, Height: 1500}, {Width: 200, Height: 150}}, 2, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	big, small := pages[0].Placements[0], pages[0].Placements[1]
	if big.LowRes {
		t.Errorf("2000px photo should not be low-res (%.1f DPI)", big.EffectiveDPI)
	}
	if !small.LowRes {
		t.Errorf("200px photo should be low-res (%.1f DPI)", small.EffectiveDPI)
	}
	want := math.Round(25.4/big.Scale*10) / 10
	if big.EffectiveDPI != want {
		t.Errorf("expected %.1f DPI, got %.1f", want, big.EffectiveDPI)
	}
}

func TestCompose_Errors(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := Compose(nil, 2, cfg); !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}
	if _, err := Compose([]Item{{Width: 10, Height: 10}}, 3, cfg); !errors.Is(err, ErrInvalidPerPage) {
		t.Errorf("expected ErrInvalidPerPage, got %v", err)
	}
	if _, err := Compose([]Item{{Width: 0, Height: 10}}, 1, cfg); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestValidate_DetectsBrokenPlacements(t *testing.T) {
	cfg := DefaultConfig()
	slot := Rect{X: 12, Y: 24, W: 186, H: 122.5}

	t.Run("caption overlapping image", func(t *testing.T) {
		page := Page{Number: 1, Placements: []Placement{{
			Slot:        slot,
			Image:       Rect{X: 20, Y: 30, W: 100, H: 80},
			Border:      Rect{X: 19, Y: 29, W: 102, H: 82},
			CaptionRect: Rect{X: 14, Y: 100, W: 182, H: 40},
		}}}
		if !HasErrors(Validate([]Page{page}, cfg)) {
			t.Error("expected an error for caption above image bottom")
		}
	})

	t.Run("border touching image", func(t *testing.T) {
		page := Page{Number: 1, Placements: []Placement{{
			Slot:        slot,
			Image:       Rect{X: 20, Y: 30, W: 100, H: 80},
			Border:      Rect{X: 20, Y: 30, W: 100, H: 80},
			CaptionRect: Rect{X: 14, Y: 115, W: 182, H: 30},
		}}}
		if !HasErrors(Validate([]Page{page}, cfg)) {
			t.Error("expected an error for zero border margin")
		}
	})

	t.Run("overlapping slots", func(t *testing.T) {
		other := slot
		other.Y += 50
		page := Page{Number: 1, Placements: []Placement{
			{SlotIndex: 0, Slot: slot, Image: Rect{X: 20, Y: 30, W: 10, H: 10}, Border: Rect{X: 19, Y: 29, W: 12, H: 12}, CaptionRect: Rect{X: 14, Y: 45, W: 10, H: 5}},
			{SlotIndex: 1, Slot: other, Image: Rect{X: 20, Y: 80, W: 10, H: 10}, Border: Rect{X: 19, Y: 79, W: 12, H: 12}, CaptionRect: Rect{X: 14, Y: 95, W: 10, H: 5}},
		}}
		found := false
		for _, w := range Validate([]Page{page}, cfg) {
			if w.Message == "slot 0 overlaps with slot 1" {
				found = true
			}
		}
		if !found {
			t.Error("expected overlap warning between slot 0 and slot 1")
		}
	})
}
