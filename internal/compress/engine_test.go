package compress

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

// sizeEncoder produces w*h*quality*bytesPerPixel bytes and counts calls.
type sizeEncoder struct {
	bytesPerPixel float64
	calls         int
}

func (e *sizeEncoder) Encode(img image.Image, quality float64) ([]byte, error) {
	e.calls++
	b := img.Bounds()
	return make([]byte, int(float64(b.Dx()*b.Dy())*quality*e.bytesPerPixel)), nil
}

type failingEncoder struct{}

func (failingEncoder) Encode(image.Image, float64) ([]byte, error) {
	return nil, errors.New("unsupported color space")
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func newTestEngine(t *testing.T, opts Options, enc Encoder) *Engine {
	t.Helper()
	e, err := NewEngine(opts, enc)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"smaller untouched", 500, 500, 2000, 500, 500},
		{"exact bound untouched", 2000, 1200, 2000, 2000, 1200},
		{"landscape camera photo", 4000, 3000, 2000, 2000, 1500},
		{"portrait camera photo", 3000, 4000, 2000, 1500, 2000},
		{"thin strip keeps 1px", 4001, 1, 2000, 2000, 1},
		{"square", 2400, 2400, 2000, 2000, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.w, tt.h, tt.maxDim)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.maxDim, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitWithin_PreservesAspect(t *testing.T) {
	for _, dims := range [][2]int{{4032, 3024}, {3024, 4032}, {5000, 2813}, {2001, 1999}, {8000, 333}} {
		w, h := FitWithin(dims[0], dims[1], 2000)
		if max(w, h) != 2000 {
			t.Errorf("%v: longer side %d, want 2000", dims, max(w, h))
		}
		orig := float64(dims[0]) / float64(dims[1])
		got := float64(w) / float64(h)
		// One pixel of rounding on the shorter side.
		tolerance := orig / float64(min(w, h))
		if math.Abs(orig-got) > tolerance {
			t.Errorf("%v: aspect %.4f drifted to %.4f", dims, orig, got)
		}
	}
}

func TestCompress_PrePassDownscales(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDimension = 200
	opts.FloorDimension = 50
	enc := &sizeEncoder{bytesPerPixel: 1}
	e := newTestEngine(t, opts, enc)

	res, err := e.Compress(gradient(400, 300), 1_000_000)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if res.Width != 200 || res.Height != 150 {
		t.Errorf("expected 200x150 after pre-pass, got %dx%d", res.Width, res.Height)
	}
	for _, a := range res.Attempts {
		if a.Width != 200 || a.Height != 150 {
			t.Errorf("attempt encoded at %dx%d, want 200x150", a.Width, a.Height)
		}
	}
	if res.Downscaled {
		t.Error("pre-pass alone must not mark the result as fallback-downscaled")
	}
}

func TestCompress_SmallImageKeepsDimensions(t *testing.T) {
	e := newTestEngine(t, DefaultOptions(), &sizeEncoder{bytesPerPixel: 1})
	res, err := e.Compress(gradient(120, 80), 1_000_000)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if res.Width != 120 || res.Height != 80 {
		t.Errorf("expected 120x80, got %dx%d", res.Width, res.Height)
	}
}

func TestCompress_BisectionConverges(t *testing.T) {
	// 100x100 at 1 byte per pixel: size = 10000 * quality, so the best fitting
	// quality for an 8000 byte target is just under 0.8.
	enc := &sizeEncoder{bytesPerPixel: 1}
	e := newTestEngine(t, DefaultOptions(), enc)

	res, err := e.Compress(gradient(100, 100), 8000)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !res.WithinTarget || res.Size() > 8000 {
		t.Fatalf("expected result within target, got %d bytes", res.Size())
	}
	if res.Quality > 0.8 || res.Quality < 0.79 {
		t.Errorf("expected quality close to 0.8, got %.4f", res.Quality)
	}
	if want := DefaultOptions().Iterations + 1; len(res.Attempts) != want || enc.calls != want {
		t.Errorf("expected %d encodes, got %d attempts / %d calls", want, len(res.Attempts), enc.calls)
	}
	if res.Downscaled {
		t.Error("no fallback expected")
	}
}

func TestCompress_IterationBudgetFromOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Iterations = 7
	opts.QualityLow = 0.4
	enc := &sizeEncoder{bytesPerPixel: 1}
	e := newTestEngine(t, opts, enc)

	if _, err := e.Compress(gradient(100, 100), 8000); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if enc.calls != 8 {
		t.Errorf("expected 8 encodes, got %d", enc.calls)
	}
}

func TestCompress_DownscaleFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDimension = 500
	opts.FloorDimension = 100
	e := newTestEngine(t, opts, &sizeEncoder{bytesPerPixel: 1})

	// Even the lowest quality (0.3) at 500x500 is 75000 bytes.
	res, err := e.Compress(gradient(500, 500), 20000)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !res.WithinTarget || res.Size() > 20000 {
		t.Fatalf("expected fallback to reach the target, got %d bytes", res.Size())
	}
	if !res.Downscaled {
		t.Error("expected Downscaled to be set")
	}
	if res.Width != 239 || res.Height != 239 {
		t.Errorf("expected 239x239 after fallback, got %dx%d", res.Width, res.Height)
	}
	if res.Quality != opts.QualityLow {
		t.Errorf("fallback should encode at %.2f, got %.2f", opts.QualityLow, res.Quality)
	}

	fallback := res.Attempts[opts.Iterations+1:]
	for i := 1; i < len(fallback); i++ {
		if fallback[i].Size > fallback[i-1].Size {
			t.Errorf("fallback size grew at step %d: %d -> %d", i, fallback[i-1].Size, fallback[i].Size)
		}
	}
}

func TestCompress_UnreachableTargetIsBestEffort(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDimension = 300
	opts.FloorDimension = 100
	e := newTestEngine(t, opts, &sizeEncoder{bytesPerPixel: 1})

	res, err := e.Compress(gradient(300, 200), 1)
	if err != nil {
		t.Fatalf("unreachable target must not fail: %v", err)
	}
	if res.WithinTarget {
		t.Error("expected WithinTarget to be false")
	}
	if res.Width > opts.FloorDimension || res.Height > opts.FloorDimension {
		t.Errorf("expected dimensions at or below floor, got %dx%d", res.Width, res.Height)
	}
	for _, a := range res.Attempts {
		if a.Size < res.Size() {
			t.Errorf("result %d bytes is not the smallest encode (saw %d)", res.Size(), a.Size)
		}
	}
}

func TestCompress_Deterministic(t *testing.T) {
	e := newTestEngine(t, DefaultOptions(), nil)
	img := gradient(160, 120)

	first, err := e.Compress(img, 6000)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	second, err := e.Compress(img, 6000)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("expected byte-identical output for identical input")
	}
	if first.Quality != second.Quality {
		t.Errorf("quality differs: %.4f vs %.4f", first.Quality, second.Quality)
	}
}

func TestCompress_RealJPEGRoundTrip(t *testing.T) {
	e := newTestEngine(t, DefaultOptions(), nil)
	res, err := e.Compress(gradient(64, 48), 1_000_000)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	cfg, format, err := DecodeConfig(res.Data)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg, got %s", format)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("expected 64x48, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestCompress_Errors(t *testing.T) {
	t.Run("zero area", func(t *testing.T) {
		e := newTestEngine(t, DefaultOptions(), nil)
		_, err := e.Compress(image.NewRGBA(image.Rect(0, 0, 0, 10)), 1000)
		var encErr *EncodeError
		if !errors.As(err, &encErr) {
			t.Fatalf("expected EncodeError, got %v", err)
		}
		if !errors.Is(err, ErrEmptyImage) {
			t.Errorf("expected ErrEmptyImage, got %v", err)
		}
	})

	t.Run("codec rejects bitmap", func(t *testing.T) {
		e := newTestEngine(t, DefaultOptions(), failingEncoder{})
		_, err := e.Compress(gradient(10, 10), 1000)
		var encErr *EncodeError
		if !errors.As(err, &encErr) {
			t.Fatalf("expected EncodeError, got %v", err)
		}
	})

	t.Run("non-positive target", func(t *testing.T) {
		e := newTestEngine(t, DefaultOptions(), nil)
		if _, err := e.Compress(gradient(10, 10), 0); err == nil {
			t.Error("expected error for zero target")
		}
	})
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"inverted bounds", func(o *Options) { o.QualityLow, o.QualityHigh = 0.9, 0.3 }},
		{"start outside bounds", func(o *Options) { o.QualityStart = 0.99 }},
		{"zero iterations", func(o *Options) { o.Iterations = 0 }},
		{"shrink factor one", func(o *Options) { o.ShrinkFactor = 1 }},
		{"floor above max", func(o *Options) { o.FloorDimension = o.MaxDimension + 1 }},
	}
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("expected validation error")
			}
			if _, err := NewEngine(opts, nil); err == nil {
				t.Error("expected NewEngine to reject options")
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		if err := png.Encode(&buf, gradient(30, 20)); err != nil {
			t.Fatal(err)
		}
		img, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
			t.Errorf("expected 30x20, got %v", img.Bounds())
		}
	})

	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not an image"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Errorf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestJPEGQuality(t *testing.T) {
	tests := []struct {
		q    float64
		want int
	}{
		{0, 1},
		{0.3, 30},
		{0.856, 86},
		{1, 100},
		{1.5, 100},
	}
	for _, tt := range tests {
		if got := jpegQuality(tt.q); got != tt.want {
			t.Errorf("jpegQuality(%.3f) = %d, want %d", tt.q, got, tt.want)
		}
	}
}
