package compress

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"
)

// Encoder turns a bitmap into lossy-encoded bytes. Quality is in [0, 1].
type Encoder interface {
	Encode(img image.Image, quality float64) ([]byte, error)
}

// JPEGEncoder encodes baseline JPEG using the standard library codec.
type JPEGEncoder struct{}

// Encode implements Encoder.
func (JPEGEncoder) Encode(img image.Image, quality float64) ([]byte, error) {
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// jpegQuality maps [0, 1] onto the JPEG 1..100 scale.
func jpegQuality(q float64) int {
	return min(max(int(math.Round(q*100)), 1), 100)
}
