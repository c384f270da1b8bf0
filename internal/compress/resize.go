package compress

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// FitWithin returns dimensions whose longer side is at most maxDim while keeping
// the aspect ratio. Dimensions already inside the bound are returned unchanged.
func FitWithin(width, height, maxDim int) (int, int) {
	if width <= maxDim && height <= maxDim {
		return width, height
	}
	var newWidth, newHeight int
	if width >= height {
		newWidth = maxDim
		newHeight = int(math.Round(float64(height) * float64(maxDim) / float64(width)))
	} else {
		newHeight = maxDim
		newWidth = int(math.Round(float64(width) * float64(maxDim) / float64(height)))
	}
	return max(newWidth, 1), max(newHeight, 1)
}

// shrink scales both sides by factor, never below 1px.
func shrink(width, height int, factor float64) (int, int) {
	w := int(math.Round(float64(width) * factor))
	h := int(math.Round(float64(height) * factor))
	return max(w, 1), max(h, 1)
}

// Resample scales img to exactly width x height with Catmull-Rom interpolation.
// Transparent areas are flattened onto white since the output codec has no alpha.
func Resample(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height && isOpaque(img) {
		return img
	}

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(resized, resized.Bounds(), image.White, image.Point{}, draw.Src)
	if bounds.Dx() == width && bounds.Dy() == height {
		draw.Draw(resized, resized.Bounds(), img, bounds.Min, draw.Over)
		return resized
	}
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
