// Package fingerprint detects photos that were added to a report twice.
package fingerprint

import (
	"fmt"
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// DuplicateThreshold is the largest Hamming distance at which two photos are
// reported as the same shot. Re-encodes and small crops stay below it.
const DuplicateThreshold = 6

// Hash is a 64-bit difference hash of a bitmap.
type Hash uint64

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Distance returns the number of differing bits.
func (h Hash) Distance(o Hash) int {
	return bits.OnesCount64(uint64(h ^ o))
}

// Compute returns the difference hash of img: the bitmap is reduced to 9x8
// grey pixels and each bit records whether a pixel is brighter than its right
// neighbour.
func Compute(img image.Image) Hash {
	small := image.NewGray(image.Rect(0, 0, 9, 8))
	draw.BiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var h Hash
	bit := 63
	for y := range 8 {
		row := small.Pix[y*small.Stride:]
		for x := range 8 {
			if row[x] > row[x+1] {
				h |= 1 << bit
			}
			bit--
		}
	}
	return h
}

// FindNear returns the index of the first hash in candidates within threshold
// of h, or -1.
func FindNear(h Hash, candidates []Hash, threshold int) int {
	for i, c := range candidates {
		if h.Distance(c) <= threshold {
			return i
		}
	}
	return -1
}
