package compress

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-report/internal/constants"
)

// ErrEmptyImage is reported for bitmaps with zero width or height.
var ErrEmptyImage = errors.New("image has zero area")

// ErrImageTooLarge is reported for headers declaring more than MaxImagePixels.
var ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")

// Options holds the tunables of the quality search and the downscale passes.
type Options struct {
	MaxDimension   int     // longest side after the pre-pass (px)
	FloorDimension int     // fallback stops once both sides are at or below this (px)
	QualityLow     float64 // initial lower bisection bound, also the fallback quality
	QualityHigh    float64 // initial upper bisection bound
	QualityStart   float64 // first quality tried
	Iterations     int     // bisection rounds after the first encode
	ShrinkFactor   float64 // per-step scale of the downscale fallback
}

// DefaultOptions returns the options used by the field report variant.
func DefaultOptions() Options {
	return Options{
		MaxDimension:   constants.MaxImageDimension,
		FloorDimension: constants.MinImageDimension,
		QualityLow:     0.3,
		QualityHigh:    0.95,
		QualityStart:   0.9,
		Iterations:     8,
		ShrinkFactor:   0.9,
	}
}

// Validate reports the first inconsistent option.
func (o Options) Validate() error {
	switch {
	case o.MaxDimension <= 0:
		return fmt.Errorf("max dimension must be positive, got %d", o.MaxDimension)
	case o.FloorDimension <= 0 || o.FloorDimension > o.MaxDimension:
		return fmt.Errorf("floor dimension must be in (0, %d], got %d", o.MaxDimension, o.FloorDimension)
	case o.QualityLow <= 0 || o.QualityHigh > 1 || o.QualityLow >= o.QualityHigh:
		return fmt.Errorf("invalid quality bounds %.2f..%.2f", o.QualityLow, o.QualityHigh)
	case o.QualityStart < o.QualityLow || o.QualityStart > o.QualityHigh:
		return fmt.Errorf("start quality %.2f outside bounds %.2f..%.2f", o.QualityStart, o.QualityLow, o.QualityHigh)
	case o.Iterations <= 0:
		return fmt.Errorf("iteration budget must be positive, got %d", o.Iterations)
	case o.ShrinkFactor <= 0 || o.ShrinkFactor >= 1:
		return fmt.Errorf("shrink factor must be in (0, 1), got %.2f", o.ShrinkFactor)
	}
	return nil
}

// Attempt records a single encoder invocation.
type Attempt struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Quality float64 `json:"quality"`
	Size    int     `json:"size"`
}

// Result is the outcome of a compression run.
type Result struct {
	Data         []byte    `json:"-"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Quality      float64   `json:"quality"`
	Downscaled   bool      `json:"downscaled"`    // fallback shrink was applied
	WithinTarget bool      `json:"within_target"` // false when the target was unreachable
	Attempts     []Attempt `json:"attempts"`
}

// Size returns the encoded size in bytes.
func (r *Result) Size() int {
	return len(r.Data)
}

// DecodeError means the source bytes could not be turned into a bitmap.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError means the codec rejected a bitmap.
type EncodeError struct {
	Width   int
	Height  int
	Quality float64
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %dx%d image at quality %.2f: %v", e.Width, e.Height, e.Quality, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
