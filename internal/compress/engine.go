package compress

import (
	"fmt"
	"image"
)

// Engine re-encodes bitmaps so they fit a byte budget.
type Engine struct {
	opts    Options
	encoder Encoder
}

// NewEngine creates an engine. A nil encoder selects JPEGEncoder.
func NewEngine(opts Options, encoder Encoder) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compression options: %w", err)
	}
	if encoder == nil {
		encoder = JPEGEncoder{}
	}
	return &Engine{opts: opts, encoder: encoder}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// search tracks the encodes of one Compress call and the best candidate so far.
type search struct {
	encoder Encoder
	target  int
	best    *Result
	trace   []Attempt
}

// encode runs the encoder once and keeps the result if it beats the current best.
// A fitting encode beats any oversized one; among fitting encodes more pixels and
// then higher quality win; among oversized encodes the smaller one wins.
func (s *search) encode(img image.Image, width, height int, quality float64) (int, error) {
	data, err := s.encoder.Encode(img, quality)
	if err != nil {
		return 0, &EncodeError{Width: width, Height: height, Quality: quality, Err: err}
	}
	size := len(data)
	s.trace = append(s.trace, Attempt{Width: width, Height: height, Quality: quality, Size: size})

	candidate := &Result{Data: data, Width: width, Height: height, Quality: quality, WithinTarget: size <= s.target}
	if s.best == nil || s.better(candidate) {
		s.best = candidate
	}
	return size, nil
}

func (s *search) better(c *Result) bool {
	b := s.best
	switch {
	case c.WithinTarget && !b.WithinTarget:
		return true
	case !c.WithinTarget && b.WithinTarget:
		return false
	case c.WithinTarget:
		cp, bp := c.Width*c.Height, b.Width*b.Height
		if cp != bp {
			return cp > bp
		}
		return c.Quality > b.Quality
	default:
		return c.Size() < b.Size()
	}
}

// Compress produces an encode of img no larger than targetMaxBytes when possible.
//
// The longer side is first reduced to MaxDimension. A bisection over quality then
// runs for the configured number of rounds. If nothing fits, both sides shrink by
// ShrinkFactor and are re-encoded at the lowest quality until the encode fits or
// both sides reach FloorDimension. An unreachable target yields the smallest
// encode seen rather than an error.
func (e *Engine) Compress(img image.Image, targetMaxBytes int) (*Result, error) {
	if targetMaxBytes <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %d", targetMaxBytes)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, &EncodeError{Width: bounds.Dx(), Height: bounds.Dy(), Quality: e.opts.QualityStart, Err: ErrEmptyImage}
	}

	w, h := FitWithin(bounds.Dx(), bounds.Dy(), e.opts.MaxDimension)
	src := Resample(img, w, h)

	s := &search{encoder: e.encoder, target: targetMaxBytes}
	qLow, qHigh, q := e.opts.QualityLow, e.opts.QualityHigh, e.opts.QualityStart

	size, err := s.encode(src, w, h, q)
	if err != nil {
		return nil, err
	}
	for range e.opts.Iterations {
		if size <= targetMaxBytes {
			qLow = q
			q = (q + qHigh) / 2
		} else {
			qHigh = q
			q = (q + qLow) / 2
		}
		if size, err = s.encode(src, w, h, q); err != nil {
			return nil, err
		}
	}

	downscaled := false
	for !s.best.WithinTarget && (w > e.opts.FloorDimension || h > e.opts.FloorDimension) {
		nw, nh := shrink(w, h, e.opts.ShrinkFactor)
		if nw == w && nh == h {
			break
		}
		w, h = nw, nh
		downscaled = true
		if _, err := s.encode(Resample(src, w, h), w, h, qLow); err != nil {
			return nil, err
		}
	}

	result := s.best
	result.Downscaled = downscaled && (result.Width != src.Bounds().Dx() || result.Height != src.Bounds().Dy())
	result.Attempts = s.trace
	return result, nil
}
