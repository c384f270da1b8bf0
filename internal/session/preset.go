package session

import (
	"fmt"

	"github.com/kozaktomas/photo-report/internal/compress"
	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/layout"
	"github.com/kozaktomas/photo-report/internal/report"
)

// FromConfig builds a session wired to the JPEG engine and the PDF writer,
// using the variant named in cfg.Report.Variant.
func FromConfig(cfg *config.Config) (*Session, error) {
	variant, ok := cfg.GetVariant(cfg.Report.Variant)
	if !ok {
		return nil, fmt.Errorf("unknown report variant %q (available: %v)", cfg.Report.Variant, cfg.VariantNames())
	}

	copts := CompressionOptions(variant, cfg.Report.MaxDimension)
	engine, err := compress.NewEngine(copts, compress.JPEGEncoder{})
	if err != nil {
		return nil, err
	}

	lcfg := LayoutConfig(variant)
	if err := lcfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout for variant %q: %w", cfg.Report.Variant, err)
	}

	opts := DefaultOptions()
	opts.TargetBytes = cfg.Report.TargetBytes
	opts.PerPage = cfg.Report.PerPage
	opts.SoftLimitBytes = cfg.Report.SoftLimitBytes
	opts.Layout = lcfg
	opts.Label = variant.Label
	if variant.DateFormat != "" {
		opts.DateFormat = variant.DateFormat
	}
	opts.PageLabel = variant.PageLabel

	return New(engine, report.NewPDFWriter(lcfg), opts), nil
}

// CompressionOptions maps a variant preset to engine options.
func CompressionOptions(v config.Variant, maxDimension int) compress.Options {
	opts := compress.DefaultOptions()
	p := v.Compression
	if maxDimension > 0 {
		opts.MaxDimension = maxDimension
	}
	if p.QualityLow > 0 {
		opts.QualityLow = p.QualityLow
	}
	if p.QualityHigh > 0 {
		opts.QualityHigh = p.QualityHigh
	}
	if p.QualityStart > 0 {
		opts.QualityStart = p.QualityStart
	}
	if p.Iterations > 0 {
		opts.Iterations = p.Iterations
	}
	if p.ShrinkFactor > 0 {
		opts.ShrinkFactor = p.ShrinkFactor
	}
	if p.FloorDimension > 0 {
		opts.FloorDimension = min(p.FloorDimension, opts.MaxDimension)
	}
	return opts
}

// LayoutConfig maps a variant preset to page geometry.
func LayoutConfig(v config.Variant) layout.Config {
	p := v.Layout
	return layout.Config{
		MarginMM:          p.Margin,
		HeaderHeightMM:    p.HeaderHeight,
		FooterHeightMM:    p.FooterHeight,
		SlotGapMM:         p.SlotGap,
		CaptionReserveMM:  p.CaptionReserve,
		CaptionGapMM:      p.CaptionGap,
		CaptionInsetMM:    p.CaptionInset,
		BorderInsetMM:     p.BorderInset,
		BorderLineWidthMM: p.BorderLineWidth,
		CaptionFontSizePt: p.CaptionFontSize,
	}
}
