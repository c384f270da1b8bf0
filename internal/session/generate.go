package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/layout"
	"github.com/kozaktomas/photo-report/internal/report"
)

// AssetSize is the compressed size of one asset.
type AssetSize struct {
	ID           string `json:"id"`
	Bytes        int    `json:"bytes"`
	WithinTarget bool   `json:"within_target"`
}

// Estimate is the predicted size of the generated document.
type Estimate struct {
	Bytes    int              `json:"bytes"`
	Overhead int              `json:"overhead"`
	PerAsset []AssetSize      `json:"per_asset"`
	Warning  *CapacityWarning `json:"-"`
}

// EstimateDocumentSize sums the compressed sizes of all assets and the fixed
// document overhead. Warning is set when the sum exceeds the soft limit.
// Compressed results are cached, so a later Generate reuses them.
func (s *Session) EstimateDocumentSize(target int) (Estimate, error) {
	if s.compressor == nil {
		return Estimate{}, fmt.Errorf("%w: compression engine", ErrMissingDependency)
	}
	if target <= 0 {
		target = s.opts.TargetBytes
	}
	assets, _ := s.snapshot()

	est := Estimate{Bytes: s.opts.OverheadBytes, Overhead: s.opts.OverheadBytes}
	for _, a := range assets {
		res, err := a.compressed(s.compressor, target)
		if err != nil {
			return Estimate{}, fmt.Errorf("asset %s: %w", a.id, err)
		}
		est.PerAsset = append(est.PerAsset, AssetSize{ID: a.id, Bytes: res.Size(), WithinTarget: res.WithinTarget})
		est.Bytes += res.Size()
	}
	if s.opts.SoftLimitBytes > 0 && est.Bytes > s.opts.SoftLimitBytes {
		est.Warning = &CapacityWarning{EstimatedBytes: est.Bytes, LimitBytes: s.opts.SoftLimitBytes}
	}
	return est, nil
}

// GenerateRequest holds the per-document choices of the caller.
type GenerateRequest struct {
	Number      string    // report number; a placeholder is used when empty
	PerPage     int       // 1 or 2; zero selects the session default
	TargetBytes int       // per-photo budget; zero selects the session default
	Date        time.Time // footer date; zero means now
	Confirmed   bool      // proceed past a capacity warning
}

// Document is a generated report.
type Document struct {
	Data   []byte
	Report *report.ExportReport
}

// Generate compresses every asset in order, lays the photos out and writes
// the document. Nothing is returned unless the whole document was produced.
// An estimate above the soft limit yields a *CapacityWarning unless the
// request is confirmed.
func (s *Session) Generate(ctx context.Context, req GenerateRequest) (*Document, error) {
	assets, captions := s.snapshot()
	if len(assets) == 0 {
		return nil, ErrNoImages
	}
	if s.writer == nil {
		return nil, fmt.Errorf("%w: document writer", ErrMissingDependency)
	}
	if s.compressor == nil {
		return nil, fmt.Errorf("%w: compression engine", ErrMissingDependency)
	}
	perPage := req.PerPage
	if perPage == 0 {
		perPage = s.opts.PerPage
	}
	if _, err := layout.SlotRects(perPage, s.opts.Layout); err != nil {
		return nil, err
	}
	target := req.TargetBytes
	if target <= 0 {
		target = s.opts.TargetBytes
	}

	items := make([]layout.Item, len(assets))
	images := make(map[string][]byte, len(assets))
	total := s.opts.OverheadBytes
	for i, a := range assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := a.compressed(s.compressor, target)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.id, err)
		}
		items[i] = layout.Item{ID: a.id, Width: res.Width, Height: res.Height, Caption: captions[i]}
		images[a.id] = res.Data
		total += res.Size()
	}
	if !req.Confirmed && s.opts.SoftLimitBytes > 0 && total > s.opts.SoftLimitBytes {
		return nil, &CapacityWarning{EstimatedBytes: total, LimitBytes: s.opts.SoftLimitBytes}
	}

	pages, err := layout.Compose(items, perPage, s.opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to compose pages: %w", err)
	}
	warnings := layout.Validate(pages, s.opts.Layout)
	if layout.HasErrors(warnings) {
		var msgs []string
		for _, w := range warnings {
			if w.Severity == "error" {
				msgs = append(msgs, w.String())
			}
		}
		return nil, fmt.Errorf("layout validation failed: %s", strings.Join(msgs, "; "))
	}
	if cc, ok := s.writer.(report.CaptionChecker); ok {
		warnings = append(warnings, cc.CheckCaptions(pages)...)
	}

	meta := s.metadata(req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.writer.Write(meta, pages, images)
	if err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	return &Document{
		Data:   data,
		Report: report.BuildExportReport(meta, pages, images, warnings, len(data)),
	}, nil
}

func (s *Session) metadata(req GenerateRequest) report.Metadata {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = constants.DefaultReportNumber
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}
	format := s.opts.DateFormat
	if format == "" {
		format = "02/01/2006"
	}
	return report.Metadata{
		Number:    number,
		Label:     s.opts.Label,
		DateText:  date.Format(format),
		PageLabel: s.opts.PageLabel,
	}
}
