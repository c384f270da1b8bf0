package session

import (
	"fmt"
	"image"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-report/internal/compress"
	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/fingerprint"
	"github.com/kozaktomas/photo-report/internal/layout"
	"github.com/kozaktomas/photo-report/internal/report"
)

// Compressor produces a size-bounded encode of a bitmap.
type Compressor interface {
	Compress(img image.Image, targetMaxBytes int) (*compress.Result, error)
}

// Options configures a session.
type Options struct {
	TargetBytes    int // default per-photo byte budget
	PerPage        int // default photos per page
	OverheadBytes  int // fixed document overhead added to estimates
	SoftLimitBytes int // estimates above this need confirmation
	Layout         layout.Config
	Label          string // printed before the report number
	DateFormat     string // Go time layout for the footer date
	PageLabel      string // folio prefix
}

// DefaultOptions returns options matching the field report variant.
func DefaultOptions() Options {
	return Options{
		TargetBytes:    constants.DefaultTargetBytes,
		PerPage:        constants.DefaultPerPage,
		OverheadBytes:  constants.DocumentOverheadBytes,
		SoftLimitBytes: constants.SoftDocumentLimitBytes,
		Layout:         layout.DefaultConfig(),
		DateFormat:     "02/01/2006",
	}
}

// Asset is a read-only view of one ingested photo.
type Asset struct {
	ID        string    `json:"id"`
	Caption   string    `json:"caption"`
	Order     int       `json:"order"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
	// Fingerprint is the difference hash of the photo. DuplicateOf names an
	// earlier asset that looks like the same shot.
	Fingerprint string `json:"fingerprint"`
	DuplicateOf string `json:"duplicate_of,omitempty"`
}

// asset is an ingested photo. Pixels never change after ingestion, so cache
// entries are never invalidated.
type asset struct {
	id        string
	img       image.Image
	format    string
	hash      fingerprint.Hash
	caption   string
	order     int
	createdAt time.Time

	mu    sync.Mutex
	cache map[int]*cacheEntry // keyed by target bytes
}

// Session holds the ordered photos of one report being assembled.
// It is safe for concurrent use.
type Session struct {
	compressor Compressor
	writer     report.Writer
	opts       Options

	mu     sync.RWMutex
	assets []*asset // sorted by order, order == index
}

// New creates an empty session. A nil compressor or writer is accepted and
// reported as ErrMissingDependency when a document is generated.
func New(compressor Compressor, writer report.Writer, opts Options) *Session {
	return &Session{
		compressor: compressor,
		writer:     writer,
		opts:       opts,
	}
}

// Options returns the session configuration.
func (s *Session) Options() Options {
	return s.opts
}

// Ingest decodes data and appends it as the last asset.
// Undecodable input yields a *compress.DecodeError.
func (s *Session) Ingest(data []byte) (string, error) {
	_, format, err := compress.DecodeConfig(data)
	if err != nil {
		return "", err
	}
	img, err := compress.Decode(data)
	if err != nil {
		return "", err
	}
	return s.add(img, format), nil
}

// Input is one file handed to IngestAll.
type Input struct {
	Name string
	Data []byte
}

// IngestAll ingests files in order. Files that fail to decode are skipped
// and reported in the returned errors; the rest are still ingested.
func (s *Session) IngestAll(files []Input) ([]string, []error) {
	var ids []string
	var errs []error
	for _, f := range files {
		id, err := s.Ingest(f.Data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errs
}

func (s *Session) add(img image.Image, format string) string {
	a := &asset{
		id:        uuid.NewString(),
		img:       img,
		format:    format,
		hash:      fingerprint.Compute(img),
		createdAt: time.Now(),
		cache:     make(map[int]*cacheEntry),
	}
	s.mu.Lock()
	a.order = len(s.assets)
	s.assets = append(s.assets, a)
	s.mu.Unlock()
	return a.id
}

// find returns the index of id. Callers must hold s.mu.
func (s *Session) find(id string) (int, error) {
	i := slices.IndexFunc(s.assets, func(a *asset) bool { return a.id == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return i, nil
}

func (s *Session) get(id string) (*asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.assets[i], nil
}

// renumber restores order == index. Callers must hold s.mu.
func (s *Session) renumber() {
	for i, a := range s.assets {
		a.order = i
	}
}

// SetCaption replaces the caption of an asset.
func (s *Session) SetCaption(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(id)
	if err != nil {
		return err
	}
	s.assets[i].caption = normalizeCaption(text)
	return nil
}

// Reorder moves an asset by delta positions, clamped to the ends of the list,
// and returns its new order.
func (s *Session) Reorder(id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, err := s.find(id)
	if err != nil {
		return 0, err
	}
	n := len(s.assets)
	delta = min(max(delta, -n), n)
	to := min(max(from+delta, 0), n-1)
	if to != from {
		a := s.assets[from]
		s.assets = slices.Delete(s.assets, from, from+1)
		s.assets = slices.Insert(s.assets, to, a)
		s.renumber()
	}
	return to, nil
}

// Remove deletes an asset and closes the gap in the order.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(id)
	if err != nil {
		return err
	}
	s.assets = slices.Delete(s.assets, i, i+1)
	s.renumber()
	return nil
}

// Reset removes every asset.
func (s *Session) Reset() {
	s.mu.Lock()
	s.assets = nil
	s.mu.Unlock()
}

// Len returns the number of assets.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// Assets returns a snapshot of all assets in order.
func (s *Session) Assets() []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Asset, len(s.assets))
	hashes := make([]fingerprint.Hash, len(s.assets))
	for i, a := range s.assets {
		b := a.img.Bounds()
		out[i] = Asset{
			ID:          a.id,
			Caption:     a.caption,
			Order:       a.order,
			Width:       b.Dx(),
			Height:      b.Dy(),
			Format:      a.format,
			CreatedAt:   a.createdAt,
			Fingerprint: a.hash.String(),
		}
		if j := fingerprint.FindNear(a.hash, hashes[:i], fingerprint.DuplicateThreshold); j >= 0 {
			out[i].DuplicateOf = s.assets[j].id
		}
		hashes[i] = a.hash
	}
	return out
}

// snapshot returns the assets in order with their captions at call time.
func (s *Session) snapshot() ([]*asset, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assets := slices.Clone(s.assets)
	captions := make([]string, len(assets))
	for i, a := range assets {
		captions[i] = a.caption
	}
	return assets, captions
}
