package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kozaktomas/photo-report/internal/compress"
)

// cacheEntry is written exactly once, by whichever caller runs once first.
type cacheEntry struct {
	once   sync.Once
	result *compress.Result
	err    error
}

func (a *asset) compressed(c Compressor, target int) (*compress.Result, error) {
	a.mu.Lock()
	e, ok := a.cache[target]
	if !ok {
		e = &cacheEntry{}
		a.cache[target] = e
	}
	a.mu.Unlock()

	e.once.Do(func() {
		e.result, e.err = c.Compress(a.img, target)
	})
	return e.result, e.err
}

// Compressed returns the compressed encode of an asset for the given byte
// budget. The encoder runs at most once per asset and budget; later calls
// return the same bytes.
func (s *Session) Compressed(id string, target int) (*compress.Result, error) {
	if s.compressor == nil {
		return nil, fmt.Errorf("%w: compression engine", ErrMissingDependency)
	}
	if target <= 0 {
		target = s.opts.TargetBytes
	}
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return a.compressed(s.compressor, target)
}

// Precompress fills the cache for every asset using a bounded worker pool.
// It returns the joined errors of the assets that failed.
func (s *Session) Precompress(ctx context.Context, target, workers int) error {
	if s.compressor == nil {
		return fmt.Errorf("%w: compression engine", ErrMissingDependency)
	}
	if target <= 0 {
		target = s.opts.TargetBytes
	}
	assets, _ := s.snapshot()
	if len(assets) == 0 {
		return nil
	}
	workers = min(max(workers, 1), len(assets))

	jobs := make(chan *asset, len(assets))
	for _, a := range assets {
		jobs <- a
	}
	close(jobs)

	var mu sync.Mutex
	var errs []error
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for a := range jobs {
				if ctx.Err() != nil {
					return
				}
				if _, err := a.compressed(s.compressor, target); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("asset %s: %w", a.id, err))
					mu.Unlock()
				}
			}
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
