package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImages is returned when a document is requested for an empty session.
	ErrNoImages = errors.New("no images in session")
	// ErrMissingDependency is returned when the document writer or the
	// compression engine is not available.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrAssetNotFound is returned for unknown asset IDs.
	ErrAssetNotFound = errors.New("asset not found")
)

// CapacityWarning reports an estimated document size above the soft limit.
// It is not fatal: generation proceeds once the caller confirms.
type CapacityWarning struct {
	EstimatedBytes int
	LimitBytes     int
}

func (w *CapacityWarning) Error() string {
	return fmt.Sprintf("estimated document size %.1f MB exceeds the %.1f MB limit",
		float64(w.EstimatedBytes)/1e6, float64(w.LimitBytes)/1e6)
}
