// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Compression constants
const (
	// DefaultTargetBytes is the byte budget for a single compressed photo
	DefaultTargetBytes = 1_000_000

	// MaxImageDimension is the longest side (px) a photo is reduced to before the quality search
	MaxImageDimension = 2000

	// MinImageDimension is the floor (px) the downscale fallback never goes below
	MinImageDimension = 400

	// MaxImagePixels is the largest width*height a file header may declare before decoding is refused
	MaxImagePixels = 200_000_000
)

// Document size constants
const (
	// DocumentOverheadBytes is the fixed size added to every document size estimate
	DocumentOverheadBytes = 80_000

	// SoftDocumentLimitBytes is the estimated document size above which the caller must confirm
	SoftDocumentLimitBytes = 10_000_000
)

// Report constants
const (
	// DefaultReportNumber is used when the caller does not supply a report number
	DefaultReportNumber = "xxxx/7-xxxxxx-x"

	// DefaultPerPage is the default number of photos per page
	DefaultPerPage = 2

	// DefaultVariant is the layout preset used when none is configured
	DefaultVariant = "field"
)

// Processing constants
const (
	// DefaultConcurrency is the default number of parallel compression workers
	DefaultConcurrency = 4

	// LowResDPIThreshold is the effective DPI below which a placed photo is reported as low resolution
	LowResDPIThreshold = 150.0
)
