// Package constants provides shared constants used across the codebase.
package constants

// File upload constants
const (
	// MaxUploadSize is the maximum multipart upload size in bytes (100MB)
	MaxUploadSize = 100 << 20
)

// Session constants
const (
	// DefaultSessionTTLMinutes is how long an idle report session is kept in memory
	DefaultSessionTTLMinutes = 120

	// SessionCleanupIntervalMinutes is how often expired sessions are swept
	SessionCleanupIntervalMinutes = 5
)
