// Package constants provides shared constants used throughout the kursmap codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout and pacing constants for calls to the normalization service.
const (
	// DefaultNormalizeTimeout is the timeout for a single normalization request.
	DefaultNormalizeTimeout = 2 * time.Minute

	// DefaultThrottle is the courtesy delay between consecutive
	// normalization requests. Rate control only, not a correctness requirement.
	DefaultThrottle = 1500 * time.Millisecond

	// RetryBackoff is the base backoff duration for retries.
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries.
	MaxRetryBackoff = 30 * time.Second

	// MaxRetries is the maximum number of attempts for a transient
	// normalization failure before the run is aborted.
	MaxRetries = 3
)

// File permission constants define standard Unix file permissions.
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x).
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--).
	FilePermissions = 0644
)

// Catalog constants.
const (
	// TimestampLayout is the layout for mutation metadata timestamps.
	TimestampLayout = "20060102-150405"

	// DateLayout is the normalized 8-digit course date form.
	DateLayout = "20060102"

	// TemplatesFile is the default template catalog file name.
	TemplatesFile = "course_templates.json"

	// EventsFile is the default event catalog file name.
	EventsFile = "course_events.json"
)

// Segmentation constants.
const (
	// BlockLineCeiling is the number of lines at which an open
	// accumulation buffer is flushed as a candidate block.
	BlockLineCeiling = 6
)

// Normalization constants.
const (
	// DefaultModel is the language model used for record normalization.
	DefaultModel = "gemini-2.0-flash"

	// DefaultTemperature keeps extraction conservative.
	DefaultTemperature = 0.1
)
