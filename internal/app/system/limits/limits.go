// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxFormSize is the maximum size for url-encoded form submissions.
	MaxFormSize = 1 << 20 // 1 MB

	// MaxUploadSize is the maximum size of a visa document upload,
	// including multipart overhead.
	MaxUploadSize = 10 << 20 // 10 MB

	// MaxUploadMemory is how much of an upload is buffered in memory
	// before spilling to a temp file.
	MaxUploadMemory = 2 << 20 // 2 MB
)
