package watcher

import "go.trai.ch/zerr"

var (
	// ErrScan is returned when the pattern's directory cannot be listed.
	// A failed scan skips the cycle; the watch keeps going.
	ErrScan = zerr.New("scan failed")

	// ErrHandler marks an outcome whose handler returned an error.
	ErrHandler = zerr.New("handler failed")

	// ErrDeletion marks an outcome that was processed but could not be removed.
	ErrDeletion = zerr.New("deletion failed")

	// ErrVanished marks a mature file that was gone before the handler ran.
	ErrVanished = zerr.New("vanished")

	// ErrBadPattern is returned by Watch when the glob pattern is malformed.
	ErrBadPattern = zerr.New("invalid file pattern")

	// ErrNoHandler is returned by Watch when no handler was configured.
	ErrNoHandler = zerr.New("no handler configured")

	// ErrScanUnavailable is returned by Watch after more consecutive scan
	// failures than the configured limit.
	ErrScanUnavailable = zerr.New("filesystem unavailable")
)
