package loader

import "errors"

var (
	// ErrClosed is returned when submitting to a closed loader. Requests
	// discarded by ShutdownAbort complete with it.
	ErrClosed = errors.New("loader: closed")
	// ErrInvalidRequest is returned for a request without a path or completion target.
	ErrInvalidRequest = errors.New("loader: invalid request")
	// ErrInvalidConfig is returned by New for an unusable Config.
	ErrInvalidConfig = errors.New("loader: invalid config")
	// ErrInvalidManifest is returned when an asset manifest cannot be used.
	ErrInvalidManifest = errors.New("loader: invalid manifest")
)
