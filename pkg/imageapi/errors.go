package imageapi

import "errors"

// Provider fetch errors. None of them reach callers of GetImage; they are
// logged and the next provider is tried.
var (
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrNoImageURL        = errors.New("response did not contain an image url")
	ErrUnsupportedFormat = errors.New("unsupported provider format")
)
