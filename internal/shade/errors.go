package shade

import "errors"

var (
	// ErrUnknownMapping indicates a mapping name that is not registered.
	ErrUnknownMapping = errors.New("shade: unknown color mapping")

	// ErrFrameSize indicates a frame with a non-positive dimension.
	ErrFrameSize = errors.New("shade: frame dimensions must be positive")
)
