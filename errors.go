package crunch

import "errors"

// Sentinel errors returned by the public API. Wrap them with fmt.Errorf's
// %w verb for context; callers can still test the underlying cause with
// errors.Is.
var (
	// ErrDecodeFailed is returned when an input image cannot be decoded.
	ErrDecodeFailed = errors.New("crunch: decode failed")
	// ErrEncodeFailed is returned when a packed page cannot be encoded.
	ErrEncodeFailed = errors.New("crunch: encode failed")
	// ErrInvalidArgument is returned for malformed Config values.
	ErrInvalidArgument = errors.New("crunch: invalid argument")
	// ErrPackingImpossible is returned when one or more bitmaps cannot
	// fit into any page at the configured maximum size, even alone.
	ErrPackingImpossible = errors.New("crunch: packing impossible")
)
