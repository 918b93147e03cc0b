package spa

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionMismatch is reported by Resource.VersionErr when the file's
	// particle schema is not the supported one. It is never returned by Decode.
	ErrVersionMismatch = errors.New("spa: unsupported particle schema version")
	// ErrTextureNotFound is returned for texture ids outside the loaded range.
	ErrTextureNotFound = errors.New("spa: texture not found")
)

// FormatError reports a structural problem in the binary data.
type FormatError struct {
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("spa: format error at 0x%x: %s", e.Offset, e.Msg)
}

func formatErrorf(off int, format string, args ...any) *FormatError {
	return &FormatError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedFeatureError is returned when a texture uses an encoding this
// package does not decode.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return "spa: unsupported feature: " + e.Feature
}
