package smc

import "errors"

var (
	// ErrUnsupported is returned on platforms without an SMC driver.
	ErrUnsupported = errors.New("smc is not supported on this platform")

	// ErrOpen is returned when the driver connection cannot be opened.
	ErrOpen = errors.New("failed to open smc connection")

	// ErrKeyRead is returned when a key cannot be read, including unknown keys
	// and permission problems.
	ErrKeyRead = errors.New("failed to read smc key")

	// ErrCall is returned when the driver rejects a call.
	ErrCall = errors.New("smc call failed")

	// ErrSizeMismatch is returned when a write payload does not match the
	// current size of the key.
	ErrSizeMismatch = errors.New("value size does not match key size")

	// ErrInvalidKey is returned for keys that are not 4 printable ASCII characters.
	ErrInvalidKey = errors.New("invalid smc key")

	// ErrInvalidHex is returned for write values that are not an even-length
	// hex string.
	ErrInvalidHex = errors.New("invalid hex value")
)

// Status collapses an error into the 0 / -1 convention of the C surface.
func Status(err error) int {
	if err != nil {
		return -1
	}
	return 0
}
