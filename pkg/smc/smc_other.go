//go:build !darwin

package smc

// NewGosmc returns a KeyReadWriter whose every call fails with
// ErrUnsupported. gosmc needs IOKit.
func NewGosmc() KeyReadWriter {
	return New(unsupportedDriver{})
}

// NewMock returns a KeyReadWriter backed by an in-memory SMC with prefill
// values.
func NewMock(prefillValues map[string][]byte) KeyReadWriter {
	return New(newMemDriver(prefillValues))
}
