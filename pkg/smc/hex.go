package smc

import (
	"encoding/hex"

	pkgerrors "github.com/pkg/errors"
)

// DecodeHex decodes a write value. Each pair of characters becomes one byte,
// first pair first. Case does not matter. Odd lengths and non-hex characters
// are rejected.
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, pkgerrors.Wrapf(ErrInvalidHex, "odd length %d", len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrInvalidHex, "%q: %v", s, err)
	}

	return b, nil
}

// EncodeHex renders bytes the way DecodeHex accepts them.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}
