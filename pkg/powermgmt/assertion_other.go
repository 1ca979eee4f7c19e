//go:build !darwin

package powermgmt

import pkgerrors "github.com/pkg/errors"

type assertionID = uint32

func createAssertion(string, string) (assertionID, error) {
	return 0, pkgerrors.New("power assertions are only available on macOS")
}

func releaseAssertion(assertionID) error {
	return nil
}
