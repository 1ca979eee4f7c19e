//go:build !darwin

package gui

import pkgerrors "github.com/pkg/errors"

func openPath(path string) error {
	return pkgerrors.Errorf("opening %s is only supported on macOS", path)
}
