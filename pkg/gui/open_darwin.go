package gui

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/progrium/darwinkit/macos/appkit"
	"github.com/progrium/darwinkit/macos/foundation"
)

// openPath opens path with its default application.
func openPath(path string) error {
	url := foundation.URL_FileURLWithPath(path)
	if !appkit.Workspace_SharedWorkspace().OpenURL(url) {
		return pkgerrors.Errorf("failed to open %s", path)
	}
	return nil
}
