package launchd

import (
	"os"
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Uninstall unloads and removes the launch daemon. A missing plist is not an
// error.
func Uninstall() error {
	if !Installed() {
		logrus.Infof("%s does not exist, nothing to uninstall", plistPath)
		return nil
	}

	logrus.Infof("stopping battcycle")

	if out, err := exec.Command(launchctl, "unload", plistPath).CombinedOutput(); err != nil {
		return pkgerrors.Wrapf(err, "failed to unload %s: %s. Are you root?", plistPath, strings.TrimSpace(string(out)))
	}

	logrus.Infof("removing launch daemon")

	if err := os.Remove(plistPath); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "failed to remove %s. Are you root?", plistPath)
	}

	return nil
}
