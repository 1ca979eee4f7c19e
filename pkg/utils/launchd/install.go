// Package launchd installs battcycle as a launch daemon.
package launchd

import (
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const Label = "io.github.battcycle"

var (
	plistDir  = "/Library/LaunchDaemons"
	plistPath = filepath.Join(plistDir, Label+".plist")
	launchctl = "/bin/launchctl"

	//go:embed battcycle.plist.tmpl
	plistTemplate string
)

// Options are baked into the daemon's program arguments.
type Options struct {
	ConfigPath string
	SocketPath string
	LogFile    string
}

// Render returns the plist that runs exe with opts.
func Render(exe string, opts Options) string {
	return strings.NewReplacer(
		"{{LABEL}}", Label,
		"{{EXE}}", xmlEscape(exe),
		"{{CONFIG}}", xmlEscape(opts.ConfigPath),
		"{{SOCKET}}", xmlEscape(opts.SocketPath),
		"{{LOGFILE}}", xmlEscape(opts.LogFile),
	).Replace(plistTemplate)
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// Install writes the launch daemon for the current executable and loads it.
func Install(opts Options) error {
	exePath, err := os.Executable()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get the path to the current executable")
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get the absolute path to the current executable")
	}

	if err := os.Chmod(exePath, 0755); err != nil {
		return pkgerrors.Wrap(err, "failed to chmod the current executable to 0755")
	}

	logrus.Infof("current executable path: %s", exePath)
	logrus.Infof("writing launch daemon to %s", plistDir)

	if err := os.MkdirAll(plistDir, 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create %s", plistDir)
	}

	if _, err := os.Stat(plistPath); err == nil {
		logrus.Warnf("%s already exists, overwriting", plistPath)
	}

	if err := os.WriteFile(plistPath, []byte(Render(exePath, opts)), 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write %s", plistPath)
	}

	// chown root:wheel
	if err := os.Chown(plistPath, 0, 0); err != nil {
		return pkgerrors.Wrapf(err, "failed to chown %s", plistPath)
	}

	logrus.Infof("starting battcycle")

	if out, err := exec.Command(launchctl, "load", plistPath).CombinedOutput(); err != nil {
		return pkgerrors.Wrapf(err, "failed to load %s: %s", plistPath, strings.TrimSpace(string(out)))
	}

	return nil
}

// Installed reports whether the launch daemon plist exists.
func Installed() bool {
	_, err := os.Stat(plistPath)
	return err == nil
}
