package charging

import "github.com/sirupsen/logrus"

// DryRun wraps a Controller and only logs what it would do.
type DryRun struct {
	Controller Controller
}

// Name .
func (d DryRun) Name() string {
	return d.Controller.Name() + " (dry run)"
}

// EnableCharging .
func (d DryRun) EnableCharging() error {
	logrus.WithField("controller", d.Controller.Name()).Info("dry run: would enable charging")
	return nil
}

// DisableCharging .
func (d DryRun) DisableCharging() error {
	logrus.WithField("controller", d.Controller.Name()).Info("dry run: would disable charging")
	return nil
}
