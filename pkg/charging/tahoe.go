package charging

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/smc"
)

// Tahoe controls charging with CHTE, and discharge with CHIE or CH0J.
type Tahoe struct {
	kv smc.KeyReadWriter
}

// NewTahoe returns a Tahoe controller.
func NewTahoe(kv smc.KeyReadWriter) *Tahoe {
	return &Tahoe{kv: kv}
}

// Name .
func (t *Tahoe) Name() string {
	return "tahoe"
}

// EnableCharging .
func (t *Tahoe) EnableCharging() error {
	logrus.Tracef("EnableCharging called")

	return t.set(TahoeEnableCharging, TahoeDisableDischarge, TahoeFallbackDisableDischarge)
}

// DisableCharging .
func (t *Tahoe) DisableCharging() error {
	logrus.Tracef("DisableCharging called")

	return t.set(TahoeDisableCharging, TahoeEnableDischarge, TahoeFallbackEnableDischarge)
}

func (t *Tahoe) set(charging, discharge, fallbackDischarge string) error {
	chargeErr := apply(t.kv, []write{{smc.ChargingKeyTE, charging}})

	dischargeErr := t.kv.WriteKey(smc.DischargeKeyIE, discharge)
	if dischargeErr != nil {
		logrus.WithFields(logrus.Fields{
			"key":      smc.DischargeKeyIE,
			"fallback": smc.DischargeKeyJ,
		}).WithError(dischargeErr).Debug("discharge key unavailable, using fallback")

		dischargeErr = apply(t.kv, []write{{smc.DischargeKeyJ, fallbackDischarge}})
	}

	return errors.Join(chargeErr, dischargeErr)
}
