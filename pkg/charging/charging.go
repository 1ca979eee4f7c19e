// Package charging switches battery charging on and off through SMC keys.
//
// Two key sets exist. Before macOS 15.7, CH0B and CH0C allow ("00") or block
// ("02") charging and CH0I forces discharge ("01") while plugged in. From 15.7
// on, CHTE replaces CH0B/CH0C ("00000000" allows, "01000000" blocks) and forced
// discharge moved to CHIE ("08"), with CH0J ("01") on machines without CHIE.
package charging

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/smc"
	"github.com/battcycle/battcycle/pkg/utils/osver"
)

// Hex values written to the charging keys.
const (
	LegacyEnableCharging   = "00"
	LegacyDisableCharging  = "02"
	LegacyEnableDischarge  = "01"
	LegacyDisableDischarge = "00"

	TahoeEnableCharging   = "00000000"
	TahoeDisableCharging  = "01000000"
	TahoeEnableDischarge  = "08"
	TahoeDisableDischarge = "00"

	TahoeFallbackEnableDischarge  = "01"
	TahoeFallbackDisableDischarge = "00"
)

// Controller turns charging on and off.
type Controller interface {
	// Name identifies the key set.
	Name() string
	// EnableCharging allows charging and stops forced discharge.
	EnableCharging() error
	// DisableCharging blocks charging and forces discharge.
	DisableCharging() error
}

// Detect returns the Tahoe controller if CHTE is readable, the legacy one
// otherwise.
func Detect(kv smc.KeyReadWriter) Controller {
	buf := make([]byte, smc.MaxDataSize)
	_, err := kv.ReadKey(smc.ChargingKeyTE, buf)
	tahoe := err == nil

	ver := osver.Get()
	fields := logrus.Fields{
		"tahoe":     tahoe,
		"osVersion": ver.String(),
	}
	if ver.Major > 0 && ver.AtLeast(osver.TahoeKeys) != tahoe {
		logrus.WithFields(fields).Warn("charging keys do not match the expected set for this macOS version")
	} else {
		logrus.WithFields(fields).Debug("detected charging keys")
	}

	if tahoe {
		return NewTahoe(kv)
	}
	return NewLegacy(kv)
}

type write struct {
	key   string
	value string
}

// apply attempts every write and returns all failures joined.
func apply(kv smc.KeyReadWriter, writes []write) error {
	var errs []error
	for _, w := range writes {
		if err := kv.WriteKey(w.key, w.value); err != nil {
			logrus.WithFields(logrus.Fields{
				"key": w.key,
				"val": w.value,
			}).WithError(err).Error("SMC write failed")
			errs = append(errs, pkgerrors.Wrapf(err, "write %s=%s", w.key, w.value))
		}
	}
	return errors.Join(errs...)
}
