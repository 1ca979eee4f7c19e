package charging

import (
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/smc"
)

// Legacy controls charging with CH0B, CH0C and CH0I.
type Legacy struct {
	kv smc.KeyReadWriter
}

// NewLegacy returns a Legacy controller.
func NewLegacy(kv smc.KeyReadWriter) *Legacy {
	return &Legacy{kv: kv}
}

// Name .
func (l *Legacy) Name() string {
	return "legacy"
}

// EnableCharging .
func (l *Legacy) EnableCharging() error {
	logrus.Tracef("EnableCharging called")

	return apply(l.kv, []write{
		{smc.ChargingKeyB, LegacyEnableCharging},
		{smc.ChargingKeyC, LegacyEnableCharging},
		{smc.DischargeKeyI, LegacyDisableDischarge},
	})
}

// DisableCharging .
func (l *Legacy) DisableCharging() error {
	logrus.Tracef("DisableCharging called")

	return apply(l.kv, []write{
		{smc.ChargingKeyB, LegacyDisableCharging},
		{smc.ChargingKeyC, LegacyDisableCharging},
		{smc.DischargeKeyI, LegacyEnableDischarge},
	})
}
