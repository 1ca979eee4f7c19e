package smc

// Various SMC keys.
const (
	// KeyCountKey holds the number of keys as a big-endian ui32.
	KeyCountKey = "#KEY"

	// Charging control before macOS 15.7.
	ChargingKeyB  = "CH0B"
	ChargingKeyC  = "CH0C"
	DischargeKeyI = "CH0I"

	// Charging control on macOS 15.7 and later.
	ChargingKeyTE  = "CHTE"
	DischargeKeyIE = "CHIE"
	DischargeKeyJ  = "CH0J"

	ACPowerKey       = "AC-W"
	BatteryChargeKey = "BUIC"
)
