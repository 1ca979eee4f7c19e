package main

import (
	"fmt"

	"github.com/battcycle/battcycle/pkg/smc"
)

const (
	backendNative = "native"
	backendGosmc  = "gosmc"
	backendMock   = "mock"
)

// mockPrefill lets the mock backend answer the charging keys.
var mockPrefill = map[string][]byte{
	smc.ChargingKeyB:     {0x00},
	smc.ChargingKeyC:     {0x00},
	smc.DischargeKeyI:    {0x00},
	smc.ACPowerKey:       {0x01},
	smc.KeyCountKey:      {0x00, 0x00, 0x00, 0x03},
	smc.BatteryChargeKey: {0x50},
}

// newKeyReadWriter returns the SMC backend selected by --smc-backend.
func newKeyReadWriter(backend string) (smc.KeyReadWriter, error) {
	switch backend {
	case backendNative:
		return smc.Default(), nil
	case backendGosmc:
		return smc.NewGosmc(), nil
	case backendMock:
		return smc.NewMock(mockPrefill), nil
	default:
		return nil, fmt.Errorf("unknown smc backend %q, expected one of %s, %s, %s", backend, backendNative, backendGosmc, backendMock)
	}
}
