package main

import (
	"github.com/spf13/cobra"

	"github.com/battcycle/battcycle/pkg/charging"
)

func detectController() (charging.Controller, error) {
	kv, err := newKeyReadWriter(smcBackend)
	if err != nil {
		return nil, err
	}
	return charging.Detect(kv), nil
}

// NewChargingCommand .
func NewChargingCommand() *cobra.Command {
	return newEnableDisableCommand(
		"charging",
		"Allow or block charging",
		`Allow or block charging through the SMC charging keys detected on this Mac.

Disabling charging also forces the battery to discharge while plugged in.
A running 'battcycle run' will override manual changes on its next reading.`,
		func() error {
			ctrl, err := detectController()
			if err != nil {
				return err
			}
			return ctrl.EnableCharging()
		},
		func() error {
			ctrl, err := detectController()
			if err != nil {
				return err
			}
			return ctrl.DisableCharging()
		},
	)
}
