package types

import "github.com/battcycle/battcycle/pkg/powersource"

// BatteryReport is the battery view served by the daemon.
// This struct is shared between the daemon and client packages.
type BatteryReport struct {
	Info       powersource.BatteryInfo `json:"info"`
	Percentage *float64                `json:"percentage,omitempty"`
	Health     *float64                `json:"health,omitempty"`
	// SystemCharge is the charge level reported by the OS power source
	// list, in percent. It can differ slightly from Percentage.
	SystemCharge *float64 `json:"system_charge,omitempty"`
}

// NewBatteryReport derives percentage and health from info.
func NewBatteryReport(info powersource.BatteryInfo) BatteryReport {
	r := BatteryReport{Info: info}
	if v, ok := info.Percentage(); ok {
		r.Percentage = &v
	}
	if v, ok := info.Health(); ok {
		r.Health = &v
	}
	return r
}
