package config

import "time"

// Config is the set of cycling settings shared by the loop, the daemon and
// the CLI.
type Config interface {
	TargetHealth() int
	MaxCharge() int
	MinCharge() int
	Interval() time.Duration
	PreventSleep() bool
	HistoryDB() string
	AllowNonRootAccess() bool
	AllowSMCWrite() bool

	SetTargetHealth(int) error
	SetChargeRange(lower, upper int) error
	SetInterval(time.Duration) error
	SetPreventSleep(bool)
	SetHistoryDB(string)
	SetAllowNonRootAccess(bool)
	SetAllowSMCWrite(bool)

	// Validate checks that the current values form a usable configuration.
	Validate() error
	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
