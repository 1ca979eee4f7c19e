package powersource

import "github.com/sirupsen/logrus"

// BatteryInfo is a snapshot of the smart battery. Every field is optional:
// nil means the registry did not report it, which is different from zero.
// Capacities are in mAh.
type BatteryInfo struct {
	CurrentCapacity *int  `json:"current_capacity,omitempty"`
	MaxCapacity     *int  `json:"max_capacity,omitempty"`
	DesignCapacity  *int  `json:"design_capacity,omitempty"`
	CycleCount      *int  `json:"cycle_count,omitempty"`
	IsCharging      *bool `json:"is_charging,omitempty"`
	IsPluggedIn     *bool `json:"is_plugged_in,omitempty"`
}

// RawBatteryInfo is the flat form of BatteryInfo where absent fields are zero.
type RawBatteryInfo struct {
	CurrentCapacity int
	MaxCapacity     int
	DesignCapacity  int
	CycleCount      int
	IsCharging      bool
	IsPluggedIn     bool
}

// Present reports whether any field was found.
func (b BatteryInfo) Present() bool {
	return b.CurrentCapacity != nil || b.MaxCapacity != nil || b.DesignCapacity != nil ||
		b.CycleCount != nil || b.IsCharging != nil || b.IsPluggedIn != nil
}

// Percentage returns the current charge relative to the current maximum
// capacity, in percent.
func (b BatteryInfo) Percentage() (float64, bool) {
	return ratio(b.CurrentCapacity, b.MaxCapacity)
}

// Health returns the current maximum capacity relative to the design
// capacity, in percent.
func (b BatteryInfo) Health() (float64, bool) {
	return ratio(b.MaxCapacity, b.DesignCapacity)
}

// Legacy flattens b, turning absent fields into zero values.
func (b BatteryInfo) Legacy() RawBatteryInfo {
	return RawBatteryInfo{
		CurrentCapacity: deref(b.CurrentCapacity),
		MaxCapacity:     deref(b.MaxCapacity),
		DesignCapacity:  deref(b.DesignCapacity),
		CycleCount:      deref(b.CycleCount),
		IsCharging:      deref(b.IsCharging),
		IsPluggedIn:     deref(b.IsPluggedIn),
	}
}

// LogrusFields returns the fields that are present.
func (b BatteryInfo) LogrusFields() logrus.Fields {
	f := logrus.Fields{}
	if b.CurrentCapacity != nil {
		f["currentCapacity"] = *b.CurrentCapacity
	}
	if b.MaxCapacity != nil {
		f["maxCapacity"] = *b.MaxCapacity
	}
	if b.DesignCapacity != nil {
		f["designCapacity"] = *b.DesignCapacity
	}
	if b.CycleCount != nil {
		f["cycleCount"] = *b.CycleCount
	}
	if b.IsCharging != nil {
		f["isCharging"] = *b.IsCharging
	}
	if b.IsPluggedIn != nil {
		f["isPluggedIn"] = *b.IsPluggedIn
	}
	return f
}

func ratio(num, den *int) (float64, bool) {
	if num == nil || den == nil || *den == 0 {
		return 0, false
	}
	return float64(*num) / float64(*den) * 100, true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
