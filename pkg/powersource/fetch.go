package powersource

import "github.com/sirupsen/logrus"

// FetchBatteryInfo reads the smart battery from the system registry.
func FetchBatteryInfo() BatteryInfo {
	return Fetch(DefaultRegistry())
}

// Fetch reads the smart battery from reg. It never fails: if the service is
// missing or cannot be read, the returned record is empty. Each field is
// looked up on its own, so a missing key only leaves that field unset.
func Fetch(reg Registry) BatteryInfo {
	props, err := reg.Snapshot(SmartBatteryService, batteryKeys)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"service": SmartBatteryService,
		}).WithError(err).Debug("battery service unavailable")
		return BatteryInfo{}
	}

	info := BatteryInfo{
		CurrentCapacity: props.Int(CurrentCapacityKey),
		MaxCapacity:     props.Int(MaxCapacityKey),
		DesignCapacity:  props.Int(DesignCapacityKey),
		CycleCount:      props.Int(CycleCountKey),
		IsCharging:      props.Bool(IsChargingKey),
		IsPluggedIn:     props.Bool(ExternalConnKey),
	}

	logrus.WithFields(logrus.Fields{
		"found": len(props),
		"want":  len(batteryKeys),
	}).Trace("battery properties loaded")

	return info
}
