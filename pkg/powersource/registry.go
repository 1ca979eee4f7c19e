package powersource

import "errors"

// SmartBatteryService is the registry class of the battery service.
const SmartBatteryService = "AppleSmartBattery"

// Registry property names read by Fetch.
const (
	CurrentCapacityKey = "AppleRawCurrentCapacity"
	MaxCapacityKey     = "AppleRawMaxCapacity"
	DesignCapacityKey  = "DesignCapacity"
	CycleCountKey      = "CycleCount"
	IsChargingKey      = "IsCharging"
	ExternalConnKey    = "ExternalConnected"
)

var batteryKeys = []string{
	CurrentCapacityKey,
	MaxCapacityKey,
	DesignCapacityKey,
	CycleCountKey,
	IsChargingKey,
	ExternalConnKey,
}

var (
	// ErrServiceNotFound is returned when no registry entry matches the class.
	// This is the normal case on Macs without a battery.
	ErrServiceNotFound = errors.New("registry service not found")

	// ErrSnapshot is returned when the property dictionary cannot be copied.
	ErrSnapshot = errors.New("failed to snapshot registry properties")
)

// Registry gives access to registry entry properties.
type Registry interface {
	// Snapshot copies the properties of the first entry of serviceClass and
	// returns the requested keys that are present. Values are int64 or bool.
	Snapshot(serviceClass string, keys []string) (Properties, error)
}

// Properties is a decoded subset of a property dictionary.
type Properties map[string]any

// Int returns the number stored at key, or nil if it is missing or not a number.
func (p Properties) Int(key string) *int {
	switch v := p[key].(type) {
	case int64:
		i := int(v)
		return &i
	case int:
		return &v
	}
	return nil
}

// Bool returns the boolean stored at key, or nil if it is missing or not a boolean.
func (p Properties) Bool(key string) *bool {
	if v, ok := p[key].(bool); ok {
		return &v
	}
	return nil
}

// DefaultRegistry returns the registry of the current platform.
func DefaultRegistry() Registry {
	return newPlatformRegistry()
}
