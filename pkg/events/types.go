package events

import "encoding/json"

// Event names.
const (
	CycleState    = "cycle.state"
	CycleCharging = "cycle.charging"
)

// Event is a server-sent event from the daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// CycleStateEvent is the payload of cycle.state.
type CycleStateEvent struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
	Ts     int64  `json:"ts"`
}

// CycleChargingEvent is the payload of cycle.charging.
type CycleChargingEvent struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
	Ts         int64   `json:"ts"`
}

// DecodeAs unmarshals the payload of e into T. Empty payloads give the zero
// value.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
