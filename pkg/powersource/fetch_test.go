package powersource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	props Properties
	err   error
	class string
	keys  []string
}

func (f *fakeRegistry) Snapshot(serviceClass string, keys []string) (Properties, error) {
	f.class = serviceClass
	f.keys = keys
	if f.err != nil {
		return nil, f.err
	}
	out := Properties{}
	for _, k := range keys {
		if v, ok := f.props[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func TestFetch(t *testing.T) {
	reg := &fakeRegistry{props: Properties{
		CurrentCapacityKey: int64(4200),
		MaxCapacityKey:     int64(4800),
		DesignCapacityKey:  int64(6000),
		CycleCountKey:      int64(312),
		IsChargingKey:      true,
		ExternalConnKey:    true,
		"Temperature":      int64(3012),
	}}

	info := Fetch(reg)
	assert.Equal(t, SmartBatteryService, reg.class)
	assert.ElementsMatch(t, batteryKeys, reg.keys)

	require.True(t, info.Present())
	assert.Equal(t, 4200, *info.CurrentCapacity)
	assert.Equal(t, 4800, *info.MaxCapacity)
	assert.Equal(t, 6000, *info.DesignCapacity)
	assert.Equal(t, 312, *info.CycleCount)
	assert.True(t, *info.IsCharging)
	assert.True(t, *info.IsPluggedIn)

	pct, ok := info.Percentage()
	require.True(t, ok)
	assert.InDelta(t, 87.5, pct, 0.001)

	health, ok := info.Health()
	require.True(t, ok)
	assert.InDelta(t, 80.0, health, 0.001)
}

func TestFetchServiceMissing(t *testing.T) {
	info := Fetch(&fakeRegistry{err: ErrServiceNotFound})
	assert.False(t, info.Present())
	assert.Equal(t, RawBatteryInfo{}, info.Legacy())

	info = Fetch(&fakeRegistry{err: errors.New("copy failed")})
	assert.False(t, info.Present())
}

func TestFetchPartial(t *testing.T) {
	info := Fetch(&fakeRegistry{props: Properties{
		CurrentCapacityKey: int64(0),
		MaxCapacityKey:     int64(5000),
		IsChargingKey:      false,
		// wrong type, treated as missing
		CycleCountKey: "12",
	}})

	require.NotNil(t, info.CurrentCapacity)
	assert.Equal(t, 0, *info.CurrentCapacity)
	require.NotNil(t, info.IsCharging)
	assert.False(t, *info.IsCharging)
	assert.Nil(t, info.DesignCapacity)
	assert.Nil(t, info.CycleCount)
	assert.Nil(t, info.IsPluggedIn)

	pct, ok := info.Percentage()
	assert.True(t, ok)
	assert.Zero(t, pct)

	_, ok = info.Health()
	assert.False(t, ok)

	assert.Equal(t, RawBatteryInfo{MaxCapacity: 5000}, info.Legacy())
}

func TestRatioZeroDivisor(t *testing.T) {
	zero, cur := 0, 10
	_, ok := BatteryInfo{CurrentCapacity: &cur, MaxCapacity: &zero}.Percentage()
	assert.False(t, ok)
}
