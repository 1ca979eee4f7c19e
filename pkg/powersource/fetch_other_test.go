//go:build !darwin

package powersource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchBatteryInfoWithoutBattery(t *testing.T) {
	info := FetchBatteryInfo()
	assert.False(t, info.Present())
	assert.Equal(t, RawBatteryInfo{}, info.Legacy())
}
