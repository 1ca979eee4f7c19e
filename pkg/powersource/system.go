package powersource

import (
	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
)

// SystemCharge returns the charge percentage reported by the operating
// system's power source API. It is independent of the registry read by
// Fetch and is used to cross-check it.
func SystemCharge() (float64, error) {
	bats, err := battery.GetAll()
	if err != nil && len(bats) == 0 {
		return 0, pkgerrors.Wrap(err, "failed to get batteries")
	}

	for _, b := range bats {
		if b == nil || b.Full <= 0 {
			continue
		}
		return b.Current / b.Full * 100, nil
	}

	return 0, pkgerrors.New("no battery reported by the system")
}
