package gui

import (
	"fmt"

	"github.com/battcycle/battcycle/pkg/cycle"
	"github.com/battcycle/battcycle/pkg/types"
)

// view holds the menu titles for one refresh.
type view struct {
	Title    string
	Charge   string
	Health   string
	Cycles   string
	Charging string
	Loop     string
}

func offlineView() view {
	return view{
		Title:    "🚫 Offline",
		Charge:   "Charge: -",
		Health:   "Health: -",
		Cycles:   "Cycles: -",
		Charging: "Charging: -",
		Loop:     "Cycling: daemon not running",
	}
}

// buildView renders bat and, if the loop is running, its status. st may be
// nil.
func buildView(bat *types.BatteryReport, st *cycle.Status) view {
	if bat == nil {
		return offlineView()
	}

	v := view{
		Title:    "🔋 -",
		Charge:   "Charge: -",
		Health:   "Health: -",
		Cycles:   "Cycles: -",
		Charging: "Charging: -",
		Loop:     "Cycling: not running",
	}

	icon := "🔋"
	if bat.Info.IsCharging != nil && *bat.Info.IsCharging {
		icon = "⚡️"
	}

	if bat.Percentage != nil {
		v.Title = fmt.Sprintf("%s %.0f%%", icon, *bat.Percentage)
		v.Charge = fmt.Sprintf("Charge: %.1f%%", *bat.Percentage)
	}
	if bat.Health != nil {
		v.Health = fmt.Sprintf("Health: %.1f%%", *bat.Health)
	}
	if bat.Info.CycleCount != nil {
		v.Cycles = fmt.Sprintf("Cycles: %d", *bat.Info.CycleCount)
	}

	switch {
	case bat.Info.IsCharging != nil && *bat.Info.IsCharging:
		v.Charging = "Charging: yes"
	case bat.Info.IsPluggedIn != nil && *bat.Info.IsPluggedIn:
		v.Charging = "Charging: no, on AC power"
	case bat.Info.IsPluggedIn != nil:
		v.Charging = "Charging: no, on battery"
	}

	if st != nil {
		v.Loop = fmt.Sprintf("Cycling: %s until %d%% health (%d-%d%%)",
			st.State, st.Options.TargetHealth, st.Options.MinCharge, st.Options.MaxCharge)
		if st.State == cycle.StateDone {
			v.Loop = fmt.Sprintf("Cycling: done (%s)", st.Reason)
		}
	}

	return v
}
