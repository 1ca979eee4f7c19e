package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battcycle/battcycle/pkg/client"
	"github.com/battcycle/battcycle/pkg/cycle"
	"github.com/battcycle/battcycle/pkg/powersource"
	"github.com/battcycle/battcycle/pkg/types"
	"github.com/battcycle/battcycle/pkg/utils/osver"
)

// NewStatusCommand .
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Show battery and cycling status",
		Long: `Show smart battery properties read directly from the registry and, if
'battcycle run' is active, the state of the cycling loop.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := types.NewBatteryReport(powersource.FetchBatteryInfo())
			if charge, err := powersource.SystemCharge(); err == nil {
				report.SystemCharge = &charge
			} else {
				logrus.WithError(err).Debug("system charge unavailable")
			}

			printBattery(cmd, report)
			cmd.Println()

			st, err := client.NewClient(unixSocketPath).GetStatus()
			switch {
			case err == nil:
				printCycle(cmd, st)
			case errors.Is(err, client.ErrDaemonNotRunning):
				cmd.Println(bold("Cycling:"))
				cmd.Println("  Not running")
			default:
				return err
			}

			cmd.Println()
			cmd.Printf("macOS: %s\n", osver.Get())
			return nil
		},
	}
}

func printBattery(cmd *cobra.Command, r types.BatteryReport) {
	cmd.Println(bold("Battery status:"))

	if !r.Info.Present() {
		cmd.Println("  " + color.RedString("No smart battery found"))
		return
	}

	cmd.Printf("  Current charge: %s\n", optFloat(r.Percentage, "%.1f%%"))
	if r.SystemCharge != nil {
		cmd.Printf("  Charge reported by macOS: %s\n", bold("%.1f%%", *r.SystemCharge))
	}
	cmd.Printf("  Health: %s\n", optFloat(r.Health, "%.1f%%"))
	cmd.Printf("  Capacity (current/max/design): %s / %s / %s mAh\n",
		optInt(r.Info.CurrentCapacity), optInt(r.Info.MaxCapacity), optInt(r.Info.DesignCapacity))
	cmd.Printf("  Cycle count: %s\n", optInt(r.Info.CycleCount))
	cmd.Printf("  Charging: %s\n", optBool(r.Info.IsCharging))
	cmd.Printf("  Plugged in: %s\n", optBool(r.Info.IsPluggedIn))
}

func printCycle(cmd *cobra.Command, st *cycle.Status) {
	cmd.Println(bold("Cycling:"))

	state := string(st.State)
	switch st.State {
	case cycle.StateCharging:
		state = color.GreenString(state)
	case cycle.StateDischarging:
		state = color.RedString(state)
	}
	cmd.Printf("  State: %s\n", bold("%s", state))
	if st.Reason != cycle.ReasonNone {
		cmd.Printf("  Stopped because: %s\n", st.Reason)
	}
	cmd.Printf("  Charging allowed: %s\n", bool2Text(st.ChargingEnabled))
	if st.Controller != "" {
		cmd.Printf("  Charging keys: %s\n", st.Controller)
	}
	cmd.Printf("  Target health: %s\n", bold("%d%%", st.Options.TargetHealth))
	cmd.Printf("  Charge range: %s\n", bold("%d%% - %d%%", st.Options.MinCharge, st.Options.MaxCharge))
	cmd.Printf("  Readings: %d (%d incomplete)\n", st.Ticks, st.SkippedTicks)
	if !st.StartedAt.IsZero() {
		cmd.Printf("  Started at: %s\n", st.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func optInt(p *int) string {
	if p == nil {
		return color.YellowString("unknown")
	}
	return bold("%d", *p)
}

func optFloat(p *float64, format string) string {
	if p == nil {
		return color.YellowString("unknown")
	}
	return bold(format, *p)
}

func optBool(p *bool) string {
	if p == nil {
		return color.YellowString("unknown")
	}
	return bool2Text(*p)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
