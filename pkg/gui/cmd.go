package gui

import (
	"github.com/spf13/cobra"
)

// NewTrayCommand returns the cobra command that starts the menu bar item.
func NewTrayCommand(unixSocketPath *string, logFile *string, groupID string) *cobra.Command {
	return &cobra.Command{
		Use:     "tray",
		Short:   "Show battery and cycling state in the menu bar",
		GroupID: groupID,
		Long: `Show battery and cycling state in the menu bar.

The tray reads everything from the running battcycle daemon and never writes to the SMC.`,
		Run: func(_ *cobra.Command, _ []string) {
			Run(*unixSocketPath, *logFile)
		},
	}
}
