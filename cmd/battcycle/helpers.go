package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64) + "%"
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func newEnableDisableCommand(
	use, short, long string,
	enableFunc func() error,
	disableFunc func() error,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    long,
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable " + use,
			RunE: func(_ *cobra.Command, _ []string) error {
				if err := enableFunc(); err != nil {
					return fmt.Errorf("failed to enable %s: %w", use, err)
				}
				logrus.Infof("successfully enabled %s", use)
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable " + use,
			RunE: func(_ *cobra.Command, _ []string) error {
				if err := disableFunc(); err != nil {
					return fmt.Errorf("failed to disable %s: %w", use, err)
				}
				logrus.Infof("successfully disabled %s", use)
				return nil
			},
		},
	)

	return cmd
}
