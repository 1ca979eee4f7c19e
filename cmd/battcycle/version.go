package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/battcycle/battcycle/pkg/client"
	"github.com/battcycle/battcycle/pkg/version"
)

// NewVersionCommand .
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("Client version: %s (%s)\n", version.Version, version.GitCommit)

			daemonVersion, err := client.NewClient(unixSocketPath).GetVersion()
			switch {
			case err == nil:
				cmd.Printf("Daemon version: %s\n", daemonVersion)
			case errors.Is(err, client.ErrDaemonNotRunning):
				cmd.Println("Daemon version: not running")
			default:
				return err
			}
			return nil
		},
	}
}
