package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battcycle/battcycle/pkg/charging"
	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/utils/launchd"
)

// defaultLogFile is where the launch daemon writes its JSON logs.
const defaultLogFile = "/var/log/battcycle.log"

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false
	daemonLogFile := defaultLogFile

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install battcycle as a launch daemon (system-wide)",
		GroupID: gInstallation,
		Long: `Install battcycle to launchd (system-wide).

This makes 'battcycle run' start in the background on boot and restart if it
fails. It stops by itself once the target health is reached. You must run this
command as root.

By default, only root can read the daemon socket. Use --allow-non-root-access
to let 'status', 'history' and 'tray' work without sudo.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the battcycle daemon.")
			} else {
				logrus.Info("only root user is allowed to access the battcycle daemon.")
			}

			if err := conf.Save(); err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			err = launchd.Install(launchd.Options{
				ConfigPath: configPath,
				SocketPath: unixSocketPath,
				LogFile:    daemonLogFile,
			})
			if err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %w", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()
			cmd.Printf("`launchd' will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run ``battcycle install'' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access the battcycle daemon.")
	cmd.Flags().StringVar(&daemonLogFile, "daemon-log-file", daemonLogFile, "log file of the installed daemon")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	noResetCharging := false

	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall the battcycle launch daemon (system-wide)",
		GroupID: gInstallation,
		Long: `Uninstall the battcycle launch daemon and re-enable charging.

You must run this command as root.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := launchd.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall daemon: %w", err)
			}

			if !noResetCharging {
				// The daemon re-enables charging when it stops, this covers a
				// daemon that was killed before it could.
				kv, err := newKeyReadWriter(smcBackend)
				if err != nil {
					return err
				}
				if err := charging.Detect(kv).EnableCharging(); err != nil {
					return pkgerrors.Wrap(err, "failed to re-enable charging")
				}
				logrus.Info("charging re-enabled")
			}

			logrus.Infof("uninstallation succeeded")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noResetCharging, "no-reset-charging", false, "Do not re-enable charging after uninstalling")

	return cmd
}
