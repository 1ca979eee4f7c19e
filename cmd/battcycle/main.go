package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/battcycle/battcycle/pkg/client"
	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/daemon"
	"github.com/battcycle/battcycle/pkg/gui"
	"github.com/battcycle/battcycle/pkg/smc"
	"github.com/battcycle/battcycle/pkg/utils/osver"
)

var (
	logLevel       = "info"
	logFile        = ""
	unixSocketPath = daemon.DefaultSocketPath
	configPath     = config.DefaultPath
	smcBackend     = backendNative
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
		gInstallation,
	}
)

// logFileHandle is closed by main after the command returns.
var logFileHandle *os.File

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %v", logFile, err)
		}
		logFileHandle = f
		logrus.SetOutput(io.MultiWriter(os.Stderr, f))
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return nil
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: battcycle daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'battcycle run' or install it with 'battcycle install'.")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or reinstall the daemon with the '--allow-non-root-access' flag to grant permissions to your user")
	case errors.Is(err, smc.ErrOpen):
		fmt.Fprintln(os.Stderr, "\nError: cannot open the SMC")
		fmt.Fprintln(os.Stderr, "Writing SMC keys requires root. Try running the command again with 'sudo'.")
	}
}

func main() {
	if runtime.GOOS == "darwin" && !osver.IsAtLeast(11, 0, 0) {
		fmt.Fprintln(os.Stderr, "battcycle requires macOS 11.0 or later")
		os.Exit(1)
	}

	// battcycle does not need to use much.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}
	// The tray needs the main thread.
	runtime.LockOSThread()

	cmd := NewCommand()
	err := cmd.Execute()
	if logFileHandle != nil {
		_ = logFileHandle.Close()
	}
	if err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battcycle",
		Short: "battcycle cycles a MacBook battery between two charge levels",
		Long: `battcycle cycles a MacBook battery between a low and a high charge level,
toggling charging through the SMC, until battery health drops to a target.

It also reads smart battery properties and raw SMC keys.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "battcycle daemon unix socket path")
	globalFlags.StringVar(&smcBackend, "smc-backend", smcBackend, "SMC backend (native, gosmc, mock)")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewRunCommand(),
		NewStatusCommand(),
		NewHistoryCommand(),
		NewSMCCommand(),
		NewChargingCommand(),
		NewVersionCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
		gui.NewTrayCommand(&unixSocketPath, &logFile, gBasic),
	)

	return cmd
}
