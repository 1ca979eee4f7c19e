package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battcycle/battcycle/pkg/charging"
	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/cycle"
	"github.com/battcycle/battcycle/pkg/daemon"
	"github.com/battcycle/battcycle/pkg/events"
	"github.com/battcycle/battcycle/pkg/history"
	"github.com/battcycle/battcycle/pkg/powermgmt"
	"github.com/battcycle/battcycle/pkg/powersource"
	"github.com/battcycle/battcycle/pkg/version"
)

var errNotPluggedIn = pkgerrors.New("charger is not connected, plug it in or pass --force")

type runFlags struct {
	targetHealth int
	maxCharge    int
	minCharge    int
	interval     time.Duration
	monitorOnly  bool
	dryRun       bool
	force        bool
	noHistory    bool
	noServer     bool
	allowNonRoot bool
}

// NewRunCommand .
func NewRunCommand() *cobra.Command {
	f := runFlags{}
	defaults := cycle.DefaultOptions()

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Cycle the battery until it reaches the target health",
		GroupID: gBasic,
		Long: `Cycle the battery between --min-charge and --max-charge until its health
(maximum capacity relative to design capacity) drops to --target-health.

Charging is disabled above the maximum charge and enabled again below the
minimum. Charging is always re-enabled when battcycle exits. While running,
battcycle serves its state on the daemon socket for 'status', 'history' and
'tray'.

Flags override the values in the config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, conf, f); err != nil {
				return err
			}
			if err := conf.Validate(); err != nil {
				return err
			}
			logrus.WithFields(conf.LogrusFields()).Info("config loaded")

			reload := func() error { return reloadConfig(cmd, conf, f) }
			return runCycle(cmd.Context(), conf, f, reload)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.targetHealth, "target-health", defaults.TargetHealth, "stop once battery health is at or below this percentage")
	fl.IntVar(&f.maxCharge, "max-charge", defaults.MaxCharge, "disable charging above this percentage")
	fl.IntVar(&f.minCharge, "min-charge", defaults.MinCharge, "enable charging below this percentage")
	fl.DurationVar(&f.interval, "interval", defaults.Interval, "time between readings")
	fl.BoolVar(&f.monitorOnly, "monitor-only", false, "only log readings, never touch charging")
	fl.BoolVar(&f.dryRun, "dry-run", false, "log charging changes instead of writing them to the SMC")
	fl.BoolVar(&f.force, "force", false, "start even if the charger is not connected")
	fl.BoolVar(&f.noHistory, "no-history", false, "do not store readings in the history database")
	fl.BoolVar(&f.noServer, "no-server", false, "do not serve state on the daemon socket")
	fl.BoolVar(&f.allowNonRoot, "allow-non-root-access", false, "allow non-root users to read the daemon socket")

	return cmd
}

func applyRunFlags(cmd *cobra.Command, conf config.Config, f runFlags) error {
	fl := cmd.Flags()

	if fl.Changed("target-health") {
		if err := conf.SetTargetHealth(f.targetHealth); err != nil {
			return err
		}
	}
	if fl.Changed("max-charge") || fl.Changed("min-charge") {
		lower, upper := conf.MinCharge(), conf.MaxCharge()
		if fl.Changed("min-charge") {
			lower = f.minCharge
		}
		if fl.Changed("max-charge") {
			upper = f.maxCharge
		}
		if err := conf.SetChargeRange(lower, upper); err != nil {
			return err
		}
	}
	if fl.Changed("interval") {
		if err := conf.SetInterval(f.interval); err != nil {
			return err
		}
	}

	return nil
}

// reloadConfig reads the config file again and re-applies the command line
// overrides on top of it, so the served config keeps matching the loop.
func reloadConfig(cmd *cobra.Command, conf config.Config, f runFlags) error {
	if err := conf.Load(); err != nil {
		return err
	}
	if err := applyRunFlags(cmd, conf, f); err != nil {
		return err
	}
	return conf.Validate()
}

func runCycle(parent context.Context, conf config.Config, f runFlags, reload func() error) error {
	if parent == nil {
		parent = context.Background()
	}

	logrus.WithFields(logrus.Fields{
		"version": version.Version,
		"commit":  version.GitCommit,
	}).Info("battcycle starting")

	info := powersource.FetchBatteryInfo()
	if !info.Present() {
		return pkgerrors.Wrap(powersource.ErrServiceNotFound, "no smart battery found")
	}
	if !f.force && !f.monitorOnly && (info.IsPluggedIn == nil || !*info.IsPluggedIn) {
		return errNotPluggedIn
	}

	kv, err := newKeyReadWriter(smcBackend)
	if err != nil {
		return err
	}

	var ctrl charging.Controller
	if !f.monitorOnly {
		ctrl = charging.Detect(kv)
		if f.dryRun {
			ctrl = charging.DryRun{Controller: ctrl}
		}
	}

	hub := events.NewEventHub()
	options := []cycle.Option{
		cycle.WithPublisher(hub),
		cycle.WithSleepGuard(powermgmt.NewAssertion("battcycle", "Battery cycling by battcycle is in progress")),
	}

	var store *history.Store
	if !f.noHistory {
		store, err = history.Open(conf.HistoryDB())
		if err != nil {
			logrus.WithError(err).Warn("history disabled")
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					logrus.WithError(err).Warn("failed to close history store")
				}
			}()
			options = append(options, cycle.WithRecorder(store))
		}
	}

	cycler, err := cycle.New(cycle.Options{
		TargetHealth: conf.TargetHealth(),
		MaxCharge:    conf.MaxCharge(),
		MinCharge:    conf.MinCharge(),
		Interval:     conf.Interval(),
		MonitorOnly:  f.monitorOnly,
		PreventSleep: conf.PreventSleep(),
	}, powersource.FetchBatteryInfo, ctrl, options...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverDone := make(chan struct{})
	if f.noServer {
		close(serverDone)
	} else {
		opts := daemon.Options{
			Config: conf,
			SMC:    kv,
			Status: cycler,
			Events: hub,
		}
		if store != nil {
			opts.History = store
		}
		srv := daemon.New(opts)

		go func() {
			defer close(serverDone)
			if err := srv.Serve(ctx, unixSocketPath, f.allowNonRoot); err != nil {
				logrus.WithError(err).Error("daemon server stopped")
			}
		}()
	}

	// Reload the config on SIGHUP. Only settings read per request change.
	go reloadOnHangup(ctx, conf, cycler.Status().Options, reload)

	reason, err := cycler.Run(ctx)
	stop()
	<-serverDone

	if err != nil {
		return err
	}
	logrus.WithField("reason", reason).Info("battcycle finished")
	return nil
}

func reloadOnHangup(ctx context.Context, conf config.Config, running cycle.Options, reload func() error) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP)
	defer signal.Stop(sigc)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigc:
			if err := reload(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
			if conf.TargetHealth() != running.TargetHealth || conf.MinCharge() != running.MinCharge ||
				conf.MaxCharge() != running.MaxCharge || conf.Interval() != running.Interval {
				logrus.Warn("charge thresholds and interval changed, they take effect after a restart")
			}
		}
	}
}
