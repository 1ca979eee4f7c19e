// Package gui shows battery and cycling state in the menu bar.
package gui

import (
	"context"
	"sync"
	"time"

	"github.com/getlantern/systray"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/client"
	"github.com/battcycle/battcycle/pkg/version"
)

const refreshInterval = 5 * time.Second

type tray struct {
	api     *client.Client
	logFile string

	title    *systray.MenuItem
	charge   *systray.MenuItem
	health   *systray.MenuItem
	cycles   *systray.MenuItem
	charging *systray.MenuItem
	loop     *systray.MenuItem

	// serializes refreshes from the ticker and the event stream
	mu sync.Mutex
}

// Run blocks running the menu bar item until the user quits.
func Run(unixSocketPath string, logFile string) {
	t := &tray{
		api:     client.NewClient(unixSocketPath),
		logFile: logFile,
	}

	logrus.WithField("version", version.Version).WithField("gitCommit", version.GitCommit).Info("battcycle tray")
	systray.Run(t.onReady, t.onExit)
}

func (t *tray) onReady() {
	systray.SetTitle("🔋 Loading...")
	systray.SetTooltip("battcycle - battery cycling")

	t.charge = disabledItem("Charge: -", "Current charge")
	t.health = disabledItem("Health: -", "Maximum capacity relative to design capacity")
	t.cycles = disabledItem("Cycles: -", "Battery cycle count")
	t.charging = disabledItem("Charging: -", "Charging state")
	t.loop = disabledItem("Cycling: -", "Cycling loop state")

	systray.AddSeparator()
	mLog := systray.AddMenuItem("Open Log File", "Open the battcycle log file")
	if t.logFile == "" {
		mLog.Disable()
	}
	mVersion := systray.AddMenuItem("Version: "+version.Version, "battcycle version")
	mVersion.Disable()

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the menu bar app, the cycling loop keeps running")

	t.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	go t.watchEvents(ctx)

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.refresh()
			case <-mLog.ClickedCh:
				if err := openPath(t.logFile); err != nil {
					logrus.WithError(err).Warn("failed to open log file")
				}
			case <-mQuit.ClickedCh:
				cancel()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *tray) onExit() {
	logrus.Info("battcycle tray exiting")
}

// watchEvents refreshes as soon as the cycling loop changes state, instead
// of waiting for the next tick. It resubscribes when the daemon restarts.
func (t *tray) watchEvents(ctx context.Context) {
	for {
		ch, err := t.api.SubscribeEvents(ctx)
		if err == nil {
			for ev := range ch {
				logrus.WithField("event", ev.Name).Debug("daemon event")
				t.refresh()
			}
		} else if !pkgerrors.Is(err, client.ErrDaemonNotRunning) {
			logrus.WithError(err).Debug("failed to subscribe to daemon events")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(refreshInterval):
		}
	}
}

func (t *tray) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	bat, err := t.api.GetBattery()
	if err != nil {
		if !pkgerrors.Is(err, client.ErrDaemonNotRunning) {
			logrus.WithError(err).Warn("failed to get battery info")
		}
		t.apply(offlineView())
		return
	}

	st, err := t.api.GetStatus()
	if err != nil {
		logrus.WithError(err).Debug("cycling status unavailable")
		st = nil
	}

	t.apply(buildView(bat, st))
}

func (t *tray) apply(v view) {
	systray.SetTitle(v.Title)
	t.charge.SetTitle(v.Charge)
	t.health.SetTitle(v.Health)
	t.cycles.SetTitle(v.Cycles)
	t.charging.SetTitle(v.Charging)
	t.loop.SetTitle(v.Loop)
}

func disabledItem(title, tooltip string) *systray.MenuItem {
	item := systray.AddMenuItem(title, tooltip)
	item.Disable()
	return item
}
