// Package cycle drives a battery between a low and a high charge level until
// its health drops to a target, toggling charging through the SMC.
package cycle

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/charging"
	"github.com/battcycle/battcycle/pkg/events"
	"github.com/battcycle/battcycle/pkg/history"
	"github.com/battcycle/battcycle/pkg/powermgmt"
	"github.com/battcycle/battcycle/pkg/powersource"
)

// Options controls the loop.
type Options struct {
	// TargetHealth stops the loop once health (max/design capacity) is at
	// or below this percentage.
	TargetHealth int
	// MaxCharge disables charging above this percentage.
	MaxCharge int
	// MinCharge enables charging below this percentage.
	MinCharge int
	Interval  time.Duration
	// MonitorOnly logs and records readings without touching the SMC.
	MonitorOnly  bool
	PreventSleep bool
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TargetHealth: 79,
		MaxCharge:    95,
		MinCharge:    5,
		Interval:     60 * time.Second,
		PreventSleep: true,
	}
}

// Recorder stores readings.
type Recorder interface {
	Record(history.Reading) error
}

// FetchFunc returns the current battery record.
type FetchFunc func() powersource.BatteryInfo

// Reason tells why Run returned.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonTargetReached Reason = "target_reached"
	ReasonCancelled     Reason = "cancelled"
	ReasonControlError  Reason = "control_error"
)

// State is the phase of the loop.
type State string

const (
	StateIdle        State = "idle"
	StateCharging    State = "charging"
	StateDischarging State = "discharging"
	StateMonitoring  State = "monitoring"
	StateDone        State = "done"
)

// Status is a snapshot of the loop, safe to hand out to other goroutines.
type Status struct {
	State           State            `json:"state"`
	ChargingEnabled bool             `json:"charging_enabled"`
	Ticks           int              `json:"ticks"`
	SkippedTicks    int              `json:"skipped_ticks"`
	StartedAt       time.Time        `json:"started_at"`
	LastReading     *history.Reading `json:"last_reading,omitempty"`
	Reason          Reason           `json:"reason,omitempty"`
	Controller      string           `json:"controller,omitempty"`
	Options         Options          `json:"options"`
}

// Cycler runs the cycling loop.
type Cycler struct {
	opts  Options
	fetch FetchFunc
	ctrl  charging.Controller
	rec   Recorder
	guard powermgmt.SleepGuard
	pub   events.Publisher
	now   func() time.Time

	mu     sync.RWMutex
	status Status
}

// Option customizes a Cycler.
type Option func(*Cycler)

// WithRecorder stores every reading in rec.
func WithRecorder(rec Recorder) Option {
	return func(c *Cycler) { c.rec = rec }
}

// WithSleepGuard holds guard while the loop runs if PreventSleep is set.
func WithSleepGuard(guard powermgmt.SleepGuard) Option {
	return func(c *Cycler) { c.guard = guard }
}

// WithPublisher announces state and charging changes on pub.
func WithPublisher(pub events.Publisher) Option {
	return func(c *Cycler) { c.pub = pub }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cycler) { c.now = now }
}

// New returns a Cycler. ctrl may be nil only when opts.MonitorOnly is set.
func New(opts Options, fetch FetchFunc, ctrl charging.Controller, options ...Option) (*Cycler, error) {
	if fetch == nil {
		return nil, pkgerrors.New("fetch function is nil")
	}
	if ctrl == nil && !opts.MonitorOnly {
		return nil, pkgerrors.New("charging controller is required unless monitoring only")
	}
	if opts.Interval <= 0 {
		return nil, pkgerrors.Errorf("interval must be positive, got %s", opts.Interval)
	}
	if opts.MinCharge >= opts.MaxCharge {
		return nil, pkgerrors.Errorf("min charge %d must be less than max charge %d", opts.MinCharge, opts.MaxCharge)
	}

	c := &Cycler{
		opts:  opts,
		fetch: fetch,
		ctrl:  ctrl,
		guard: powermgmt.Nop{},
		now:   time.Now,
		status: Status{
			State:           StateIdle,
			ChargingEnabled: true,
			Options:         opts,
		},
	}
	if ctrl != nil {
		c.status.Controller = ctrl.Name()
	}
	for _, o := range options {
		o(c)
	}

	return c, nil
}

// Status returns the latest snapshot.
func (c *Cycler) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.status
	if s.LastReading != nil {
		r := *s.LastReading
		s.LastReading = &r
	}
	return s
}

// Run blocks until the target health is reached, ctx is done or charging
// control fails. Charging is re-enabled before it returns unless the loop
// only monitors.
func (c *Cycler) Run(ctx context.Context) (reason Reason, err error) {
	logrus.WithFields(logrus.Fields{
		"targetHealth": c.opts.TargetHealth,
		"maxCharge":    c.opts.MaxCharge,
		"minCharge":    c.opts.MinCharge,
		"interval":     c.opts.Interval.String(),
		"monitorOnly":  c.opts.MonitorOnly,
		"controller":   c.status.Controller,
	}).Info("cycling started")

	c.update(func(s *Status) { s.StartedAt = c.now() })
	if c.opts.MonitorOnly {
		c.setState(StateMonitoring, ReasonNone)
	} else {
		c.setState(StateCharging, ReasonNone)
	}

	if c.opts.PreventSleep {
		if err := c.guard.PreventSleep(); err != nil {
			logrus.WithError(err).Warn("failed to prevent system sleep")
		}
	}

	defer func() {
		c.cleanup()
		c.setState(StateDone, reason)
		logrus.WithFields(logrus.Fields{
			"reason": reason,
		}).Info("cycling stopped")
	}()

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		done, err := c.tick()
		if err != nil {
			return ReasonControlError, err
		}
		if done {
			return ReasonTargetReached, nil
		}
		if ctx.Err() != nil {
			return ReasonCancelled, nil
		}

		logrus.WithField("interval", c.opts.Interval.String()).Debug("sleeping")
		select {
		case <-ctx.Done():
			return ReasonCancelled, nil
		case <-ticker.C:
		}
	}
}

// tick takes one reading and acts on it. It reports whether the target is
// reached.
func (c *Cycler) tick() (bool, error) {
	info := c.fetch()
	enabled := c.Status().ChargingEnabled
	reading := history.NewReading(c.now(), info, enabled)

	c.log(reading)

	if c.rec != nil {
		if err := c.rec.Record(reading); err != nil {
			logrus.WithError(err).Warn("failed to record reading")
		}
	}

	if reading.Percentage == nil || reading.Health == nil {
		logrus.WithFields(logrus.Fields{
			"percentage": reading.Percentage != nil,
			"health":     reading.Health != nil,
		}).Warn("incomplete battery reading, waiting for the next one")
		c.update(func(s *Status) {
			s.Ticks++
			s.SkippedTicks++
			s.LastReading = &reading
		})
		return false, nil
	}
	pct, health := *reading.Percentage, *reading.Health

	c.update(func(s *Status) {
		s.Ticks++
		s.LastReading = &reading
	})

	if health <= float64(c.opts.TargetHealth) {
		logrus.WithFields(logrus.Fields{
			"targetHealth":  c.opts.TargetHealth,
			"currentHealth": health,
		}).Info("target reached")
		return true, nil
	}

	if c.opts.MonitorOnly {
		return false, nil
	}

	switch {
	case pct > float64(c.opts.MaxCharge) && enabled:
		logrus.WithField("batteryPercentage", pct).Info("charging disabled")
		if err := c.ctrl.DisableCharging(); err != nil {
			return false, pkgerrors.Wrap(err, "failed to disable charging")
		}
		c.setCharging(false, pct)
		c.setState(StateDischarging, ReasonNone)
	case pct < float64(c.opts.MinCharge) && !enabled:
		logrus.WithField("batteryPercentage", pct).Info("charging enabled")
		if err := c.ctrl.EnableCharging(); err != nil {
			return false, pkgerrors.Wrap(err, "failed to enable charging")
		}
		c.setCharging(true, pct)
		c.setState(StateCharging, ReasonNone)
	}

	return false, nil
}

func (c *Cycler) cleanup() {
	if !c.opts.MonitorOnly {
		logrus.WithField("action", "re-enabling charging").Info("cleanup")
		if err := c.ctrl.EnableCharging(); err != nil {
			logrus.WithError(err).Error("failed to re-enable charging")
		} else {
			c.update(func(s *Status) { s.ChargingEnabled = true })
		}
	}

	if c.opts.PreventSleep {
		if err := c.guard.AllowSleep(); err != nil {
			logrus.WithError(err).Warn("failed to allow system sleep")
		}
	}
}

func (c *Cycler) setState(to State, reason Reason) {
	var from State
	c.update(func(s *Status) {
		from = s.State
		s.State = to
		s.Reason = reason
	})
	if c.pub != nil && from != to {
		c.pub.Publish(events.CycleState, events.CycleStateEvent{
			From:   string(from),
			To:     string(to),
			Reason: string(reason),
			Ts:     c.now().UnixMilli(),
		})
	}
}

func (c *Cycler) setCharging(enabled bool, pct float64) {
	c.update(func(s *Status) { s.ChargingEnabled = enabled })
	if c.pub != nil {
		c.pub.Publish(events.CycleCharging, events.CycleChargingEvent{
			Enabled:    enabled,
			Percentage: pct,
			Ts:         c.now().UnixMilli(),
		})
	}
}

func (c *Cycler) update(fn func(s *Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.status)
}

func (c *Cycler) log(r history.Reading) {
	fields := logrus.Fields{
		"chargingEnabled": r.ChargingEnabled,
	}
	if r.Percentage != nil {
		fields["batteryPercentage"] = *r.Percentage
	}
	if r.Health != nil {
		fields["batteryHealth"] = *r.Health
	}
	for k, v := range r.Battery.LogrusFields() {
		fields[k] = v
	}
	logrus.WithFields(fields).Info("battery reading")
}
