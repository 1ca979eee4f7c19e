package cycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battcycle/battcycle/pkg/events"
	"github.com/battcycle/battcycle/pkg/history"
	"github.com/battcycle/battcycle/pkg/powersource"
	"github.com/battcycle/battcycle/pkg/utils/ptr"
)

type fakeController struct {
	mu         sync.Mutex
	calls      []string
	disableErr error
}

func (f *fakeController) Name() string { return "fake" }

func (f *fakeController) EnableCharging() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "enable")
	return nil
}

func (f *fakeController) DisableCharging() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disable")
	return f.disableErr
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeRecorder struct {
	readings []history.Reading
}

func (r *fakeRecorder) Record(reading history.Reading) error {
	r.readings = append(r.readings, reading)
	return nil
}

type fakeGuard struct {
	prevented, allowed int
}

func (g *fakeGuard) PreventSleep() error { g.prevented++; return nil }
func (g *fakeGuard) AllowSleep() error   { g.allowed++; return nil }

type fakePublisher struct {
	names    []string
	payloads []any
}

func (p *fakePublisher) Publish(name string, payload any) {
	p.names = append(p.names, name)
	p.payloads = append(p.payloads, payload)
}

// battery returns a record with design capacity 1000, so health equals
// maxCap/10 and percentage equals cur/maxCap*100.
func battery(cur, maxCap int) powersource.BatteryInfo {
	return powersource.BatteryInfo{
		CurrentCapacity: ptr.To(cur),
		MaxCapacity:     ptr.To(maxCap),
		DesignCapacity:  ptr.To(1000),
		CycleCount:      ptr.To(100),
		IsCharging:      ptr.To(false),
		IsPluggedIn:     ptr.To(true),
	}
}

// sequence returns each info once, then cancels ctx and keeps returning the
// last one.
func sequence(cancel context.CancelFunc, infos ...powersource.BatteryInfo) FetchFunc {
	i := 0
	return func() powersource.BatteryInfo {
		if i >= len(infos) {
			cancel()
			return infos[len(infos)-1]
		}
		info := infos[i]
		i++
		if i == len(infos) {
			cancel()
		}
		return info
	}
}

func testOptions() Options {
	o := DefaultOptions()
	o.Interval = time.Millisecond
	o.PreventSleep = false
	return o
}

func TestRunTogglesCharging(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := &fakeController{}
	rec := &fakeRecorder{}
	fetch := sequence(cancel,
		battery(900, 900), // 100% charge, health 90
		battery(450, 900), // 50%, nothing to do
		battery(36, 900),  // 4%, below min
		battery(450, 900),
	)

	c, err := New(testOptions(), fetch, ctrl, WithRecorder(rec))
	require.NoError(t, err)

	reason, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, reason)

	// disable above max, enable below min, enable on exit
	assert.Equal(t, []string{"disable", "enable", "enable"}, ctrl.Calls())

	require.Len(t, rec.readings, 4)
	assert.True(t, rec.readings[0].ChargingEnabled)
	assert.False(t, rec.readings[1].ChargingEnabled)
	assert.False(t, rec.readings[2].ChargingEnabled)
	assert.True(t, rec.readings[3].ChargingEnabled)

	s := c.Status()
	assert.Equal(t, StateDone, s.State)
	assert.Equal(t, ReasonCancelled, s.Reason)
	assert.Equal(t, 4, s.Ticks)
	assert.True(t, s.ChargingEnabled)
	assert.Equal(t, "fake", s.Controller)
}

func TestRunStopsAtTargetHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := &fakeController{}
	fetch := sequence(cancel,
		battery(900, 900),
		battery(700, 790), // health 79
		battery(700, 790),
	)

	c, err := New(testOptions(), fetch, ctrl)
	require.NoError(t, err)

	reason, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonTargetReached, reason)
	assert.Equal(t, []string{"disable", "enable"}, ctrl.Calls())
	assert.Equal(t, 2, c.Status().Ticks)
}

func TestRunSkipsIncompleteReadings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := &fakeController{}
	zeroMax := battery(100, 0)
	fetch := sequence(cancel,
		powersource.BatteryInfo{},
		zeroMax,
		battery(450, 900),
	)

	c, err := New(testOptions(), fetch, ctrl)
	require.NoError(t, err)

	reason, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, reason)

	s := c.Status()
	assert.Equal(t, 3, s.Ticks)
	assert.Equal(t, 2, s.SkippedTicks)
	require.NotNil(t, s.LastReading)
	assert.InDelta(t, 50.0, *s.LastReading.Percentage, 0.001)
	assert.Equal(t, []string{"enable"}, ctrl.Calls())
}

func TestRunMonitorOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := testOptions()
	opts.MonitorOnly = true
	fetch := sequence(cancel, battery(900, 900), battery(10, 900))

	c, err := New(opts, fetch, nil)
	require.NoError(t, err)

	reason, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, reason)
	assert.True(t, c.Status().ChargingEnabled)
}

func TestRunControlError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("boom")
	ctrl := &fakeController{disableErr: boom}
	fetch := sequence(cancel, battery(900, 900), battery(900, 900))

	c, err := New(testOptions(), fetch, ctrl)
	require.NoError(t, err)

	reason, err := c.Run(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ReasonControlError, reason)
	assert.Equal(t, []string{"disable", "enable"}, ctrl.Calls())
}

func TestRunHoldsSleepGuard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := testOptions()
	opts.PreventSleep = true
	guard := &fakeGuard{}
	fetch := sequence(cancel, battery(450, 900))

	c, err := New(opts, fetch, &fakeController{}, WithSleepGuard(guard))
	require.NoError(t, err)

	_, err = c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, guard.prevented)
	assert.Equal(t, 1, guard.allowed)
}

func TestNewValidates(t *testing.T) {
	fetch := func() powersource.BatteryInfo { return powersource.BatteryInfo{} }

	_, err := New(testOptions(), nil, &fakeController{})
	assert.Error(t, err)

	_, err = New(testOptions(), fetch, nil)
	assert.Error(t, err)

	opts := testOptions()
	opts.Interval = 0
	_, err = New(opts, fetch, &fakeController{})
	assert.Error(t, err)

	opts = testOptions()
	opts.MinCharge = opts.MaxCharge
	_, err = New(opts, fetch, &fakeController{})
	assert.Error(t, err)
}

func TestStatusIsACopy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := New(testOptions(), sequence(cancel, battery(450, 900)), &fakeController{},
		WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	_, err = c.Run(ctx)
	require.NoError(t, err)

	s := c.Status()
	assert.Equal(t, fixed, s.StartedAt)
	s.LastReading.ChargingEnabled = false
	assert.True(t, c.Status().LastReading.ChargingEnabled)
}

func TestRunPublishesTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &fakePublisher{}
	fetch := sequence(cancel, battery(900, 900), battery(450, 900))

	c, err := New(testOptions(), fetch, &fakeController{}, WithPublisher(pub))
	require.NoError(t, err)

	_, err = c.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.CycleState,
		events.CycleCharging,
		events.CycleState,
		events.CycleState,
	}, pub.names)

	first := pub.payloads[0].(events.CycleStateEvent)
	assert.Equal(t, "idle", first.From)
	assert.Equal(t, "charging", first.To)

	toggle := pub.payloads[1].(events.CycleChargingEvent)
	assert.False(t, toggle.Enabled)
	assert.InDelta(t, 100.0, toggle.Percentage, 0.001)

	last := pub.payloads[3].(events.CycleStateEvent)
	assert.Equal(t, "discharging", last.From)
	assert.Equal(t, "done", last.To)
	assert.Equal(t, "cancelled", last.Reason)
}
