package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/cycle"
	"github.com/battcycle/battcycle/pkg/history"
	"github.com/battcycle/battcycle/pkg/powersource"
	"github.com/battcycle/battcycle/pkg/smc"
	"github.com/battcycle/battcycle/pkg/types"
	"github.com/battcycle/battcycle/pkg/utils/ptr"
	"github.com/battcycle/battcycle/pkg/version"
)

type fakeSMC struct {
	vals map[string]smc.Val
}

func newFakeSMC() *fakeSMC {
	v := smc.Val{Key: "CH0B", DataSize: 1, DataType: 0x68657820} // "hex "
	return &fakeSMC{vals: map[string]smc.Val{"CH0B": v}}
}

func (f *fakeSMC) Read(key string) (smc.Val, error) {
	if _, err := smc.PackKey(key); err != nil {
		return smc.Val{}, err
	}
	v, ok := f.vals[key]
	if !ok {
		return smc.Val{}, pkgerrors.Wrap(smc.ErrKeyRead, key)
	}
	return v, nil
}

func (f *fakeSMC) ReadKey(key string, buf []byte) (int, error) {
	v, err := f.Read(key)
	if err != nil {
		return 0, err
	}
	return copy(buf, v.Payload()), nil
}

func (f *fakeSMC) WriteKey(key string, hexValue string) error {
	v, err := f.Read(key)
	if err != nil {
		return err
	}
	data, err := smc.DecodeHex(hexValue)
	if err != nil {
		return err
	}
	if uint32(len(data)) != v.DataSize {
		return smc.ErrSizeMismatch
	}
	copy(v.Bytes[:], data)
	f.vals[key] = v
	return nil
}

type fakeStatus struct{}

func (fakeStatus) Status() cycle.Status {
	return cycle.Status{State: cycle.StateDischarging, Ticks: 3}
}

type fakeHistory struct {
	gotLimit int
}

func (h *fakeHistory) Recent(limit int) ([]history.Reading, error) {
	h.gotLimit = limit
	return []history.Reading{{ChargingEnabled: true}}, nil
}

func newTestServer(t *testing.T, allowWrite bool) (*Server, *fakeSMC, *fakeHistory) {
	t.Helper()

	conf := config.NewFileFromConfig(&config.RawFileConfig{AllowSMCWrite: ptr.To(allowWrite)}, "")
	kv := newFakeSMC()
	hist := &fakeHistory{}

	s := New(Options{
		Config: conf,
		SMC:    kv,
		Fetch: func() powersource.BatteryInfo {
			return powersource.BatteryInfo{
				CurrentCapacity: ptr.To(2500),
				MaxCapacity:     ptr.To(5000),
				DesignCapacity:  ptr.To(5000),
			}
		},
		SystemCharge: func() (float64, error) { return 49.5, nil },
		Status:       fakeStatus{},
		History:      hist,
	})
	return s, kv, hist
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestGetBattery(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	w := do(t, s, http.MethodGet, "/battery", "")
	require.Equal(t, http.StatusOK, w.Code)

	var r types.BatteryReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	assert.InDelta(t, 50.0, *r.Percentage, 0.001)
	assert.InDelta(t, 100.0, *r.Health, 0.001)
	assert.InDelta(t, 49.5, *r.SystemCharge, 0.001)
	assert.Nil(t, r.Info.CycleCount)
}

func TestGetSMCKey(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	w := do(t, s, http.MethodGet, "/smc/CH0B", "")
	require.Equal(t, http.StatusOK, w.Code)
	var v types.SMCValue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, types.SMCValue{Key: "CH0B", Type: "hex ", Size: 1, Hex: "00"}, v)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/smc/ZZZZ", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/smc/TOOLONG", "").Code)
}

func TestSetSMCKey(t *testing.T) {
	s, _, _ := newTestServer(t, false)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodPut, "/smc/CH0B", "02").Code)

	s, kv, _ := newTestServer(t, true)
	assert.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/smc/CH0B", "02\n").Code)
	assert.Equal(t, byte(0x02), kv.vals["CH0B"].Bytes[0])

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/smc/CH0B", "0002").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/smc/CH0B", "zz").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/smc/ZZZZ", "00").Code)
}

func TestGetHistory(t *testing.T) {
	s, _, hist := newTestServer(t, false)

	w := do(t, s, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultHistoryLimit, hist.gotLimit)

	w = do(t, s, http.MethodGet, "/history?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, hist.gotLimit)

	var readings []history.Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &readings))
	assert.Len(t, readings, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/history?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/history?limit=abc", "").Code)
}

func TestUnavailableSources(t *testing.T) {
	s := New(Options{SMC: newFakeSMC()})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/status", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/history", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/config", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodPut, "/smc/CH0B", "00").Code)
}

func TestGetStatusConfigVersion(t *testing.T) {
	s, _, _ := newTestServer(t, true)

	w := do(t, s, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st cycle.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, cycle.StateDischarging, st.State)
	assert.Equal(t, 3, st.Ticks)

	w = do(t, s, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rc config.RawFileConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rc))
	assert.True(t, *rc.AllowSMCWrite)
	assert.Equal(t, 95, *rc.MaxCharge)

	w = do(t, s, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	var v string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, version.Version, v)
}
