package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battcycle/battcycle/pkg/utils/ptr"
)

func TestDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, 79, f.TargetHealth())
	assert.Equal(t, 95, f.MaxCharge())
	assert.Equal(t, 5, f.MinCharge())
	assert.Equal(t, time.Minute, f.Interval())
	assert.True(t, f.PreventSleep())
	assert.Equal(t, DefaultHistoryDB, f.HistoryDB())
	assert.False(t, f.AllowNonRootAccess())
	assert.False(t, f.AllowSMCWrite())
	assert.NoError(t, f.Validate())
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 95, f.MaxCharge())
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := NewFile(path)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "battcycle.json")
	f := NewFileFromConfig(&RawFileConfig{TargetHealth: ptr.To(70)}, path)

	require.NoError(t, f.SetChargeRange(20, 80))
	require.NoError(t, f.SetInterval(30*time.Second))
	f.SetAllowSMCWrite(true)
	require.NoError(t, f.Save())

	g, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 70, g.TargetHealth())
	assert.Equal(t, 20, g.MinCharge())
	assert.Equal(t, 80, g.MaxCharge())
	assert.Equal(t, 30*time.Second, g.Interval())
	assert.True(t, g.AllowSMCWrite())
	// unset values keep their defaults
	assert.True(t, g.PreventSleep())
}

func TestSetters(t *testing.T) {
	f := NewFileFromConfig(nil, "")

	tests := []struct {
		name    string
		apply   func() error
		wantErr bool
	}{
		{"target ok", func() error { return f.SetTargetHealth(50) }, false},
		{"target zero", func() error { return f.SetTargetHealth(0) }, true},
		{"target above 100", func() error { return f.SetTargetHealth(101) }, true},
		{"range ok", func() error { return f.SetChargeRange(0, 100) }, false},
		{"range inverted", func() error { return f.SetChargeRange(80, 20) }, true},
		{"range equal", func() error { return f.SetChargeRange(50, 50) }, true},
		{"range negative", func() error { return f.SetChargeRange(-1, 50) }, true},
		{"range above 100", func() error { return f.SetChargeRange(10, 101) }, true},
		{"interval ok", func() error { return f.SetInterval(time.Second) }, false},
		{"interval too short", func() error { return f.SetInterval(500 * time.Millisecond) }, true},
		{"interval fractional", func() error { return f.SetInterval(1500 * time.Millisecond) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.apply()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	// failed setters leave previous values in place
	assert.Equal(t, 50, f.TargetHealth())
	assert.Equal(t, 0, f.MinCharge())
	assert.Equal(t, 100, f.MaxCharge())
	assert.Equal(t, time.Second, f.Interval())
}

func TestValidateRejectsFileValues(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{MinCharge: ptr.To(96)}, "")
	assert.ErrorIs(t, f.Validate(), ErrInvalid)
}

func TestRawFromConfig(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 60, *raw.IntervalSeconds)
	assert.Equal(t, 79, *raw.TargetHealth)

	_, err = NewRawFileConfigFromConfig(nil)
	assert.Error(t, err)
}
