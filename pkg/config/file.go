package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/utils/ptr"
)

const (
	DefaultPath      = "/etc/battcycle.json"
	DefaultHistoryDB = "/var/lib/battcycle/history.db"
)

var ErrInvalid = pkgerrors.New("invalid configuration")

var (
	defaultFileConfig = &RawFileConfig{
		TargetHealth:       ptr.To(79),
		MaxCharge:          ptr.To(95),
		MinCharge:          ptr.To(5),
		IntervalSeconds:    ptr.To(60),
		PreventSleep:       ptr.To(true),
		HistoryDB:          ptr.To(DefaultHistoryDB),
		AllowNonRootAccess: ptr.To(false),
		// Raw SMC writes over the socket can stop charging for good if misused.
		AllowSMCWrite: ptr.To(false),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

type RawFileConfig struct {
	TargetHealth       *int    `json:"targetHealth,omitempty"`
	MaxCharge          *int    `json:"maxCharge,omitempty"`
	MinCharge          *int    `json:"minCharge,omitempty"`
	IntervalSeconds    *int    `json:"intervalSeconds,omitempty"`
	PreventSleep       *bool   `json:"preventSleep,omitempty"`
	HistoryDB          *string `json:"historyDB,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
	AllowSMCWrite      *bool   `json:"allowSMCWrite,omitempty"`
}

// NewRawFileConfigFromConfig resolves every value of c, defaults included.
func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		TargetHealth:       ptr.To(c.TargetHealth()),
		MaxCharge:          ptr.To(c.MaxCharge()),
		MinCharge:          ptr.To(c.MinCharge()),
		IntervalSeconds:    ptr.To(int(c.Interval() / time.Second)),
		PreventSleep:       ptr.To(c.PreventSleep()),
		HistoryDB:          ptr.To(c.HistoryDB()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		AllowSMCWrite:      ptr.To(c.AllowSMCWrite()),
	}, nil
}

// get returns the value selected by field, falling back to the default.
func get[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if v := field(f.c); v != nil {
		return *v
	}
	return *field(defaultFileConfig)
}

func (f *File) TargetHealth() int {
	return get(f, func(c *RawFileConfig) *int { return c.TargetHealth })
}

func (f *File) MaxCharge() int {
	return get(f, func(c *RawFileConfig) *int { return c.MaxCharge })
}

func (f *File) MinCharge() int {
	return get(f, func(c *RawFileConfig) *int { return c.MinCharge })
}

func (f *File) Interval() time.Duration {
	return time.Duration(get(f, func(c *RawFileConfig) *int { return c.IntervalSeconds })) * time.Second
}

func (f *File) PreventSleep() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.PreventSleep })
}

func (f *File) HistoryDB() string {
	return get(f, func(c *RawFileConfig) *string { return c.HistoryDB })
}

func (f *File) AllowNonRootAccess() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.AllowNonRootAccess })
}

func (f *File) AllowSMCWrite() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.AllowSMCWrite })
}

func (f *File) SetTargetHealth(i int) error {
	if err := validateTarget(i); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.TargetHealth = &i
	return nil
}

// SetChargeRange sets both bounds at once so they are never observed in an
// inconsistent state.
func (f *File) SetChargeRange(lower, upper int) error {
	if err := validateRange(lower, upper); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MinCharge = &lower
	f.c.MaxCharge = &upper
	return nil
}

func (f *File) SetInterval(d time.Duration) error {
	if err := validateInterval(d); err != nil {
		return err
	}

	secs := int(d / time.Second)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.IntervalSeconds = &secs
	return nil
}

func (f *File) SetPreventSleep(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.PreventSleep = &b
}

func (f *File) SetHistoryDB(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.HistoryDB = &path
}

func (f *File) SetAllowNonRootAccess(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) SetAllowSMCWrite(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowSMCWrite = &b
}

func (f *File) Validate() error {
	if err := validateTarget(f.TargetHealth()); err != nil {
		return err
	}
	if err := validateRange(f.MinCharge(), f.MaxCharge()); err != nil {
		return err
	}
	return validateInterval(f.Interval())
}

func validateTarget(i int) error {
	if i < 1 || i > 100 {
		return pkgerrors.Wrapf(ErrInvalid, "target health %d must be between 1 and 100", i)
	}
	return nil
}

func validateRange(lower, upper int) error {
	if lower < 0 || upper > 100 || lower >= upper {
		return pkgerrors.Wrapf(ErrInvalid, "charge range %d-%d must satisfy 0 <= min < max <= 100", lower, upper)
	}
	return nil
}

func validateInterval(d time.Duration) error {
	if d < time.Second {
		return pkgerrors.Wrapf(ErrInvalid, "interval %s must be at least 1s", d)
	}
	if d%time.Second != 0 {
		return pkgerrors.Wrapf(ErrInvalid, "interval %s must be a whole number of seconds", d)
	}
	return nil
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0o755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"targetHealth":       f.TargetHealth(),
		"maxCharge":          f.MaxCharge(),
		"minCharge":          f.MinCharge(),
		"interval":           f.Interval().String(),
		"preventSleep":       f.PreventSleep(),
		"historyDB":          f.HistoryDB(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"allowSMCWrite":      f.AllowSMCWrite(),
	}
}
