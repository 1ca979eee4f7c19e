// Package powermgmt holds a power-management assertion that keeps the system
// awake while a long-running task is active.
package powermgmt

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// SleepGuard prevents and allows system sleep.
type SleepGuard interface {
	PreventSleep() error
	AllowSleep() error
}

// Assertion is a SleepGuard backed by a single named system assertion.
// Calls are idempotent.
type Assertion struct {
	name    string
	details string

	mu   sync.Mutex
	held bool
	id   assertionID
}

var _ SleepGuard = &Assertion{}

// NewAssertion returns an Assertion that will register itself as name.
func NewAssertion(name, details string) *Assertion {
	return &Assertion{name: name, details: details}
}

// PreventSleep creates the assertion if it is not held yet.
func (a *Assertion) PreventSleep() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.held {
		return nil
	}

	id, err := createAssertion(a.name, a.details)
	if err != nil {
		return err
	}
	a.id = id
	a.held = true

	logrus.WithField("name", a.name).Debug("sleep assertion created")
	return nil
}

// AllowSleep releases the assertion if it is held.
func (a *Assertion) AllowSleep() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.held {
		return nil
	}

	err := releaseAssertion(a.id)
	a.held = false
	if err == nil {
		logrus.WithField("name", a.name).Debug("sleep assertion released")
	}
	return err
}

// Held reports whether the assertion is active.
func (a *Assertion) Held() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.held
}

// Nop never touches power management.
type Nop struct{}

func (Nop) PreventSleep() error { return nil }
func (Nop) AllowSleep() error   { return nil }
