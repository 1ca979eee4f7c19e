//go:build !darwin

package powermgmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertionUnsupported(t *testing.T) {
	a := NewAssertion("battcycle", "test")
	assert.Error(t, a.PreventSleep())
	assert.False(t, a.Held())
	assert.NoError(t, a.AllowSleep())

	var n Nop
	assert.NoError(t, n.PreventSleep())
	assert.NoError(t, n.AllowSleep())
}
