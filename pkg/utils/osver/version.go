// Package osver reports the macOS version the program runs on.
package osver

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	cachedVersion Version
	initOnce      sync.Once
)

// Version is a macOS version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// TahoeKeys is the first release whose firmware is expected to use the
// CHTE/CHIE charging keys.
var TahoeKeys = Version{Major: 15, Minor: 7}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Get returns the running system version, cached after the first call.
// It is zero on other platforms.
func Get() Version {
	initOnce.Do(func() {
		cachedVersion = systemVersion()
	})
	return cachedVersion
}

// Parse reads "major.minor" or "major.minor.patch".
func Parse(version string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version format: %s", version)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version component %q in %s", p, version)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than other.
func (v Version) Compare(other Version) int {
	for _, d := range [3]int{v.Major - other.Major, v.Minor - other.Minor, v.Patch - other.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// IsAtLeast checks the running system against major.minor.patch.
func IsAtLeast(major, minor, patch int) bool {
	return Get().AtLeast(Version{Major: major, Minor: minor, Patch: patch})
}
