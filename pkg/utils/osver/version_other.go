//go:build !darwin

package osver

func systemVersion() Version {
	return Version{}
}
