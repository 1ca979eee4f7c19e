//go:build !darwin

package smc

type unsupportedDriver struct{}

func newPlatformDriver() Driver {
	return unsupportedDriver{}
}

func (unsupportedDriver) Open() (Conn, error) {
	return nil, ErrUnsupported
}
