package smc

// Driver opens connections to the SMC.
type Driver interface {
	Open() (Conn, error)
}

// Conn is an open driver connection. Call sends one record and returns the
// driver's answer.
type Conn interface {
	Call(in *KeyData) (*KeyData, error)
	Close() error
}

// DefaultDriver returns the driver for the current platform.
func DefaultDriver() Driver {
	return newPlatformDriver()
}
