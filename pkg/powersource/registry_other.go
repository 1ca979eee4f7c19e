//go:build !darwin

package powersource

type emptyRegistry struct{}

func newPlatformRegistry() Registry {
	return emptyRegistry{}
}

func (emptyRegistry) Snapshot(string, []string) (Properties, error) {
	return nil, ErrServiceNotFound
}
