package smc

import (
	"errors"
	"sync"
)

type fakeKey struct {
	dataType string
	bytes    []byte
}

// fakeDriver is an in-memory SMC that answers the same commands the kernel does.
type fakeDriver struct {
	mu       sync.Mutex
	keys     map[string]*fakeKey
	order    []string
	failOpen bool
	opened   int
	closed   int
	writes   int
	calls    []Command
}

func newFakeDriver(keys map[string]*fakeKey) *fakeDriver {
	d := &fakeDriver{keys: keys}
	for k := range keys {
		d.order = append(d.order, k)
	}
	return d
}

func (d *fakeDriver) Open() (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failOpen {
		return nil, errors.New("no such service")
	}
	d.opened++
	return &fakeConn{d: d}, nil
}

type fakeConn struct {
	d *fakeDriver
}

func (c *fakeConn) Call(in *KeyData) (*KeyData, error) {
	d := c.d
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, Command(in.Data8))
	out := &KeyData{Key: in.Key}

	switch Command(in.Data8) {
	case CmdReadIndex:
		if int(in.Data32) >= len(d.order) {
			out.Result = 0x84
			return out, nil
		}
		out.Key, _ = PackKey(d.order[in.Data32])
		return out, nil
	}

	k, ok := d.keys[UnpackKey(in.Key)]
	if !ok {
		out.Result = 0x84
		return out, nil
	}

	switch Command(in.Data8) {
	case CmdReadKeyInfo:
		out.KeyInfo.DataSize = uint32(len(k.bytes))
		out.KeyInfo.DataType, _ = PackKey(k.dataType)
	case CmdReadBytes:
		copy(out.Bytes[:], k.bytes)
	case CmdWriteBytes:
		if in.KeyInfo.DataSize != uint32(len(k.bytes)) {
			out.Result = 0x85
			return out, nil
		}
		d.writes++
		k.bytes = append([]byte(nil), in.Bytes[:in.KeyInfo.DataSize]...)
	default:
		return nil, errors.New("unknown command")
	}

	return out, nil
}

func (c *fakeConn) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.closed++
	return nil
}
