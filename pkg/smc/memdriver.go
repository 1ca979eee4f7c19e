package smc

import (
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// mockDataType is the type tag reported for every in-memory key, matching
// gosmc's mock connection.
const mockDataType = "hex_"

// driver results for missing keys and rejected writes
const (
	resultKeyNotFound  = 0x84
	resultBadArguments = 0x89
)

// memDriver is an in-memory SMC that answers the same commands as the
// kernel driver.
type memDriver struct {
	mu   sync.Mutex
	keys map[string][]byte
}

func newMemDriver(prefill map[string][]byte) *memDriver {
	d := &memDriver{keys: make(map[string][]byte, len(prefill))}
	for k, v := range prefill {
		if _, err := PackKey(k); err != nil {
			panic(err)
		}
		if len(v) > MaxDataSize {
			panic(pkgerrors.Errorf("mock value of %s is %d bytes, more than %d", k, len(v), MaxDataSize))
		}
		d.keys[k] = append([]byte(nil), v...)
	}
	return d
}

func (d *memDriver) Open() (Conn, error) {
	return memConn{d: d}, nil
}

type memConn struct {
	d *memDriver
}

func (c memConn) Call(in *KeyData) (*KeyData, error) {
	d := c.d
	d.mu.Lock()
	defer d.mu.Unlock()

	out := &KeyData{Key: in.Key}

	if Command(in.Data8) == CmdReadIndex {
		names := make([]string, 0, len(d.keys))
		for k := range d.keys {
			names = append(names, k)
		}
		sort.Strings(names)
		if int(in.Data32) >= len(names) {
			out.Result = resultKeyNotFound
			return out, nil
		}
		out.Key, _ = PackKey(names[in.Data32])
		return out, nil
	}

	key := UnpackKey(in.Key)
	val, ok := d.keys[key]
	if !ok {
		out.Result = resultKeyNotFound
		return out, nil
	}

	switch Command(in.Data8) {
	case CmdReadKeyInfo:
		out.KeyInfo.DataSize = uint32(len(val))
		out.KeyInfo.DataType, _ = PackKey(mockDataType)
	case CmdReadBytes:
		copy(out.Bytes[:], val)
	case CmdWriteBytes:
		if in.KeyInfo.DataSize != uint32(len(val)) {
			out.Result = resultBadArguments
			return out, nil
		}
		d.keys[key] = append([]byte(nil), in.Bytes[:in.KeyInfo.DataSize]...)
	default:
		return nil, pkgerrors.Errorf("unknown command %d", in.Data8)
	}

	return out, nil
}

func (memConn) Close() error { return nil }
