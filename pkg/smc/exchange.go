package smc

import (
	"encoding/binary"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// KeyReadWriter reads and writes SMC keys. Every call is self-contained.
type KeyReadWriter interface {
	// Read returns the full value of key.
	Read(key string) (Val, error)
	// ReadKey copies up to len(buf) bytes of the value of key into buf and
	// returns the number of bytes copied.
	ReadKey(key string, buf []byte) (int, error)
	// WriteKey writes a hex-encoded value to key. The decoded value must be
	// exactly as long as the current value of the key.
	WriteKey(key string, hexValue string) error
}

var _ KeyReadWriter = &Exchange{}

// Exchange talks to the SMC through a Driver. It keeps no connection and no
// key metadata between calls: each call opens its own connection and closes
// it before returning.
type Exchange struct {
	driver Driver
}

// New returns an Exchange using driver.
func New(driver Driver) *Exchange {
	return &Exchange{driver: driver}
}

// Default returns an Exchange using the platform driver.
func Default() *Exchange {
	return New(DefaultDriver())
}

// Read reads the full value of key.
func (e *Exchange) Read(key string) (Val, error) {
	var v Val
	err := e.withConn(func(conn Conn) error {
		var err error
		v, err = readVal(conn, key)
		return err
	})
	return v, err
}

// ReadKey reads key into buf. If buf is shorter than the value, the value is
// truncated silently.
func (e *Exchange) ReadKey(key string, buf []byte) (int, error) {
	v, err := e.Read(key)
	if err != nil {
		return 0, err
	}

	return copy(buf, v.Payload()), nil
}

// WriteKey writes hexValue to key after reading the key to learn its size.
func (e *Exchange) WriteKey(key string, hexValue string) error {
	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": hexValue,
	}).Trace("Trying to write to SMC")

	err := e.withConn(func(conn Conn) error {
		cur, err := readVal(conn, key)
		if err != nil {
			return err
		}

		data, err := DecodeHex(hexValue)
		if err != nil {
			return err
		}

		if uint32(len(data)) != cur.DataSize {
			return pkgerrors.Wrapf(ErrSizeMismatch, "key %s holds %d bytes, got %d", key, cur.DataSize, len(data))
		}

		in := &KeyData{
			Key:     mustPack(key),
			Data8:   uint8(CmdWriteBytes),
			KeyInfo: KeyInfo{DataSize: cur.DataSize},
		}
		copy(in.Bytes[:], data)

		out, err := conn.Call(in)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to write key %s", key)
		}
		if out.Result != 0 {
			return pkgerrors.Wrapf(ErrCall, "write key %s: driver result 0x%02x", key, out.Result)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": hexValue,
	}).Trace("Write to SMC succeed")

	return nil
}

// KeyCount returns the number of keys the SMC exposes, read from #KEY.
func (e *Exchange) KeyCount() (uint32, error) {
	v, err := e.Read(KeyCountKey)
	if err != nil {
		return 0, err
	}

	p := v.Payload()
	if len(p) != 4 {
		return 0, pkgerrors.Errorf("incorrect data length %d!=4", len(p))
	}

	return binary.BigEndian.Uint32(p), nil
}

// KeyAt returns the name of the key at index i.
func (e *Exchange) KeyAt(i uint32) (string, error) {
	var key string
	err := e.withConn(func(conn Conn) error {
		out, err := conn.Call(&KeyData{
			Data8:  uint8(CmdReadIndex),
			Data32: i,
		})
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to read key at index %d", i)
		}
		if out.Result != 0 {
			return pkgerrors.Wrapf(ErrKeyRead, "key at index %d: driver result 0x%02x", i, out.Result)
		}
		key = UnpackKey(out.Key)
		return nil
	})
	return key, err
}

// withConn runs fn on a fresh connection, closing it on every path.
func (e *Exchange) withConn(fn func(conn Conn) error) error {
	conn, err := e.driver.Open()
	if err != nil {
		if pkgerrors.Is(err, ErrUnsupported) || pkgerrors.Is(err, ErrOpen) {
			return err
		}
		return pkgerrors.Wrap(ErrOpen, err.Error())
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close smc connection")
		}
	}()

	return fn(conn)
}

// readVal asks the driver for the size and type of key, then for its bytes.
func readVal(conn Conn, key string) (Val, error) {
	logrus.WithFields(logrus.Fields{
		"key": key,
	}).Trace("Trying to read from SMC")

	packed, err := PackKey(key)
	if err != nil {
		return Val{}, err
	}

	info, err := conn.Call(&KeyData{
		Key:   packed,
		Data8: uint8(CmdReadKeyInfo),
	})
	if err != nil {
		return Val{}, pkgerrors.Wrapf(ErrKeyRead, "key info %s: %v", key, err)
	}
	if info.Result != 0 {
		return Val{}, pkgerrors.Wrapf(ErrKeyRead, "key info %s: driver result 0x%02x", key, info.Result)
	}

	size := info.KeyInfo.DataSize
	if size > MaxDataSize {
		return Val{}, pkgerrors.Wrapf(ErrKeyRead, "key %s reports %d bytes, more than %d", key, size, MaxDataSize)
	}

	out, err := conn.Call(&KeyData{
		Key:     packed,
		Data8:   uint8(CmdReadBytes),
		KeyInfo: KeyInfo{DataSize: size},
	})
	if err != nil {
		return Val{}, pkgerrors.Wrapf(ErrKeyRead, "key %s: %v", key, err)
	}
	if out.Result != 0 {
		return Val{}, pkgerrors.Wrapf(ErrKeyRead, "key %s: driver result 0x%02x", key, out.Result)
	}

	v := Val{
		Key:      key,
		DataSize: size,
		DataType: info.KeyInfo.DataType,
		Bytes:    out.Bytes,
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": v.String(),
	}).Trace("Load from SMC succeed")

	return v, nil
}

// mustPack is only used after readVal has validated key.
func mustPack(key string) uint32 {
	packed, err := PackKey(key)
	if err != nil {
		panic(err)
	}
	return packed
}
