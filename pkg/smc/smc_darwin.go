package smc

import (
	"github.com/charlie0129/gosmc"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ KeyReadWriter = &GosmcExchange{}

// GosmcExchange implements KeyReadWriter on top of gosmc. Like Exchange, it
// opens and closes a connection for every call.
type GosmcExchange struct {
	newConn func() gosmc.Connection
}

// NewGosmc returns a KeyReadWriter backed by gosmc and the real SMC.
func NewGosmc() KeyReadWriter {
	return &GosmcExchange{
		newConn: func() gosmc.Connection { return gosmc.New() },
	}
}

// NewMock returns a KeyReadWriter backed by gosmc's in-memory SMC with
// prefill values.
func NewMock(prefillValues map[string][]byte) KeyReadWriter {
	conn := gosmc.NewMockConnection()

	for key, value := range prefillValues {
		err := conn.Write(key, value)
		if err != nil {
			panic(err)
		}
	}

	return &GosmcExchange{
		newConn: func() gosmc.Connection { return conn },
	}
}

// Read reads a value from SMC.
func (g *GosmcExchange) Read(key string) (Val, error) {
	if _, err := PackKey(key); err != nil {
		return Val{}, err
	}

	var v Val
	err := g.withConn(func(conn gosmc.Connection) error {
		raw, err := conn.Read(key)
		if err != nil {
			return pkgerrors.Wrapf(ErrKeyRead, "key %s: %v", key, err)
		}
		if len(raw.Bytes) > MaxDataSize {
			return pkgerrors.Wrapf(ErrKeyRead, "key %s reports %d bytes, more than %d", key, len(raw.Bytes), MaxDataSize)
		}

		v = Val{Key: key, DataSize: uint32(len(raw.Bytes))}
		if len(raw.DataType) == 4 {
			v.DataType, _ = PackKey(raw.DataType)
		}
		copy(v.Bytes[:], raw.Bytes)
		return nil
	})
	if err != nil {
		return Val{}, err
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": v.String(),
	}).Trace("Load from SMC succeed")

	return v, nil
}

// ReadKey copies the value of key into buf, truncating silently.
func (g *GosmcExchange) ReadKey(key string, buf []byte) (int, error) {
	v, err := g.Read(key)
	if err != nil {
		return 0, err
	}
	return copy(buf, v.Payload()), nil
}

// WriteKey writes a hex value to SMC, after checking it against the current
// size of the key.
func (g *GosmcExchange) WriteKey(key string, hexValue string) error {
	if _, err := PackKey(key); err != nil {
		return err
	}

	return g.withConn(func(conn gosmc.Connection) error {
		cur, err := conn.Read(key)
		if err != nil {
			return pkgerrors.Wrapf(ErrKeyRead, "key %s: %v", key, err)
		}

		data, err := DecodeHex(hexValue)
		if err != nil {
			return err
		}

		if len(data) != len(cur.Bytes) {
			return pkgerrors.Wrapf(ErrSizeMismatch, "key %s holds %d bytes, got %d", key, len(cur.Bytes), len(data))
		}

		if err := conn.Write(key, data); err != nil {
			return pkgerrors.Wrapf(ErrCall, "write key %s: %v", key, err)
		}

		logrus.WithFields(logrus.Fields{
			"key": key,
			"val": hexValue,
		}).Trace("Write to SMC succeed")

		return nil
	})
}

func (g *GosmcExchange) withConn(fn func(conn gosmc.Connection) error) error {
	conn := g.newConn()
	if err := conn.Open(); err != nil {
		return pkgerrors.Wrap(ErrOpen, err.Error())
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close smc connection")
		}
	}()

	return fn(conn)
}
