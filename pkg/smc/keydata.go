package smc

import (
	"encoding/binary"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// KernelIndexSMC is the AppleSMC user client selector used for every call.
const KernelIndexSMC = 2

// Command is the value placed in KeyData.Data8 to tell the driver what to do.
type Command uint8

// Driver commands.
const (
	CmdReadBytes   Command = 5
	CmdWriteBytes  Command = 6
	CmdReadIndex   Command = 8
	CmdReadKeyInfo Command = 9
)

// MaxDataSize is the size of the raw payload buffer in a KeyData record.
const MaxDataSize = 32

// KeyDataSize is the size of the encoded KeyData record, padding included.
const KeyDataSize = 80

// KeyInfo describes the payload of a key.
type KeyInfo struct {
	DataSize       uint32
	DataType       uint32
	DataAttributes uint8
}

// KeyData is the request/response record exchanged with the driver.
//
// Field order and padding follow the driver's structure so MarshalBinary
// produces bytes the kernel accepts as-is.
type KeyData struct {
	Key uint32

	VersMajor    uint8
	VersMinor    uint8
	VersBuild    uint8
	VersReserved uint8
	VersRelease  uint16

	PLimitVersion uint16
	PLimitLength  uint16
	CPUPLimit     uint32
	GPUPLimit     uint32
	MemPLimit     uint32

	KeyInfo KeyInfo

	Result uint8
	Status uint8
	Data8  uint8
	Data32 uint32
	Bytes  [MaxDataSize]byte
}

// byte offsets inside the encoded record
const (
	offKey         = 0
	offVers        = 4
	offVersRelease = 8
	offPLimit      = 12
	offKeyInfo     = 28
	offResult      = 40
	offStatus      = 41
	offData8       = 42
	offData32      = 44
	offBytes       = 48
)

// hostOrder is the byte order of scalar fields in the record. Every Mac
// the driver runs on is little-endian.
var hostOrder = binary.LittleEndian

// MarshalBinary encodes d into the driver's record layout.
func (d *KeyData) MarshalBinary() ([]byte, error) {
	b := make([]byte, KeyDataSize)

	hostOrder.PutUint32(b[offKey:], d.Key)

	b[offVers] = d.VersMajor
	b[offVers+1] = d.VersMinor
	b[offVers+2] = d.VersBuild
	b[offVers+3] = d.VersReserved
	hostOrder.PutUint16(b[offVersRelease:], d.VersRelease)

	hostOrder.PutUint16(b[offPLimit:], d.PLimitVersion)
	hostOrder.PutUint16(b[offPLimit+2:], d.PLimitLength)
	hostOrder.PutUint32(b[offPLimit+4:], d.CPUPLimit)
	hostOrder.PutUint32(b[offPLimit+8:], d.GPUPLimit)
	hostOrder.PutUint32(b[offPLimit+12:], d.MemPLimit)

	hostOrder.PutUint32(b[offKeyInfo:], d.KeyInfo.DataSize)
	hostOrder.PutUint32(b[offKeyInfo+4:], d.KeyInfo.DataType)
	b[offKeyInfo+8] = d.KeyInfo.DataAttributes

	b[offResult] = d.Result
	b[offStatus] = d.Status
	b[offData8] = d.Data8
	hostOrder.PutUint32(b[offData32:], d.Data32)

	copy(b[offBytes:], d.Bytes[:])

	return b, nil
}

// UnmarshalBinary decodes a record produced by the driver.
func (d *KeyData) UnmarshalBinary(b []byte) error {
	if len(b) < KeyDataSize {
		return pkgerrors.Errorf("short key data record: %d < %d bytes", len(b), KeyDataSize)
	}

	d.Key = hostOrder.Uint32(b[offKey:])

	d.VersMajor = b[offVers]
	d.VersMinor = b[offVers+1]
	d.VersBuild = b[offVers+2]
	d.VersReserved = b[offVers+3]
	d.VersRelease = hostOrder.Uint16(b[offVersRelease:])

	d.PLimitVersion = hostOrder.Uint16(b[offPLimit:])
	d.PLimitLength = hostOrder.Uint16(b[offPLimit+2:])
	d.CPUPLimit = hostOrder.Uint32(b[offPLimit+4:])
	d.GPUPLimit = hostOrder.Uint32(b[offPLimit+8:])
	d.MemPLimit = hostOrder.Uint32(b[offPLimit+12:])

	d.KeyInfo.DataSize = hostOrder.Uint32(b[offKeyInfo:])
	d.KeyInfo.DataType = hostOrder.Uint32(b[offKeyInfo+4:])
	d.KeyInfo.DataAttributes = b[offKeyInfo+8]

	d.Result = b[offResult]
	d.Status = b[offStatus]
	d.Data8 = b[offData8]
	d.Data32 = hostOrder.Uint32(b[offData32:])

	copy(d.Bytes[:], b[offBytes:offBytes+MaxDataSize])

	return nil
}

// PackKey packs a 4-character key into the 32-bit form the driver expects,
// character 0 in the most significant byte.
func PackKey(key string) (uint32, error) {
	if len(key) != 4 {
		return 0, pkgerrors.Wrapf(ErrInvalidKey, "key %q must be exactly 4 characters", key)
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x20 || key[i] > 0x7e {
			return 0, pkgerrors.Wrapf(ErrInvalidKey, "key %q contains non-printable byte 0x%02x", key, key[i])
		}
	}

	return binary.BigEndian.Uint32([]byte(key)), nil
}

// UnpackKey is the inverse of PackKey. It is also used to render type tags.
func UnpackKey(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return string(b[:])
}

// Val is the decoded value of one key.
type Val struct {
	Key      string
	DataSize uint32
	DataType uint32
	Bytes    [MaxDataSize]byte
}

// Payload returns the meaningful prefix of Bytes.
func (v Val) Payload() []byte {
	n := v.DataSize
	if n > MaxDataSize {
		n = MaxDataSize
	}
	return v.Bytes[:n]
}

// TypeString renders the type tag, e.g. "ui32" or "flt ".
func (v Val) TypeString() string {
	return UnpackKey(v.DataType)
}

func (v Val) String() string {
	return fmt.Sprintf("%s [%s] %d bytes: %s", v.Key, v.TypeString(), v.DataSize, EncodeHex(v.Payload()))
}
