package smc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackKey(t *testing.T) {
	tests := []struct {
		key     string
		want    uint32
		wantErr bool
	}{
		{key: "#KEY", want: 0x234b4559},
		{key: "CH0B", want: 0x43483042},
		{key: "flt ", want: 0x666c7420},
		{key: "CH0", wantErr: true},
		{key: "CH0BB", wantErr: true},
		{key: "CH\x000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := PackKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.key, UnpackKey(got))
		})
	}
}

func TestKeyDataLayout(t *testing.T) {
	d := &KeyData{
		Key:     0x43484245,
		Data8:   uint8(CmdWriteBytes),
		Data32:  7,
		KeyInfo: KeyInfo{DataSize: 4, DataType: 0x75693332, DataAttributes: 0xd4},
	}
	d.Bytes[0] = 0x01
	d.Bytes[31] = 0xff

	b, err := d.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, KeyDataSize)

	assert.Equal(t, []byte{0x45, 0x42, 0x48, 0x43}, b[0:4])
	assert.Equal(t, []byte{4, 0, 0, 0}, b[28:32])
	assert.Equal(t, byte(0xd4), b[36])
	assert.Equal(t, byte(CmdWriteBytes), b[42])
	assert.Equal(t, []byte{7, 0, 0, 0}, b[44:48])
	assert.Equal(t, byte(0x01), b[48])
	assert.Equal(t, byte(0xff), b[79])

	var got KeyData
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, *d, got)

	assert.Error(t, got.UnmarshalBinary(b[:40]))
}

func TestValPayload(t *testing.T) {
	v := Val{Key: "BUIC", DataSize: 1, DataType: 0x75693820}
	v.Bytes[0] = 80
	v.Bytes[1] = 0xff

	assert.Equal(t, []byte{80}, v.Payload())
	assert.Equal(t, "ui8 ", v.TypeString())
	assert.Equal(t, "BUIC [ui8 ] 1 bytes: 50", v.String())
}
