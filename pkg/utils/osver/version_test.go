package osver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"15.7", Version{15, 7, 0}, false},
		{"26.0.1", Version{26, 0, 1}, false},
		{" 14.2.1\n", Version{14, 2, 1}, false},
		{"15", Version{}, true},
		{"1.2.3.4", Version{}, true},
		{"a.b", Version{}, true},
		{"15.-1", Version{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Version{15, 7, 0}.Compare(Version{15, 7, 0}))
	assert.Equal(t, -1, Version{15, 6, 9}.Compare(Version{15, 7, 0}))
	assert.Equal(t, 1, Version{26, 0, 0}.Compare(Version{15, 7, 3}))
	assert.True(t, Version{26, 0, 1}.AtLeast(TahoeKeys))
	assert.True(t, Version{15, 7, 0}.AtLeast(TahoeKeys))
	assert.False(t, Version{15, 6, 1}.AtLeast(TahoeKeys))
	assert.Equal(t, "26.0.1", Version{26, 0, 1}.String())
}
