//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToInt32(t *testing.T) {
	tests := []struct {
		name    string
		in      int
		want    int32
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"max", math.MaxInt32, math.MaxInt32, false},
		{"min", math.MinInt32, math.MinInt32, false},
		{"too large", math.MaxInt32 + 1, 0, true},
		{"too small", math.MinInt32 - 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntToInt32(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInt64ToInt(t *testing.T) {
	got, err := Int64ToInt(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, got)

	got, err = Int64ToInt(-5)
	require.NoError(t, err)
	assert.Equal(t, -5, got)
}

func TestMulInt(t *testing.T) {
	got, err := MulInt(16, 1024)
	require.NoError(t, err)
	assert.Equal(t, 16384, got)

	got, err = MulInt(0, math.MaxInt)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = MulInt(math.MaxInt/2+1, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = MulInt(-1, 2)
	assert.ErrorIs(t, err, ErrOverflow)
}
