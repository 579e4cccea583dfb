package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Check value of the Castagnoli polynomial for "123456789".
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))

	h := NewCRC32C()
	_, _ = h.Write([]byte("12345"))
	_, _ = h.Write([]byte("6789"))
	assert.Equal(t, uint32(0xE3069283), h.Sum32())
}

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify([]byte("123456789"), 0xE3069283))

	err := Verify([]byte("123456788"), 0xE3069283)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.ErrorContains(t, err, "want e3069283")
}
