package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
		want   uint64
	}{
		{
			name:   "typical values",
			ptr:    0x12345678,
			length: 0xABCDEF00,
			want:   (uint64(0x12345678) << PtrHighBits) | uint64(0xABCDEF00),
		},
		{
			name:   "zero pointer zero length",
			ptr:    0,
			length: 0,
			want:   0,
		},
		{
			name:   "max pointer",
			ptr:    0xFFFFFFFF,
			length: 1,
			want:   (uint64(0xFFFFFFFF) << PtrHighBits) | 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackPtrLen(tt.ptr, tt.length)
			assert.Equal(t, tt.want, packed, "packed value mismatch")

			gotPtr, gotLen, err := UnpackPtrLen(packed)
			require.NoError(t, err)
			assert.Equal(t, tt.ptr, gotPtr, "unpacked pointer mismatch")
			assert.Equal(t, tt.length, gotLen, "unpacked length mismatch")
		})
	}
}

func TestPackPtrLen_PanicsOnNullPointerWithLength(t *testing.T) {
	assert.Panics(t, func() {
		PackPtrLen(0, 100)
	}, "expected panic for null pointer with non-zero length")
}

func TestUnpackPtrLen(t *testing.T) {
	ptr, length, err := UnpackPtrLen(PackPtrLen(1024, 16))
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), ptr)
	assert.Equal(t, uint32(16), length)

	ptr, length, err = UnpackPtrLen(0)
	require.NoError(t, err)
	assert.Zero(t, ptr)
	assert.Zero(t, length)
}

func TestUnpackPtrLen_RejectsNullPointerWithLength(t *testing.T) {
	ptr, length, err := UnpackPtrLen(uint64(42))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null pointer")
	assert.Zero(t, ptr)
	assert.Zero(t, length)
}

func BenchmarkPackUnpackRoundtrip(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ptr, length, err := UnpackPtrLen(PackPtrLen(0x12345678, 256))
		_, _, _ = ptr, length, err
	}
}
