// Package abi implements the linear-memory calling convention shared by the
// guest export shims and the host adapter: a (ptr, len) pair packed into a
// single uint64, pointer in the high bits.
package abi

import "fmt"

// PtrHighBits is the shift that places the pointer in a packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen splits a packed value read from the other side of the
// boundary. A null pointer with a non-zero length is reported as an error.
func UnpackPtrLen(packed uint64) (ptr, length uint32, err error) {
	ptr = uint32(packed >> PtrHighBits)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		return 0, 0, fmt.Errorf("abi: null pointer (0x0) with non-zero length (%d)", length)
	}
	return ptr, length, nil
}
