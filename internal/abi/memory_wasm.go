//go:build wasip1

package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// MaxTotalAllocations is the maximum total memory the host may hold through
// allocate at once. This prevents unbounded growth of linear memory.
const MaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// memoryManager keeps a reference to every slice handed out by allocate so
// the Go GC does not collect it while the host is using it.
var memoryManager = struct {
	sync.Mutex
	ptrs           map[uint32][]byte // ptr -> slice reference
	totalAllocated int
}{
	ptrs: make(map[uint32][]byte),
}

// allocate reserves memory for the host to write call arguments into, or
// for a result the host will read. Panics past MaxTotalAllocations.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.totalAllocated+int(size) > MaxTotalAllocations {
		panic(fmt.Sprintf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, memoryManager.totalAllocated, MaxTotalAllocations))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))

	memoryManager.ptrs[ptr] = buf
	memoryManager.totalAllocated += int(size)

	return ptr
}

// deallocate releases memory returned by allocate. Untracked pointers are
// ignored. Accounting uses the stored length, not size.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, size uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	storedSlice, exists := memoryManager.ptrs[ptr]
	if !exists {
		return
	}

	delete(memoryManager.ptrs, ptr)
	memoryManager.totalAllocated -= len(storedSlice)
	if memoryManager.totalAllocated < 0 {
		memoryManager.totalAllocated = 0
	}
}

// PtrFromBytes copies data into freshly allocated memory and returns the
// packed pointer and length. The host deallocates it after reading.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	ptr := allocate(size)
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	dest := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), len(data))
	copy(dest, data)
	return PackPtrLen(ptr, size)
}

// BytesFromPtr returns a copy of the bytes at ptr. The memory stays owned
// by whoever allocated it.
func BytesFromPtr(ptr, length uint32) []byte {
	if ptr == 0 || length == 0 {
		return nil
	}
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	data := make([]byte, length)
	copy(data, src)
	return data
}
