// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import (
	"unsafe"

	"code.hybscloud.com/distfs/internal"
)

// CacheLineSize is the CPU L1 cache line size for the current
// architecture, used to pad per-class bookkeeping to avoid false
// sharing between size classes.
const CacheLineSize = internal.CacheLineSize

// alignedAlloc returns a size-byte slice whose start address is
// aligned to align, plus the full backing allocation it was carved
// from (the one to keep alive / hand to the OS allocator's free path).
// This is the standalone-allocation counterpart of an arena page: used
// for GetPageAligned and for any page_size above LargeThreshold.
func alignedAlloc(size, align int) (ptr, base []byte) {
	if align <= 1 {
		b := make([]byte, size)
		return b, b
	}
	b := make([]byte, size+align-1)
	off := alignOffset(b, uintptr(align))
	return b[off : off+size : off+size], b
}

// alignOffset returns the byte offset into b at which b's address
// becomes a multiple of align.
func alignOffset(b []byte, align uintptr) uintptr {
	base := unsafe.Pointer(unsafe.SliceData(b))
	return ((uintptr(base)+align-1)/align)*align - uintptr(base)
}
