// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import "unsafe"

// IoVec represents a scatter/gather I/O descriptor compatible with the
// standard Linux struct iovec. It is used to pass multiple non-contiguous
// user-space buffers to the kernel in a single vectored I/O system call
// (readv, writev, preadv, pwritev, io_uring operations).
//
// Memory layout matches the C struct iovec exactly:
//
//	struct iovec {
//	    void  *iov_base;  // Starting address
//	    size_t iov_len;   // Number of bytes
//	};
type IoVec struct {
	Base *byte  // Starting address of the memory block
	Len  uint64 // Number of bytes to transfer
}

// ToIOVec fills out with the (ptr, page_size) pair backing iob.
// No lock is required: ptr and page_size never change once an Iobuf
// is constructed.
func (iob *Iobuf) ToIOVec(out *IoVec) {
	out.Base = (*byte)(unsafe.Pointer(unsafe.SliceData(iob.ptr)))
	out.Len = uint64(iob.pageSize)
}

// IoVecFromBytesSlice converts a slice of byte slices to a pointer and
// count suitable for syscall or io_uring buffer registration.
func IoVecFromBytesSlice(iov [][]byte) (addr uintptr, n int) {
	if len(iov) == 0 {
		return 0, 0
	}
	vec := make([]IoVec, len(iov))
	for i := range iov {
		vec[i] = IoVec{Base: unsafe.SliceData(iov[i]), Len: uint64(len(iov[i]))}
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(vec))), len(vec)
}

// IoVecAddrLen extracts the raw pointer and length from an IoVec slice
// for direct syscall consumption. Returns (0, 0) for empty or nil
// slices.
func IoVecAddrLen(vec []IoVec) (addr uintptr, n int) {
	if len(vec) == 0 {
		return 0, 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(vec))), len(vec)
}
