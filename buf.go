// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import (
	"sync"
	"sync/atomic"
)

// Iobuf is one allocatable page: the unit consumers get from a Pool.
// It belongs to exactly one Arena, unless it was allocated standalone
// (arena == nil), in which case freePtr holds the base of the
// allocation to release on final Unref.
//
// ref == 0 means the page is passive (on its arena's free stack);
// ref > 0 means active. mu protects only the refcount-to-zero / list
// transition; ptr and pageSize never change after construction and
// may be read without a lock.
type Iobuf struct {
	mu  sync.Mutex
	ref atomic.Int32

	arena *Arena
	index int32 // index into arena.bufs; -1 for standalone

	ptr      []byte
	freePtr  []byte // non-nil only for standalone allocations
	pageSize int
}

// Bytes returns the usable memory region for this page. The returned
// slice is valid until the page's refcount reaches zero.
func (iob *Iobuf) Bytes() []byte {
	return iob.ptr
}

// PageSize returns the page's usable size in bytes.
func (iob *Iobuf) PageSize() int {
	return iob.pageSize
}

// Ref increments iob's refcount and returns iob. Callers must already
// hold a reference; Ref never races with the final Unref because a
// holder of a ref guarantees the count cannot be concurrently zeroed.
func Ref(iob *Iobuf) *Iobuf {
	iob.ref.Add(1)
	return iob
}
