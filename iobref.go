// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import (
	"math"
	"sync"
	"sync/atomic"
)

// Iobref is a reference-counted collection of Iobuf pages, used to pass
// a scatter/gather write through layers that do not share a single
// page's lifetime. Adding a page to an Iobref takes a new reference on
// it; the page is independently owned until the Iobref itself is
// unreferenced to zero, at which point every contained page is
// unreferenced once.
type Iobref struct {
	_ noCopy

	mu  sync.Mutex
	ref atomic.Int32

	bufs []*Iobuf
}

// NewIobref returns an Iobref with a single reference, empty of pages.
func NewIobref() *Iobref {
	ref := &Iobref{bufs: make([]*Iobuf, 0, 4)}
	ref.ref.Store(1)
	return ref
}

// Add appends iob to the Iobref, taking a new reference on it. Growth
// is geometric (double, capped at math.MaxInt32 entries) so repeated
// Add calls stay amortized O(1).
func (r *Iobref) Add(iob *Iobuf) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.bufs) >= math.MaxInt32 {
		return ErrNoSpace
	}
	if len(r.bufs) == cap(r.bufs) {
		newCap := cap(r.bufs) * 2
		if newCap == 0 {
			newCap = 4
		}
		if newCap > math.MaxInt32 {
			newCap = math.MaxInt32
		}
		grown := make([]*Iobuf, len(r.bufs), newCap)
		copy(grown, r.bufs)
		r.bufs = grown
	}
	r.bufs = append(r.bufs, Ref(iob))
	return nil
}

// Merge appends every page held by from into r, taking a new reference
// on each; pages r already holds are skipped, so no page appears twice.
// from's own reference count is untouched, so the caller retains
// independent ownership of from.
func (r *Iobref) Merge(from *Iobref) error {
	from.mu.Lock()
	srcs := make([]*Iobuf, len(from.bufs))
	copy(srcs, from.bufs)
	from.mu.Unlock()

	for _, iob := range srcs {
		if r.contains(iob) {
			continue
		}
		if err := r.Add(iob); err != nil {
			return err
		}
	}
	return nil
}

func (r *Iobref) contains(iob *Iobuf) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bufs {
		if b == iob {
			return true
		}
	}
	return false
}

// Ref increments r's refcount and returns r.
func (r *Iobref) Ref() *Iobref {
	r.ref.Add(1)
	return r
}

// Unref decrements r's refcount. At zero, every contained page is
// unreferenced once via pool, and r's page list is truncated.
func (r *Iobref) Unref(pool *Pool) {
	if r == nil {
		return
	}
	if r.ref.Add(-1) > 0 {
		return
	}
	r.mu.Lock()
	bufs := r.bufs
	r.bufs = nil
	r.mu.Unlock()

	for _, iob := range bufs {
		pool.Unref(iob)
	}
}

// Clear unreferences every page currently held by r and empties r's
// page list, without affecting r's own refcount; r remains usable for
// further Add calls.
func (r *Iobref) Clear(pool *Pool) {
	r.mu.Lock()
	bufs := r.bufs
	r.bufs = r.bufs[:0]
	r.mu.Unlock()

	for _, iob := range bufs {
		pool.Unref(iob)
	}
}

// Size returns the sum of PageSize across every page currently held by r.
func (r *Iobref) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int
	for _, iob := range r.bufs {
		total += iob.PageSize()
	}
	return total
}
