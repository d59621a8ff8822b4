// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package iobuf implements a process-wide, size-classed memory-region
// pool for network and disk I/O paths.
//
// The pool is partitioned into 32 size classes. Each class owns a set
// of arenas: large anonymous memory mappings subdivided into
// fixed-size pages. Consumers obtain refcounted Iobuf handles (pages)
// through Get/Get2/GetPageAligned, and pin the set of buffers backing
// an in-flight request in an Iobref.
//
// # Size classes
//
// A request for page_size bytes is rounded up to the smallest class
// whose page size is >= page_size, unless page_size exceeds
// LargeThreshold, in which case the page is allocated standalone
// (outside any arena) and never pooled.
//
// # Arena lifecycle
//
//	pool := NewPool(DefaultConfig())
//	iob, err := pool.Get2(4096)  // may lazily mmap a new arena
//	...
//	pool.Unref(iob)              // returns the page to its arena
//	pool.Destroy()               // unmaps everything; only once refs are 0
//
// Arenas move between three lists per class: arenas (has free pages),
// filled (no free pages), and purge (fully free, candidate for the OS
// to reclaim). An arena is unmapped only when Trim or Destroy is
// called, never implicitly during Unref.
//
// # Iobref
//
// Iobref is a refcounted bag of Iobuf references used to pin every
// buffer touched by one request, independent of each buffer's own
// lifetime:
//
//	ref := NewIobref()
//	ref.Add(iob)
//	...
//	ref.Unref(pool) // drops every contained iobuf ref
//
// # Concurrency
//
// A single pool-level mutex serializes arena-list transitions and
// per-class bookkeeping. Each Iobuf carries its own lock, taken only
// during the refcount-to-zero / list-membership transition. Readers of
// an Iobuf's bytes and page size need no lock. There is no cancellation
// support: operations are synchronous, and callers that need timeouts
// build them around the call.
//
// # Dependencies
//
// iobuf depends on:
//   - golang.org/x/sys/unix: anonymous mmap/munmap for arena backing
//     storage
//   - github.com/pkg/errors: wrapping allocation failures with
//     call-site context
//   - go.uber.org/zap: structured debug logging of new arena
//     allocations, off by default (no-op logger)
//   - github.com/xyproto/env/v2: optional environment-variable
//     overrides for pool configuration
package iobuf
