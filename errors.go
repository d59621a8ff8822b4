// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import "errors"

// Sentinel errors returned by the pool and iobref APIs. Wrapping at
// call sites uses github.com/pkg/errors so that errors.Is still
// matches these sentinels.
var (
	// ErrOutOfMemory is returned when an arena or standalone
	// allocation fails.
	ErrOutOfMemory = errors.New("iobuf: out of memory")

	// ErrNoSpace is returned by Iobref.Add when the iobref's backing
	// array has reached its maximum capacity.
	ErrNoSpace = errors.New("iobuf: iobref has no space left")

	// ErrClosed is returned by Get, Get2, GetPageAligned, Copy and Trim
	// when invoked after Destroy.
	ErrClosed = errors.New("iobuf: pool is destroyed")
)
