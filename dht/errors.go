// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dht maps names to subvolumes through a partitioned 32-bit
// hash space and merges per-brick layout fragments into a single
// consistent view.
package dht

import "errors"

// Sentinel errors returned by the layout API. Call sites that add
// context wrap these with github.com/pkg/errors so that errors.Is
// keeps matching.
var (
	// ErrOutOfMemory is returned when a new layout cannot be allocated.
	ErrOutOfMemory = errors.New("dht: out of memory")

	// ErrInvalidDiskLayout is returned by MergeFromDisk when the blob
	// length is wrong or the encoded hash type is unrecognized.
	ErrInvalidDiskLayout = errors.New("dht: invalid on-disk layout entry")

	// ErrHashFailed is returned when the injected Hasher fails.
	ErrHashFailed = errors.New("dht: hash computation failed")

	// ErrSubvolNotInLayout is returned by IndexForSubvol when no entry
	// names the given subvolume.
	ErrSubvolNotInLayout = errors.New("dht: subvolume not present in layout")

	// ErrPresetUnref is returned by Unref when called on a preset
	// layout, which is shared and immortal.
	ErrPresetUnref = errors.New("dht: cannot unref a preset layout")
)
