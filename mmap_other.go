// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !unix

package iobuf

// mmapAnon falls back to a plain heap allocation on non-unix targets;
// the arena/page/refcount bookkeeping above it is unchanged, only the
// backing storage differs.
func mmapAnon(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// munmapAnon is a no-op on the heap-backed fallback; the slice is
// reclaimed by the garbage collector once unreachable.
func munmapAnon(b []byte) error {
	return nil
}
