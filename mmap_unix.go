// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package iobuf

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mmapAnon maps a fresh anonymous, private region of the given size,
// the Go equivalent of iobuf_arena's mmap(..., MAP_ANONYMOUS, ...).
func mmapAnon(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, errors.Wrap(ErrOutOfMemory, err.Error())
	}
	return b, nil
}

// munmapAnon releases a region obtained from mmapAnon.
func munmapAnon(b []byte) error {
	if b == nil {
		return nil
	}
	return unix.Munmap(b)
}
