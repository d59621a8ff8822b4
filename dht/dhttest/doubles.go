// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dhttest provides lightweight test doubles for the
// collaborator interfaces the dht package consumes.
package dhttest

import "code.hybscloud.com/distfs/dht"

// Subvol is a minimal Subvolume implementation for tests.
type Subvol string

func (s Subvol) Name() string { return string(s) }

// Attrs is a minimal in-memory AttrStore implementation for tests.
type Attrs map[string][]byte

func (a Attrs) Get(key string) ([]byte, bool) {
	v, ok := a[key]
	return v, ok
}

// InodeContext is a minimal in-memory InodeContext implementation
// backed by a plain map, with no eviction policy.
type InodeContext struct {
	layouts map[uint64]*dht.Layout
}

// NewInodeContext returns an empty InodeContext.
func NewInodeContext() *InodeContext {
	return &InodeContext{layouts: make(map[uint64]*dht.Layout)}
}

func (c *InodeContext) SetLayout(inode uint64, l *dht.Layout) {
	c.layouts[inode] = l
}

func (c *InodeContext) GetLayout(inode uint64) (*dht.Layout, bool) {
	l, ok := c.layouts[inode]
	return l, ok
}
