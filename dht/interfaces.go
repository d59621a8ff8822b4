// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dht

// Subvolume is an opaque back-end brick participating in a
// distributed volume. The engine only ever compares subvolumes by
// Name; it never dials or otherwise touches the underlying transport.
type Subvolume interface {
	Name() string
}

// AttrStore is the opaque per-entry extended-attribute dictionary
// fetched from a brick's lookup/getxattr reply. Keys address a raw
// byte blob; a missing key is reported by ok == false, not an error.
type AttrStore interface {
	Get(key string) (raw []byte, ok bool)
}

// InodeContext stores the single current Layout for a directory
// inode. The engine never holds per-inode state itself; callers
// supply an InodeContext implementation backed by whatever they use
// to track open inodes.
type InodeContext interface {
	SetLayout(inode uint64, l *Layout)
	GetLayout(inode uint64) (*Layout, bool)
}
