// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dht

import "math/bits"

// HashType selects which hash construction a Layout's entries were
// assigned under. Only two values are meaningful: DM is the default
// construction; DMUser is a per-directory sticky override recorded by
// a "user.dht.hashtype" style xattr.
type HashType int32

const (
	HashTypeDM HashType = iota
	HashTypeDMUser
)

func (t HashType) String() string {
	if t == HashTypeDMUser {
		return "dm-user"
	}
	return "dm"
}

// Hasher computes the 32-bit hash space position of a name under a
// given HashType. The engine consumes it as an injected dependency so
// that callers may swap in a different construction without touching
// layout logic.
type Hasher interface {
	Hash(t HashType, name string) (uint32, error)
}

// daviesMeyerHasher is the package's default Hasher: a Davies-Meyer
// one-way compression built from a small ARX round function, run once
// per 4-byte block of name, starting from the chaining value 0x9e3779b9.
// DMUser salts the chaining value so the same name hashes differently
// under the two hash types, matching the "sticky user override"
// semantics in MergeFromDisk.
type daviesMeyerHasher struct{}

// NewDaviesMeyerHasher returns the package's default Hasher.
func NewDaviesMeyerHasher() Hasher {
	return daviesMeyerHasher{}
}

func (daviesMeyerHasher) Hash(t HashType, name string) (uint32, error) {
	if len(name) == 0 {
		return 0, ErrHashFailed
	}
	var cv uint32 = 0x9e3779b9
	if t == HashTypeDMUser {
		cv ^= 0x6a09e667
	}
	b := []byte(name)
	for len(b) > 0 {
		var block uint32
		for i := 0; i < 4; i++ {
			block <<= 8
			if i < len(b) {
				block |= uint32(b[i])
			}
		}
		if len(b) >= 4 {
			b = b[4:]
		} else {
			b = nil
		}
		cv = dmCompress(cv, block) ^ cv // feed-forward: the Davies-Meyer step
	}
	return cv, nil
}

// dmCompress is the block-cipher-like round function E(k, x) used by
// the Davies-Meyer construction above: four ARX rounds keyed by block.
func dmCompress(cv, block uint32) uint32 {
	x := cv
	k := block
	for r := 0; r < 4; r++ {
		x += k
		x = bits.RotateLeft32(x, 7)
		x ^= k
		k = bits.RotateLeft32(k, 11) + uint32(r)
	}
	return x
}
