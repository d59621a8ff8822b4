// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dht_test

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/distfs/dht"
	"code.hybscloud.com/distfs/dht/dhttest"
)

func TestLayoutSearchFindsOwningSubvol(t *testing.T) {
	l, err := dht.New(4, dht.HashTypeDM)
	require.NoError(t, err)

	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0, Stop: 0x3FFFFFFF}
	entries[1] = dht.Entry{Subvol: dhttest.Subvol("b"), Start: 0x40000000, Stop: 0x7FFFFFFF}
	entries[2] = dht.Entry{Subvol: dhttest.Subvol("c"), Start: 0x80000000, Stop: 0xBFFFFFFF}
	entries[3] = dht.Entry{Subvol: dhttest.Subvol("d"), Start: 0xC0000000, Stop: 0xFFFFFFFF}

	sv, ok := l.Search(fixedHasher{h: 0x90000000}, "somefile")
	require.True(t, ok)
	require.Equal(t, "c", sv.Name())
}

func TestLayoutSearchMiss(t *testing.T) {
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0, Stop: 0x0FFFFFFF}

	_, ok := l.Search(fixedHasher{h: 0x90000000}, "somefile")
	require.False(t, ok)
}

func TestAnomaliesHoleDetection(t *testing.T) {
	l, err := dht.New(2, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0, Stop: 0x3FFFFFFF}
	entries[1] = dht.Entry{Subvol: dhttest.Subvol("b"), Start: 0x50000000, Stop: 0xFFFFFFFF}

	l.Sort()
	a := l.ComputeAnomalies()
	require.Equal(t, 1, a.Holes)
	require.Equal(t, 0, a.Overlaps)
}

func TestAnomaliesOverlapAndMissing(t *testing.T) {
	l, err := dht.New(3, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0, Stop: 0x7FFFFFFF}
	entries[1] = dht.Entry{Subvol: dhttest.Subvol("b"), Start: 0x70000000, Stop: 0xFFFFFFFF}
	entries[2] = dht.Entry{Subvol: dhttest.Subvol("c"), Start: 0, Stop: 0, Err: int32(syscall.ENOENT)}

	l.Sort()
	a := l.ComputeAnomalies()
	require.Equal(t, 0, a.Holes)
	require.Equal(t, 1, a.Overlaps)
	require.Equal(t, 1, a.Missing)

	require.Equal(t, -1, l.Normalize())
}

func TestNormalizeReturnsMissingDirsCount(t *testing.T) {
	// A fully-covered, non-overlapping range plus two degenerate
	// (Start == Stop == 0) errored entries that carry no range of
	// their own. Normalize must return MissingDirs' narrower count
	// (ENOENT, or degenerate -1) rather than ComputeAnomalies' broader
	// Missing bucket, which also counts ESTALE.
	l, err := dht.New(5, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0, Stop: 0x3FFFFFFF}
	entries[1] = dht.Entry{Subvol: dhttest.Subvol("b"), Start: 0x40000000, Stop: 0x7FFFFFFF}
	entries[2] = dht.Entry{Subvol: dhttest.Subvol("c"), Start: 0x80000000, Stop: 0xFFFFFFFF}
	entries[3] = dht.Entry{Subvol: dhttest.Subvol("d"), Start: 0, Stop: 0, Err: int32(syscall.ESTALE)}
	entries[4] = dht.Entry{Subvol: dhttest.Subvol("e"), Start: 0, Stop: 0, Err: int32(syscall.ENOENT)}

	l.Sort()
	a := l.ComputeAnomalies()
	require.Equal(t, 0, a.Holes)
	require.Equal(t, 0, a.Overlaps)
	require.Equal(t, 2, a.Missing) // ESTALE entry + ENOENT entry

	require.Equal(t, 1, l.MissingDirs()) // only the ENOENT entry
	require.Equal(t, 1, l.Normalize())
}

func TestAnomalies_WrapAtTopOfSpace(t *testing.T) {
	// Open Question (b): the top-of-space check compares prev_stop
	// against 0xFFFFFFFF directly rather than via wraparound
	// arithmetic, so a layout whose last entry actually reaches the
	// top of the space must report zero holes.
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0, Stop: 0xFFFFFFFF}

	l.Sort()
	a := l.ComputeAnomalies()
	require.Equal(t, 0, a.Holes)
	require.Equal(t, 0, a.Overlaps)
}

func TestExtractMergeFromDiskRoundtrip(t *testing.T) {
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0x10, Stop: 0x20, CommitHash: 0xCAFE}

	blob := l.Extract(0)
	require.Len(t, blob, 16)

	l2, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	require.NoError(t, l2.MergeFromDisk(0, blob))

	e := l2.Entries()[0]
	require.Equal(t, uint32(0x10), e.Start)
	require.Equal(t, uint32(0x20), e.Stop)
	require.Equal(t, uint32(0xCAFE), e.CommitHash)
}

func TestMergeFromDiskRejectsBadLength(t *testing.T) {
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	require.ErrorIs(t, l.MergeFromDisk(0, []byte{1, 2, 3}), dht.ErrInvalidDiskLayout)
}

func TestMergeFromDiskPromotesDMUser(t *testing.T) {
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	blob := make([]byte, 16)
	blob[7] = byte(dht.HashTypeDMUser) // big-endian type word, low byte
	require.NoError(t, l.MergeFromDisk(0, blob))
	require.Equal(t, dht.HashTypeDMUser, l.HashType())
}

func TestMergeCommitHashConsensus(t *testing.T) {
	l, err := dht.New(3, dht.HashTypeDM)
	require.NoError(t, err)

	blobAgree := encodeBlob(0xCAFE, 0, 0x10, 0x20)
	blobDisagree := encodeBlob(0xBABE, 0, 0x30, 0x40)

	require.NoError(t, l.Merge(dhttest.Subvol("a"), nil, dhttest.Attrs{"trusted.glusterfs.dht": blobAgree}))
	require.NoError(t, l.Merge(dhttest.Subvol("b"), nil, dhttest.Attrs{"trusted.glusterfs.dht": blobAgree}))
	require.Equal(t, uint32(0xCAFE), l.CommitHash())

	require.NoError(t, l.Merge(dhttest.Subvol("c"), nil, dhttest.Attrs{"trusted.glusterfs.dht": blobDisagree}))
	require.Equal(t, dht.HashInvalid, l.CommitHash())
}

func TestMergeTolerantOfBrickError(t *testing.T) {
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)

	require.NoError(t, l.Merge(dhttest.Subvol("a"), syscall.ENOTCONN, dhttest.Attrs{}))
	require.Equal(t, int32(syscall.ENOTCONN), l.Entries()[0].Err)
}

func TestMergeMissingXattrIsNotFatal(t *testing.T) {
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	require.NoError(t, l.Merge(dhttest.Subvol("a"), nil, dhttest.Attrs{}))
	require.Equal(t, int32(0), l.Entries()[0].Err)
}

func TestDirMismatch(t *testing.T) {
	l, err := dht.New(1, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0x10, Stop: 0x20, CommitHash: 0xCAFE}

	matching := dhttest.Attrs{"trusted.glusterfs.dht": encodeBlob(0xCAFE, 0, 0x10, 0x20)}
	require.Equal(t, 0, l.DirMismatch(dhttest.Subvol("a"), matching))

	mismatched := dhttest.Attrs{"trusted.glusterfs.dht": encodeBlob(0xCAFE, 0, 0x10, 0x21)}
	require.Equal(t, 1, l.DirMismatch(dhttest.Subvol("a"), mismatched))

	require.Equal(t, -1, l.DirMismatch(dhttest.Subvol("a"), dhttest.Attrs{}))
	require.Equal(t, 1, l.DirMismatch(dhttest.Subvol("nope"), dhttest.Attrs{}))
}

func TestSortIdempotentAndVolnameRoundtrip(t *testing.T) {
	l, err := dht.New(3, dht.HashTypeDM)
	require.NoError(t, err)
	entries := l.Entries()
	entries[0] = dht.Entry{Subvol: dhttest.Subvol("c"), Start: 0x80000000, Stop: 0xFFFFFFFF}
	entries[1] = dht.Entry{Subvol: dhttest.Subvol("a"), Start: 0, Stop: 0x3FFFFFFF}
	entries[2] = dht.Entry{Subvol: dhttest.Subvol("b"), Start: 0x40000000, Stop: 0x7FFFFFFF}

	l.Sort()
	first := append([]dht.Entry(nil), l.Entries()...)
	l.Sort()
	require.Equal(t, first, l.Entries())

	l.SortVolname()
	l.Sort()
	require.Equal(t, first, l.Entries())
}

func TestPresetLayoutUnrefRejected(t *testing.T) {
	reg := dht.NewPresetRegistry([]dht.Subvolume{dhttest.Subvol("a")})
	l := reg.For(dhttest.Subvol("a"))
	require.NotNil(t, l)
	require.True(t, l.IsPreset())
	require.ErrorIs(t, l.Unref(), dht.ErrPresetUnref)
}

func encodeBlob(commitHash, _, start, stop uint32) []byte {
	l, _ := dht.New(1, dht.HashTypeDM)
	entries := l.Entries()
	entries[0].CommitHash = commitHash
	entries[0].Start = start
	entries[0].Stop = stop
	return l.Extract(0)
}

type fixedHasher struct{ h uint32 }

func (f fixedHasher) Hash(dht.HashType, string) (uint32, error) { return f.h, nil }
