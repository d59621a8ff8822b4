// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dht

import (
	"slices"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
)

// HashInvalid is the sentinel commit_hash value meaning "no consensus
// across the entries that contributed to this layout."
const HashInvalid uint32 = 0xFFFFFFFF

// Entry is one (subvolume, range) partition of the 32-bit hash space.
// [Start, Stop] is inclusive on both ends.
type Entry struct {
	Subvol     Subvolume
	Start      uint32
	Stop       uint32
	CommitHash uint32
	Err        int32 // 0 means no error; otherwise a syscall.Errno value or -1
}

// Layout partitions the 32-bit hash space over a set of subvolumes for
// one directory. Entries are populated by Merge as per-brick replies
// arrive, then sorted and inspected by ComputeAnomalies/Normalize before
// being installed into an InodeContext.
type Layout struct {
	hashType   HashType
	commitHash uint32
	preset     bool
	ref        atomic.Int32

	entries []Entry
}

// New allocates a Layout with count empty entries and a single
// reference, ready to be populated by Merge.
func New(count int, hashType HashType) (*Layout, error) {
	if count < 0 {
		return nil, errors.Wrap(ErrOutOfMemory, "negative entry count")
	}
	l := &Layout{
		hashType: hashType,
		entries:  make([]Entry, count),
	}
	l.ref.Store(1)
	return l, nil
}

// HashType returns the layout's current hash type. MergeFromDisk may
// promote this from DM to DMUser.
func (l *Layout) HashType() HashType { return l.hashType }

// CommitHash returns the layout-wide commit hash consensus, or
// HashInvalid if the contributing bricks disagreed.
func (l *Layout) CommitHash() uint32 { return l.commitHash }

// Entries returns the layout's entries. The returned slice aliases the
// layout's own storage and must not be mutated by callers outside this
// package.
func (l *Layout) Entries() []Entry { return l.entries }

// IsPreset reports whether l is a shared, immortal per-subvolume
// layout created by NewPresetRegistry.
func (l *Layout) IsPreset() bool { return l.preset }

// Ref increments l's refcount and returns l. A no-op for preset
// layouts, which are immune to refcounting.
func (l *Layout) Ref() *Layout {
	if l.preset {
		return l
	}
	l.ref.Add(1)
	return l
}

// Unref decrements l's refcount. It is an error to unref a preset
// layout. The final unref simply drops the layout; Go's collector
// reclaims the backing array once unreachable.
func (l *Layout) Unref() error {
	if l.preset {
		return ErrPresetUnref
	}
	l.ref.Add(-1)
	return nil
}

// Search returns the subvolume whose entry contains hash(name), and
// true. If no entry matches, it returns (nil, false) and logs a
// warning; this is not treated as an error, mirroring the original
// layout search's "no subvolume" sentinel.
func (l *Layout) Search(hasher Hasher, name string) (Subvolume, bool) {
	h, err := hasher.Hash(l.hashType, name)
	if err != nil {
		log.Warnw("hash computation failed during layout search", "name", name, "error", err)
		return nil, false
	}
	for i := range l.entries {
		e := &l.entries[i]
		if e.Start <= h && h <= e.Stop {
			return e.Subvol, true
		}
	}
	log.Warnw("no subvolume found for hash", "name", name, "hash", h)
	return nil, false
}

// HasSubvol reports whether subvol names any entry in l.
func (l *Layout) HasSubvol(subvol Subvolume) bool {
	for i := range l.entries {
		if l.entries[i].Subvol != nil && l.entries[i].Subvol.Name() == subvol.Name() {
			return true
		}
	}
	return false
}

// IndexForSubvol returns the index of the entry naming subvol, or
// ErrSubvolNotInLayout if none does.
func (l *Layout) IndexForSubvol(subvol Subvolume) (int, error) {
	for i := range l.entries {
		if l.entries[i].Subvol != nil && l.entries[i].Subvol.Name() == subvol.Name() {
			return i, nil
		}
	}
	return -1, ErrSubvolNotInLayout
}

// Extract encodes the entry at pos as the 16-byte on-disk blob
// [commit_hash, type, start, stop], all big-endian u32.
func (l *Layout) Extract(pos int) []byte {
	e := &l.entries[pos]
	return encodeDiskEntry(e.CommitHash, uint32(l.hashType), e.Start, e.Stop)
}

// ExtractForSubvol encodes the entry naming subvol the same way as
// Extract.
func (l *Layout) ExtractForSubvol(subvol Subvolume) ([]byte, error) {
	pos, err := l.IndexForSubvol(subvol)
	if err != nil {
		return nil, err
	}
	return l.Extract(pos), nil
}

// MergeFromDisk decodes a 16-byte on-disk blob into the entry at pos.
// An unrecognized type is rejected with ErrInvalidDiskLayout and the
// entry is left untouched; DMUser promotes the layout's own hash type
// ("sticky user override").
func (l *Layout) MergeFromDisk(pos int, raw []byte) error {
	commitHash, hashType, start, stop, err := decodeDiskEntry(raw)
	if err != nil {
		log.Errorw("invalid on-disk layout entry", "pos", pos, "error", err)
		return err
	}
	if hashType == HashTypeDMUser {
		l.hashType = HashTypeDMUser
	}
	e := &l.entries[pos]
	e.CommitHash = commitHash
	e.Start = start
	e.Stop = stop
	return nil
}

// Merge records one brick's reply for the first unassigned entry.
// A non-nil opErr leaves the entry flagged for Anomalies and returns
// success: a single bad brick never fails the whole layout. A missing
// xattr is likewise tolerated, resetting Err to 0.
func (l *Layout) Merge(subvol Subvolume, opErr error, xattr AttrStore) error {
	pos := -1
	for i := range l.entries {
		if l.entries[i].Subvol == nil {
			pos = i
			break
		}
	}
	if pos < 0 {
		return errors.Wrap(ErrOutOfMemory, "layout has no free entry for merge")
	}
	e := &l.entries[pos]
	e.Subvol = subvol

	if opErr != nil {
		e.Err = errnoOf(opErr)
		return nil
	}
	e.Err = 0

	raw, ok := xattr.Get(diskLayoutXattrKey)
	if !ok {
		return nil
	}
	if err := l.MergeFromDisk(pos, raw); err != nil {
		return err
	}

	if l.commitHash == 0 {
		l.commitHash = e.CommitHash
	} else if l.commitHash != e.CommitHash {
		l.commitHash = HashInvalid
	}
	return nil
}

// diskLayoutXattrKey is the attribute name under which a brick's
// layout fragment is stored, mirroring the original trusted.* xattr.
const diskLayoutXattrKey = "trusted.glusterfs.dht"

func errnoOf(err error) int32 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int32(errno)
	}
	return -1
}

// Sort orders entries by Start, with ties among non-participating
// (Start == Stop == 0) entries broken by Stop so they cluster before
// any real range. Equal starts among real entries keep their relative
// order (stable by insertion), per the engine's tie-break policy.
func (l *Layout) Sort() {
	slices.SortStableFunc(l.entries, entryRangeCmp)
}

func entryRangeCmp(x, y Entry) int {
	xZero := x.Start == 0 && x.Stop == 0
	yZero := y.Start == 0 && y.Stop == 0
	if xZero != yZero {
		if xZero {
			return -1
		}
		return 1
	}
	if xZero {
		if x.Stop < y.Stop {
			return -1
		}
		if x.Stop > y.Stop {
			return 1
		}
		return 0
	}
	if x.Start < y.Start {
		return -1
	}
	if x.Start > y.Start {
		return 1
	}
	return 0
}

// SortVolname orders entries lexicographically by subvolume name.
func (l *Layout) SortVolname() {
	slices.SortStableFunc(l.entries, func(x, y Entry) int {
		var xn, yn string
		if x.Subvol != nil {
			xn = x.Subvol.Name()
		}
		if y.Subvol != nil {
			yn = y.Subvol.Name()
		}
		switch {
		case xn < yn:
			return -1
		case xn > yn:
			return 1
		default:
			return 0
		}
	})
}

// Anomalies classifies every entry's error state and reports holes and
// overlaps in the range-sorted partition. Call Sort first; Anomalies
// does not sort on its own.
type Anomalies struct {
	Missing  int
	Down     int
	NoSpace  int
	Misc     int
	Holes    int
	Overlaps int
}

// ComputeAnomalies scans l's entries (already range-sorted) and fills an
// Anomalies report, mirroring dht_layout_anomalies.
func (l *Layout) ComputeAnomalies() Anomalies {
	var a Anomalies
	if len(l.entries) == 0 {
		a.Holes++
		return a
	}

	lastStop := int64(l.entries[0].Start) - 1
	sawReal := false

	for i := range l.entries {
		e := &l.entries[i]
		switch {
		case e.Err == -1 || e.Err == int32(syscall.ENOENT) || e.Err == int32(syscall.ESTALE):
			a.Missing++
			continue
		case e.Err == int32(syscall.ENOTCONN):
			a.Down++
			continue
		case e.Err == int32(syscall.ENOSPC):
			a.NoSpace++
			continue
		case e.Err == 0 && e.Start == e.Stop:
			continue
		case e.Err != 0:
			a.Misc++
			continue
		}

		sawReal = true
		if lastStop+1 < int64(e.Start) {
			a.Holes++
		} else if lastStop+1 > int64(e.Start) {
			a.Overlaps++
		}
		lastStop = int64(e.Stop)
	}

	if !sawReal || lastStop != int64(0xFFFFFFFF) {
		a.Holes++
	}
	return a
}

// MissingDirs returns the number of entries that need to be recreated
// on their brick: either err == ENOENT, or a degenerate entry (err ==
// -1 with Start == Stop == 0). This mirrors dht_layout_missing_dirs,
// which is narrower than and independent of the Missing bucket
// ComputeAnomalies reports (that bucket also counts ESTALE and any
// non-degenerate -1 entry, used only to decide anomaly severity, not
// the recreate count).
func (l *Layout) MissingDirs() int {
	var n int
	for i := range l.entries {
		e := &l.entries[i]
		if e.Err == int32(syscall.ENOENT) || (e.Err == -1 && e.Start == 0 && e.Stop == 0) {
			n++
		}
	}
	return n
}

// Normalize sorts by range, computes anomalies, and returns -1 if any
// hole or overlap was found (caller should trigger self-heal);
// otherwise it returns the count of missing directories via
// MissingDirs (zero or positive, meaning "recreate on some bricks").
func (l *Layout) Normalize() int {
	l.Sort()
	a := l.ComputeAnomalies()
	if a.Holes > 0 || a.Overlaps > 0 {
		return -1
	}
	return l.MissingDirs()
}

// DirMismatch compares the in-memory entry for subvol against its
// on-disk blob in xattr. It returns 1 if they differ or subvol is
// absent from the layout, -1 if the blob itself is missing despite a
// non-empty in-memory range, and 0 if they agree.
func (l *Layout) DirMismatch(subvol Subvolume, xattr AttrStore) int {
	pos, err := l.IndexForSubvol(subvol)
	if err != nil {
		return 1
	}
	e := &l.entries[pos]

	raw, ok := xattr.Get(diskLayoutXattrKey)
	if !ok {
		if e.Start != 0 || e.Stop != 0 {
			return -1
		}
		return 0
	}

	commitHash, _, start, stop, err := decodeDiskEntry(raw)
	if err != nil {
		return 1
	}
	if start != e.Start || stop != e.Stop || commitHash != e.CommitHash {
		return 1
	}
	return 0
}
