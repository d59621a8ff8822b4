// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// classState holds the three arena lists for one size class, matching
// the original's arenas/arenas_filled/purge triple: arenas has free
// pages, filled has none, purge is fully-free and a Trim candidate.
type classState struct {
	pageSize   int
	arenaCount int

	arenas list.List
	filled list.List
	purge  list.List

	_ [CacheLineSize]byte // avoid false sharing between adjacent classes
}

// Pool is a size-classed, arena-backed page allocator. A Pool lazily
// mmaps arenas per size class as demand requires and never returns a
// page to the OS except via Trim or Destroy.
//
// All exported methods are safe for concurrent use.
type Pool struct {
	_ noCopy

	cfg Config

	mu        sync.Mutex
	classes   [SizeClassCount]classState
	destroyed bool

	requestMisses atomic.Uint64
	arenaCnt      atomic.Int64
}

// NewPool creates a Pool using cfg. Arenas are created lazily on first
// use of a given page size, never up front.
func NewPool(cfg Config) *Pool {
	cfg = cfg.normalize()
	p := &Pool{cfg: cfg}
	for i := range p.classes {
		p.classes[i].pageSize = classSizeForIndex(i, cfg.MinClassSize)
	}
	return p
}

// Get acquires a page of the pool's configured default size. It is
// equivalent to Get2(cfg.DefaultPageSize).
func (p *Pool) Get() (*Iobuf, error) {
	return p.Get2(p.cfg.DefaultPageSize)
}

// Get2 acquires a page able to hold at least pageSize bytes. Requests
// exceeding LargeThreshold bytes bypass size-classed arenas and are
// allocated standalone, mirroring USE_IOBUF_POOL_IF_SIZE_GREATER_THAN
// in the original allocator.
func (p *Pool) Get2(pageSize int) (*Iobuf, error) {
	if pageSize <= 0 {
		pageSize = p.cfg.DefaultPageSize
	}
	if pageSize > p.cfg.LargeThreshold {
		return p.getStandalone(pageSize, p.cfg.Align)
	}
	idx := classIndex(pageSize, p.cfg.MinClassSize)
	classSize := classSizeForIndex(idx, p.cfg.MinClassSize)
	if classSize < pageSize {
		// Exhausted every class slot below LargeThreshold; fall back
		// rather than silently truncate the caller's request.
		return p.getStandalone(pageSize, p.cfg.Align)
	}
	return p.getFromClass(idx, classSize)
}

// GetPageAligned acquires a standalone page of pageSize bytes aligned
// to align bytes (or cfg.Align if align <= 0). Aligned pages are never
// pooled, mirroring iobuf_get_page_aligned in the original allocator.
func (p *Pool) GetPageAligned(pageSize, align int) (*Iobuf, error) {
	if align <= 0 {
		align = p.cfg.Align
	}
	return p.getStandalone(pageSize, align)
}

func (p *Pool) getFromClass(idx, classSize int) (*Iobuf, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil, ErrClosed
	}

	cs := &p.classes[idx]
	for {
		if front := cs.arenas.Front(); front != nil {
			a := front.Value.(*Arena)
			iob := a.takePassive()
			if a.passiveEmpty() {
				cs.arenas.Remove(front)
				a.state = arenaStateFilled
				a.elem = cs.filled.PushBack(a)
			}
			return iob, nil
		}
		// No arena in this class has a free page; check purge list
		// before minting a new arena, since a purge-listed arena is
		// entirely free and simply needs to move back.
		if front := cs.purge.Front(); front != nil {
			a := front.Value.(*Arena)
			cs.purge.Remove(front)
			a.state = arenaStateArenas
			a.elem = cs.arenas.PushBack(a)
			continue
		}

		a, err := newArena(idx, classSize, p.cfg.ArenaSize)
		if err != nil {
			return nil, errors.Wrap(ErrOutOfMemory, err.Error())
		}
		a.pool = p
		a.state = arenaStateArenas
		a.elem = cs.arenas.PushBack(a)
		cs.arenaCount++
		p.arenaCnt.Add(1)
		log.Debugw("allocated new iobuf arena", "class_size", classSize, "pages", a.pageCount)
	}
}

func (p *Pool) getStandalone(pageSize, align int) (*Iobuf, error) {
	p.mu.Lock()
	destroyed := p.destroyed
	p.mu.Unlock()
	if destroyed {
		return nil, ErrClosed
	}
	p.requestMisses.Add(1)

	ptr, base := alignedAlloc(pageSize, align)
	iob := &Iobuf{
		index:    -1,
		ptr:      ptr,
		freePtr:  base,
		pageSize: pageSize,
	}
	iob.ref.Store(1)
	return iob, nil
}

// Ref increments iob's refcount and returns iob.
func (p *Pool) Ref(iob *Iobuf) *Iobuf {
	return Ref(iob)
}

// Unref decrements iob's refcount. When it reaches zero, a
// standalone page is released immediately and an arena-backed page is
// returned to its arena's free stack; the arena itself moves between
// the arenas/filled/purge lists as its occupancy changes.
func (p *Pool) Unref(iob *Iobuf) {
	if iob == nil {
		return
	}
	if iob.arena == nil {
		if iob.ref.Add(-1) == 0 {
			iob.freePtr = nil
		}
		return
	}

	iob.mu.Lock()
	defer iob.mu.Unlock()
	if iob.ref.Add(-1) > 0 {
		return
	}

	a := iob.arena
	p.mu.Lock()
	defer p.mu.Unlock()

	cs := &p.classes[a.classIdx]
	wasFull := a.passiveEmpty()
	a.putPassive(iob.index)

	if wasFull {
		cs.filled.Remove(a.elem)
		a.state = arenaStateArenas
		a.elem = cs.arenas.PushBack(a)
	}

	if a.fullyPassive() && cs.arenaCount > 1 {
		switch a.state {
		case arenaStateArenas:
			cs.arenas.Remove(a.elem)
		case arenaStateFilled:
			cs.filled.Remove(a.elem)
		default:
			return
		}
		a.state = arenaStatePurge
		a.elem = cs.purge.PushBack(a)
	}
}

// ToIovec fills out with iob's (address, length) pair.
func (p *Pool) ToIovec(iob *Iobuf, out *IoVec) {
	iob.ToIOVec(out)
}

// Copy allocates a new page sized to hold the concatenation of src and
// copies src into it, returning the page wrapped in a fresh Iobref
// that owns the sole reference. It mirrors iobuf_copy in the original
// allocator, generalized from a single buffer to a vector.
func (p *Pool) Copy(src Buffers) (*Iobuf, *Iobref, error) {
	var total int
	for _, b := range src {
		total += len(b)
	}
	iob, err := p.Get2(total)
	if err != nil {
		return nil, nil, err
	}
	var off int
	for _, b := range src {
		off += copy(iob.ptr[off:], b)
	}
	ref := NewIobref()
	if err := ref.Add(iob); err != nil {
		p.Unref(iob)
		return nil, nil, err
	}
	p.Unref(iob)
	return iob, ref, nil
}

// ClassStats reports occupancy for a single size class.
type ClassStats struct {
	PageSize     int
	ArenaCount   int
	FilledCount  int
	PurgeCount   int
	ActivePages  int
	PassivePages int
}

// PoolStats is a point-in-time snapshot of a Pool's occupancy, returned
// by StatsDump.
type PoolStats struct {
	ArenaCount    int64
	RequestMisses uint64
	Classes       []ClassStats
}

// StatsDump returns a snapshot of the pool's current occupancy across
// every non-empty size class.
func (p *Pool) StatsDump() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := PoolStats{
		ArenaCount:    p.arenaCnt.Load(),
		RequestMisses: p.requestMisses.Load(),
	}
	for i := range p.classes {
		cs := &p.classes[i]
		if cs.arenaCount == 0 {
			continue
		}
		cstat := ClassStats{
			PageSize:    cs.pageSize,
			ArenaCount:  cs.arenaCount,
			FilledCount: cs.filled.Len(),
			PurgeCount:  cs.purge.Len(),
		}
		forEachArena(&cs.arenas, func(a *Arena) {
			cstat.ActivePages += a.activeCnt
			cstat.PassivePages += len(a.passive)
		})
		forEachArena(&cs.filled, func(a *Arena) {
			cstat.ActivePages += a.activeCnt
		})
		forEachArena(&cs.purge, func(a *Arena) {
			cstat.PassivePages += len(a.passive)
		})
		stats.Classes = append(stats.Classes, cstat)
	}
	return stats
}

func forEachArena(l *list.List, fn func(*Arena)) {
	for e := l.Front(); e != nil; e = e.Next() {
		fn(e.Value.(*Arena))
	}
}

// Trim unmaps every fully-passive arena sitting on a purge list and
// returns the number of arenas released.
func (p *Pool) Trim() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return 0, ErrClosed
	}

	var n int
	for i := range p.classes {
		cs := &p.classes[i]
		for e := cs.purge.Front(); e != nil; {
			next := e.Next()
			a := e.Value.(*Arena)
			if err := a.unmap(); err != nil {
				return n, err
			}
			cs.purge.Remove(e)
			cs.arenaCount--
			p.arenaCnt.Add(-1)
			n++
			e = next
		}
	}
	return n, nil
}

// Destroy unmaps every arena owned by the pool, regardless of
// occupancy, and marks the pool closed. Further Get calls return
// ErrClosed. Destroy does not validate that every page has been
// unreferenced first; callers must ensure no page is in use.
func (p *Pool) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil
	}
	for i := range p.classes {
		cs := &p.classes[i]
		for _, l := range []*list.List{&cs.arenas, &cs.filled, &cs.purge} {
			for e := l.Front(); e != nil; e = e.Next() {
				if err := e.Value.(*Arena).unmap(); err != nil {
					return err
				}
			}
		}
	}
	p.destroyed = true
	return nil
}
