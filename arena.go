// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import "container/list"

// arenaListState records which of a size class's three lists an arena
// currently lives on.
type arenaListState int

const (
	arenaStateArenas arenaListState = iota // has free (passive) pages
	arenaStateFilled                       // no free pages
	arenaStatePurge                        // fully free, candidate for Trim
)

// Arena is one OS-backed memory region subdivided into page_size
// pages, all belonging to a single size class. Instead of the
// original's intrusive passive/active linked lists, free pages are
// tracked as a stack of indices into bufs: this avoids aliasing a
// pointer between an Iobuf and the Arena slice that owns it, which
// would otherwise move under reallocation.
type Arena struct {
	pool     *Pool
	classIdx int

	base      []byte
	pageSize  int
	pageCount int

	bufs    []Iobuf
	passive []int32 // stack of free indices into bufs

	activeCnt int
	maxActive int
	allocCnt  uint64

	state arenaListState
	elem  *list.Element
}

func newArena(classIdx, pageSize, nominalArenaSize int) (*Arena, error) {
	pageCount := (nominalArenaSize + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	total := pageCount * pageSize

	base, err := mmapAnon(total)
	if err != nil {
		return nil, err
	}

	a := &Arena{
		classIdx:  classIdx,
		base:      base,
		pageSize:  pageSize,
		pageCount: pageCount,
		bufs:      make([]Iobuf, pageCount),
		passive:   make([]int32, pageCount),
	}
	for i := 0; i < pageCount; i++ {
		off := i * pageSize
		a.bufs[i] = Iobuf{
			arena:    a,
			index:    int32(i),
			ptr:      base[off : off+pageSize : off+pageSize],
			pageSize: pageSize,
		}
		a.passive[i] = int32(i)
	}
	return a, nil
}

func (a *Arena) passiveEmpty() bool {
	return len(a.passive) == 0
}

func (a *Arena) fullyPassive() bool {
	return a.activeCnt == 0
}

// takePassive pops a free page off the arena, marks it active, and
// returns it with a fresh refcount of 1. Callers must hold the pool
// mutex.
func (a *Arena) takePassive() *Iobuf {
	n := len(a.passive)
	idx := a.passive[n-1]
	a.passive = a.passive[:n-1]
	a.activeCnt++
	if a.activeCnt > a.maxActive {
		a.maxActive = a.activeCnt
	}
	a.allocCnt++

	iob := &a.bufs[idx]
	iob.ref.Store(1)
	return iob
}

// putPassive returns a page to the free stack. Callers must hold the
// pool mutex.
func (a *Arena) putPassive(index int32) {
	a.passive = append(a.passive, index)
	a.activeCnt--
}

func (a *Arena) unmap() error {
	return munmapAnon(a.base)
}
