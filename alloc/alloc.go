package alloc

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/mit-pdos/go-journal/util"
)

// Alloc tracks which of the numbers 0..max-1 are in use. Numbers below
// start are never handed out by AllocNum, but can be marked used; the
// file system uses this to reserve the superblock and inode table.
// The bitmap lives only in memory and is rebuilt at mount time.
type Alloc struct {
	mu    *sync.Mutex
	start uint64
	max   uint64
	bits  *bitset.BitSet
}

func MkAlloc(start uint64, max uint64) *Alloc {
	if start > max {
		panic("MkAlloc")
	}
	return &Alloc{
		mu:    new(sync.Mutex),
		start: start,
		max:   max,
		bits:  bitset.New(uint(max)),
	}
}

func (a *Alloc) MarkUsed(n uint64) {
	if n >= a.max {
		panic("MarkUsed")
	}
	a.mu.Lock()
	a.bits.Set(uint(n))
	a.mu.Unlock()
}

func (a *Alloc) IsUsed(n uint64) bool {
	if n >= a.max {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bits.Test(uint(n))
}

// AllocNum returns the lowest free number >= start and marks it used,
// or 0 if there is none.
func (a *Alloc) AllocNum() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.bits.NextClear(uint(a.start))
	if !ok || uint64(n) >= a.max {
		util.DPrintf(5, "AllocNum: full (max %d)\n", a.max)
		return 0
	}
	a.bits.Set(n)
	util.DPrintf(10, "AllocNum -> %d\n", n)
	return uint64(n)
}

func (a *Alloc) FreeNum(n uint64) {
	if n < a.start || n >= a.max {
		panic("FreeNum")
	}
	a.mu.Lock()
	a.bits.Clear(uint(n))
	a.mu.Unlock()
}

func (a *Alloc) NumFree() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.max - uint64(a.bits.Count())
}

func (a *Alloc) Max() uint64 {
	return a.max
}

// Used returns the used numbers in increasing order.
func (a *Alloc) Used() []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var used []uint64
	for i, ok := a.bits.NextSet(0); ok && uint64(i) < a.max; i, ok = a.bits.NextSet(i + 1) {
		used = append(used, uint64(i))
	}
	return used
}
