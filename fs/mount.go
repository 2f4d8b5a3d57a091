package fs

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/alloc"
	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/inode"
	"github.com/mit-pdos/go-inodefs/super"
	"github.com/mit-pdos/go-inodefs/util/stats"
)

// Fs is a mounted file system. It owns the allocation bitmap, which
// exists only in memory and is rebuilt from the inode table by Mount.
type Fs struct {
	mu      *sync.RWMutex // protects everything below
	mounted bool
	op      *inode.Op
	stats   *stats.Ops
}

// mkSuper computes the geometry for a device of sz blocks. Every
// superblock field must fit its 32-bit on-disk slot.
func mkSuper(sz uint64) (*super.FsSuper, error) {
	if sz < common.MINBLKS {
		return nil, fmt.Errorf("%d blocks: %w", sz, ErrDeviceTooSmall)
	}
	if sz > math.MaxUint32 {
		return nil, fmt.Errorf("%d blocks do not fit 32-bit block numbers", sz)
	}
	fs := super.MkFsSuper(sz)
	if fs.NInode > math.MaxUint32 {
		return nil, fmt.Errorf("%d blocks: %d inodes do not fit 32 bits", sz, fs.NInode)
	}
	if fs.DataStart() >= fs.Nblocks {
		return nil, fmt.Errorf("no room for data blocks (%v): %w", fs, ErrDeviceTooSmall)
	}
	return fs, nil
}

func format(d disk.Disk) error {
	fs, err := mkSuper(d.Size())
	if err != nil {
		return err
	}
	fs.Format(d)
	util.DPrintf(1, "Format: %v\n", fs)
	return nil
}

// mkBalloc rebuilds the allocation bitmap: block 0, the inode table,
// and every block a valid inode refers to.
func mkBalloc(d disk.Disk, fs *super.FsSuper) (*alloc.Alloc, uint64) {
	balloc := alloc.MkAlloc(fs.DataStart(), fs.Nblocks)
	for bn := common.Bnum(0); bn < fs.DataStart(); bn++ {
		balloc.MarkUsed(bn)
	}
	op := inode.MkOp(d, fs, balloc)
	var ninode uint64
	inode.ScanInodes(op, func(ip *inode.Inode) {
		ninode++
		for _, bn := range ip.Blocks(op) {
			balloc.MarkUsed(bn)
		}
	})
	return balloc, ninode
}

// Mount reads the superblock of d and rebuilds the allocation bitmap.
// Only one mount may exist per process.
func Mount(d disk.Disk) (*Fs, error) {
	mnt.mu.Lock()
	defer mnt.mu.Unlock()
	if mnt.fs != nil {
		return nil, ErrAlreadyMounted
	}
	fs, err := super.ReadSuper(d)
	if err != nil {
		return nil, err
	}
	balloc, ninode := mkBalloc(d, fs)
	util.DPrintf(1, "Mount: %v: %d inodes, %d free blocks\n", fs, ninode, balloc.NumFree())
	st := &Fs{
		mu:      new(sync.RWMutex),
		mounted: true,
		op:      inode.MkOp(d, fs, balloc),
		stats:   mkOpStats(),
	}
	mnt.fs = st
	return st, nil
}

// Unmount flushes the device and invalidates st; later calls on st
// fail with ErrNotMounted.
func (st *Fs) Unmount() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.mounted {
		return ErrNotMounted
	}
	st.op.Disk.Barrier()
	st.mounted = false

	mnt.mu.Lock()
	if mnt.fs == st {
		mnt.fs = nil
	}
	mnt.mu.Unlock()
	util.DPrintf(1, "Unmount\n")
	return nil
}

func (st *Fs) Super() super.FsSuper {
	return *st.op.Super
}

func (st *Fs) NumFree() uint64 {
	return st.op.Balloc.NumFree()
}

// Bitmap returns the blocks marked used, in increasing order.
func (st *Fs) Bitmap() []common.Bnum {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.op.Balloc.Used()
}

func (st *Fs) WriteOpStats(w io.Writer) {
	st.stats.WriteTable(w)
}

func (st *Fs) ResetOpStats() {
	st.stats.Reset()
}
