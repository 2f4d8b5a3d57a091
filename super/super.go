package super

import (
	"fmt"

	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-inodefs/common"
)

// FsSuper is the in-memory copy of block 0. It is written once by
// Format and only read afterwards.
type FsSuper struct {
	Magic     uint32
	Nblocks   uint64
	NInodeBlk uint64
	NInode    uint64
}

func MkFsSuper(sz uint64) *FsSuper {
	ninodeblk := sz/10 + 1
	return &FsSuper{
		Magic:     common.MAGIC,
		Nblocks:   sz,
		NInodeBlk: ninodeblk,
		NInode:    ninodeblk * common.INODEBLK,
	}
}

func (fs *FsSuper) String() string {
	return fmt.Sprintf("magic %#x nblocks %d ninodeblk %d ninode %d",
		fs.Magic, fs.Nblocks, fs.NInodeBlk, fs.NInode)
}

func (fs *FsSuper) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(fs.Magic)
	enc.PutInt32(uint32(fs.Nblocks))
	enc.PutInt32(uint32(fs.NInodeBlk))
	enc.PutInt32(uint32(fs.NInode))
	return enc.Finish()
}

func Decode(blk disk.Block) *FsSuper {
	dec := marshal.NewDec(blk)
	fs := &FsSuper{}
	fs.Magic = dec.GetInt32()
	fs.Nblocks = uint64(dec.GetInt32())
	fs.NInodeBlk = uint64(dec.GetInt32())
	fs.NInode = uint64(dec.GetInt32())
	return fs
}

// ReadSuper reads and validates the superblock of d.
func ReadSuper(d disk.Disk) (*FsSuper, error) {
	if d.Size() == 0 {
		return nil, common.ErrDeviceTooSmall
	}
	fs := Decode(d.Read(0))
	if fs.Magic != common.MAGIC {
		return nil, fmt.Errorf("bad magic %#x: %w", fs.Magic, common.ErrInvalidImage)
	}
	if fs.Nblocks > d.Size() || fs.NInodeBlk == 0 ||
		fs.DataStart() >= fs.Nblocks ||
		fs.NInode != fs.NInodeBlk*common.INODEBLK {
		return nil, fmt.Errorf("bad geometry (%v, disk %d): %w",
			fs, d.Size(), common.ErrInvalidImage)
	}
	return fs, nil
}

// Format writes the superblock and zeroes the inode table. Data
// blocks are left alone; they are free until an inode refers to them.
func (fs *FsSuper) Format(d disk.Disk) {
	d.Write(0, fs.Encode())
	zero := make(disk.Block, disk.BlockSize)
	for bn := fs.InodeStart(); bn < fs.DataStart(); bn++ {
		d.Write(bn, zero)
	}
	d.Barrier()
}

func (fs *FsSuper) InodeStart() common.Bnum {
	return 1
}

func (fs *FsSuper) DataStart() common.Bnum {
	return fs.InodeStart() + fs.NInodeBlk
}

func (fs *FsSuper) MaxBnum() common.Bnum {
	return fs.Nblocks
}

func (fs *FsSuper) ValidInum(inum common.Inum) bool {
	if inum == common.NULLINUM {
		return false
	}
	return (uint64(inum)-1)/common.INODEBLK < fs.NInodeBlk
}

// Inum2Addr returns the inode-table block holding inum and the slot
// of inum within that block. Expects fs.ValidInum(inum).
func (fs *FsSuper) Inum2Addr(inum common.Inum) (common.Bnum, uint64) {
	i := uint64(inum) - 1
	return fs.InodeStart() + i/common.INODEBLK, i % common.INODEBLK
}

// MkInum is the inverse of Inum2Addr; blkidx counts from the first
// inode-table block.
func MkInum(blkidx uint64, slot uint64) common.Inum {
	return common.Inum(blkidx*common.INODEBLK + slot + 1)
}
