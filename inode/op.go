package inode

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/alloc"
	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/super"
)

// Op carries what inode operations need: the device, its layout, and
// the block allocator. Balloc may be nil for read-only use (debug
// dumps).
type Op struct {
	Disk   disk.Disk
	Super  *super.FsSuper
	Balloc *alloc.Alloc
}

func MkOp(d disk.Disk, super *super.FsSuper, balloc *alloc.Alloc) *Op {
	return &Op{Disk: d, Super: super, Balloc: balloc}
}

func (op *Op) ReadBlock(bn common.Bnum) disk.Block {
	return op.Disk.Read(bn)
}

func (op *Op) WriteBlock(bn common.Bnum, blk disk.Block) {
	op.Disk.Write(bn, blk)
}

// ValidBlock reports whether bn lies in the data region.
func (op *Op) ValidBlock(bn common.Bnum) bool {
	return bn >= op.Super.DataStart() && bn < op.Super.MaxBnum()
}

// AllocBlock returns a free data block, or NULLBNUM if the disk is full.
func (op *Op) AllocBlock() common.Bnum {
	bn := op.Balloc.AllocNum()
	util.DPrintf(10, "AllocBlock -> %d\n", bn)
	return bn
}

func (op *Op) FreeBlock(bn common.Bnum) {
	if !op.ValidBlock(bn) {
		util.DPrintf(0, "FreeBlock: ignoring block %d outside data region\n", bn)
		return
	}
	util.DPrintf(10, "FreeBlock %d\n", bn)
	op.Balloc.FreeNum(bn)
}
