package inode

import (
	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/common"
)

func (ip *Inode) freeIndex(op *Op, index uint64) {
	if ip.blks[index] != common.NULLBNUM {
		op.FreeBlock(ip.blks[index])
		ip.blks[index] = common.NULLBNUM
	}
}

// Free releases every block ip refers to and writes back the record as
// a free inode.
func (ip *Inode) Free(op *Op) {
	util.DPrintf(1, "Free %v\n", ip)
	for _, bn := range ip.IndirectEntries(op) {
		if bn != common.NULLBNUM {
			op.FreeBlock(bn)
		}
	}
	for i := uint64(0); i < NBLKINO; i++ {
		ip.freeIndex(op, i)
	}
	ip.Valid = false
	ip.Size = 0
	ip.WriteInode(op)
}
