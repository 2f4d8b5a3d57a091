package inode

import (
	"fmt"

	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/common"
)

const (
	NBLKINO  uint64 = common.NDIRECT + 1 // # blk in an inode's blks array
	INDIRECT uint64 = NBLKINO - 1
)

// Inode is the in-memory copy of one inode record. Methods that change
// it (AllocInode, Write, Free) write the record back before returning.
type Inode struct {
	Inum  common.Inum
	Valid bool
	Size  uint64
	blks  []common.Bnum
}

func MkInode(inum common.Inum) *Inode {
	return &Inode{
		Inum:  inum,
		Valid: true,
		Size:  0,
		blks:  make([]common.Bnum, NBLKINO),
	}
}

func (ip *Inode) String() string {
	return fmt.Sprintf("# %d v %t sz %d %v", ip.Inum, ip.Valid, ip.Size, ip.blks)
}

// Direct returns a copy of the direct block pointers.
func (ip *Inode) Direct() []common.Bnum {
	d := make([]common.Bnum, common.NDIRECT)
	copy(d, ip.blks[:common.NDIRECT])
	return d
}

func (ip *Inode) Indirect() common.Bnum {
	return ip.blks[INDIRECT]
}

func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	var valid uint32
	if ip.Valid {
		valid = 1
	}
	enc.PutInt32(valid)
	enc.PutInt32(uint32(ip.Size))
	for _, bn := range ip.blks {
		enc.PutInt32(uint32(bn))
	}
	return enc.Finish()
}

func Decode(b []byte, inum common.Inum) *Inode {
	dec := marshal.NewDec(b)
	ip := &Inode{Inum: inum, blks: make([]common.Bnum, NBLKINO)}
	ip.Valid = dec.GetInt32() != 0
	ip.Size = uint64(dec.GetInt32())
	for i := range ip.blks {
		ip.blks[i] = common.Bnum(dec.GetInt32())
	}
	return ip
}

// DecodeBnums interprets blk as an indirect block.
func DecodeBnums(blk disk.Block) []common.Bnum {
	dec := marshal.NewDec(blk)
	bnums := make([]common.Bnum, common.NBLKBLK)
	for i := range bnums {
		bnums[i] = common.Bnum(dec.GetInt32())
	}
	return bnums
}

func EncodeBnums(bnums []common.Bnum) disk.Block {
	if uint64(len(bnums)) != common.NBLKBLK {
		panic("EncodeBnums")
	}
	enc := marshal.NewEnc(disk.BlockSize)
	for _, bn := range bnums {
		enc.PutInt32(uint32(bn))
	}
	return enc.Finish()
}

// IndirectEntries returns the entries of ip's indirect block, or nil if
// ip has none (or it lies outside the data region).
func (ip *Inode) IndirectEntries(op *Op) []common.Bnum {
	root := ip.blks[INDIRECT]
	if root == common.NULLBNUM || !op.ValidBlock(root) {
		return nil
	}
	return DecodeBnums(op.ReadBlock(root))
}

// Blocks returns every block ip refers to: its direct blocks, its
// indirect block, and the non-zero entries of the indirect block.
// Pointers outside the data region are skipped.
func (ip *Inode) Blocks(op *Op) []common.Bnum {
	var bnums []common.Bnum
	add := func(bn common.Bnum) {
		if bn == common.NULLBNUM {
			return
		}
		if !op.ValidBlock(bn) {
			util.DPrintf(0, "inode %d: block %d outside data region\n", ip.Inum, bn)
			return
		}
		bnums = append(bnums, bn)
	}
	for _, bn := range ip.blks[:common.NDIRECT] {
		add(bn)
	}
	add(ip.blks[INDIRECT])
	for _, bn := range ip.IndirectEntries(op) {
		add(bn)
	}
	return bnums
}
