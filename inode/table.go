package inode

import (
	"fmt"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/super"
)

// ReadInode returns the record for inum, valid or not.
func ReadInode(op *Op, inum common.Inum) (*Inode, error) {
	if !op.Super.ValidInum(inum) {
		return nil, fmt.Errorf("inode %d: %w", inum, common.ErrInvalidInumber)
	}
	blkno, slot := op.Super.Inum2Addr(inum)
	blk := op.ReadBlock(blkno)
	return Decode(blk[slot*common.INODESZ:(slot+1)*common.INODESZ], inum), nil
}

// GetInode returns the record for inum, which must be in use.
func GetInode(op *Op, inum common.Inum) (*Inode, error) {
	ip, err := ReadInode(op, inum)
	if err != nil {
		return nil, err
	}
	if !ip.Valid {
		return nil, fmt.Errorf("inode %d not in use: %w", inum, common.ErrInvalidInumber)
	}
	return ip, nil
}

func (ip *Inode) WriteInode(op *Op) {
	if !op.Super.ValidInum(ip.Inum) {
		panic("WriteInode")
	}
	blkno, slot := op.Super.Inum2Addr(ip.Inum)
	blk := op.ReadBlock(blkno)
	copy(blk[slot*common.INODESZ:], ip.Encode())
	op.WriteBlock(blkno, blk)
	util.DPrintf(5, "WriteInode %v\n", ip)
}

// DecodeInodeBlock decodes all records of the blkidx-th inode-table
// block.
func DecodeInodeBlock(blk disk.Block, blkidx uint64) []*Inode {
	inodes := make([]*Inode, common.INODEBLK)
	for slot := uint64(0); slot < common.INODEBLK; slot++ {
		off := slot * common.INODESZ
		inodes[slot] = Decode(blk[off:off+common.INODESZ], super.MkInum(blkidx, slot))
	}
	return inodes
}

// ScanInodes calls f on every valid inode, in inumber order.
func ScanInodes(op *Op, f func(ip *Inode)) {
	for blkidx := uint64(0); blkidx < op.Super.NInodeBlk; blkidx++ {
		blk := op.ReadBlock(op.Super.InodeStart() + blkidx)
		for _, ip := range DecodeInodeBlock(blk, blkidx) {
			if ip.Valid {
				f(ip)
			}
		}
	}
}

// AllocInode claims the lowest free inode record and persists it as an
// empty file.
func AllocInode(op *Op) (*Inode, error) {
	for blkidx := uint64(0); blkidx < op.Super.NInodeBlk; blkidx++ {
		blkno := op.Super.InodeStart() + blkidx
		blk := op.ReadBlock(blkno)
		for _, old := range DecodeInodeBlock(blk, blkidx) {
			if old.Valid {
				continue
			}
			ip := MkInode(old.Inum)
			op.Balloc.MarkUsed(blkno)
			ip.WriteInode(op)
			util.DPrintf(1, "AllocInode -> # %v\n", ip.Inum)
			return ip, nil
		}
	}
	return nil, common.ErrInodeTableFull
}
