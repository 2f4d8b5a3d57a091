// Package fsck scans a file system image independently of a mount and
// reports which blocks it references and any inconsistencies found.
package fsck

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/inode"
	"github.com/mit-pdos/go-inodefs/super"
)

type Report struct {
	Super *super.FsSuper

	// number of valid inodes
	Inodes uint64
	// data blocks referenced by some valid inode
	Referenced *roaring.Bitmap
	// blocks referenced more than once
	Duplicates *roaring.Bitmap
	Problems   []string
}

func (r *Report) problem(format string, a ...interface{}) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, a...))
}

// OK reports whether the scan found no inconsistencies.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Expected returns the allocation bitmap a mount of this image should
// build: the superblock, the inode table, and every referenced block.
func (r *Report) Expected() *roaring.Bitmap {
	bm := r.Referenced.Clone()
	bm.AddRange(0, r.Super.DataStart())
	return bm
}

func (r *Report) ref(inum common.Inum, what string, bn common.Bnum) bool {
	if bn == common.NULLBNUM {
		return false
	}
	if bn < r.Super.DataStart() || bn >= r.Super.Nblocks {
		r.problem("inode %d: %s block %d outside data region [%d, %d)",
			inum, what, bn, r.Super.DataStart(), r.Super.Nblocks)
		return false
	}
	if !r.Referenced.CheckedAdd(uint32(bn)) {
		r.Duplicates.Add(uint32(bn))
		r.problem("inode %d: %s block %d referenced twice", inum, what, bn)
	}
	return true
}

// Scan reads the superblock and the whole inode table of d.
func Scan(d disk.Disk) (*Report, error) {
	fs, err := super.ReadSuper(d)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Super:      fs,
		Referenced: roaring.New(),
		Duplicates: roaring.New(),
	}
	for blkidx := uint64(0); blkidx < fs.NInodeBlk; blkidx++ {
		blk := d.Read(fs.InodeStart() + blkidx)
		for _, ip := range inode.DecodeInodeBlock(blk, blkidx) {
			if ip.Valid {
				r.Inodes++
				r.scanInode(d, ip)
			}
		}
	}
	return r, nil
}

func (r *Report) scanInode(d disk.Disk, ip *inode.Inode) {
	if ip.Size > common.MaxFileSize() {
		r.problem("inode %d: size %d exceeds %d", ip.Inum, ip.Size, common.MaxFileSize())
	}
	for i, bn := range ip.Direct() {
		r.ref(ip.Inum, fmt.Sprintf("direct[%d]", i), bn)
	}
	root := ip.Indirect()
	if !r.ref(ip.Inum, "indirect", root) {
		return
	}
	for i, bn := range inode.DecodeBnums(d.Read(root)) {
		r.ref(ip.Inum, fmt.Sprintf("indirect[%d]", i), bn)
	}
}
