package inode

import (
	"fmt"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/common"
)

func (ip *Inode) checkBlock(op *Op, bn common.Bnum) error {
	if bn != common.NULLBNUM && !op.ValidBlock(bn) {
		return fmt.Errorf("inode %d: block %d out of range: %w",
			ip.Inum, bn, common.ErrInvalidImage)
	}
	return nil
}

// Returns the indirect block's entry off, allocating the indirect block
// and the entry's data block if alloc is set. The bool reports whether
// the returned block is newly allocated.
func (ip *Inode) indbmap(op *Op, off uint64, alloc bool) (common.Bnum, bool, error) {
	root := ip.blks[INDIRECT]
	if err := ip.checkBlock(op, root); err != nil {
		return common.NULLBNUM, false, err
	}
	if root == common.NULLBNUM && !alloc {
		return common.NULLBNUM, false, nil
	}

	var ind []common.Bnum
	newroot := root == common.NULLBNUM
	if newroot {
		root = op.AllocBlock()
		if root == common.NULLBNUM {
			return common.NULLBNUM, false, common.ErrDiskFull
		}
		ind = make([]common.Bnum, common.NBLKBLK)
	} else {
		ind = DecodeBnums(op.ReadBlock(root))
	}

	blkno := ind[off]
	if err := ip.checkBlock(op, blkno); err != nil {
		return common.NULLBNUM, false, err
	}
	if blkno != common.NULLBNUM || !alloc {
		return blkno, false, nil
	}

	blkno = op.AllocBlock()
	if blkno == common.NULLBNUM {
		if newroot {
			// nothing refers to the new indirect block yet
			op.FreeBlock(root)
		}
		return common.NULLBNUM, false, common.ErrDiskFull
	}
	ind[off] = blkno
	op.WriteBlock(root, EncodeBnums(ind))
	if newroot {
		ip.blks[INDIRECT] = root
	}
	util.DPrintf(10, "indbmap: # %d root %d [%d] = %d\n", ip.Inum, root, off, blkno)
	return blkno, true, nil
}

// Map logical block number bn to a physical block number. With alloc
// set, missing blocks are allocated; otherwise a missing block maps to
// NULLBNUM.
func (ip *Inode) bmap(op *Op, bn uint64, alloc bool) (common.Bnum, bool, error) {
	if bn >= common.MAXBLKS {
		return common.NULLBNUM, false, common.ErrFileTooLarge
	}
	if bn >= common.NDIRECT {
		return ip.indbmap(op, bn-common.NDIRECT, alloc)
	}
	blkno := ip.blks[bn]
	if err := ip.checkBlock(op, blkno); err != nil {
		return common.NULLBNUM, false, err
	}
	if blkno != common.NULLBNUM || !alloc {
		return blkno, false, nil
	}
	blkno = op.AllocBlock()
	if blkno == common.NULLBNUM {
		return common.NULLBNUM, false, common.ErrDiskFull
	}
	ip.blks[bn] = blkno
	return blkno, true, nil
}

// Read copies bytes starting at offset into data and returns how many
// were copied. Reading at or past the end of the file copies nothing.
// Holes read as zeros.
func (ip *Inode) Read(op *Op, offset uint64, data []byte) (uint64, error) {
	if offset >= ip.Size {
		return 0, nil
	}
	count := util.Min(uint64(len(data)), ip.Size-offset)
	util.DPrintf(5, "Read: # %d off %d cnt %d\n", ip.Inum, offset, count)

	var n uint64
	var off = offset
	for boff := off / disk.BlockSize; n < count; boff++ {
		byteoff := off % disk.BlockSize
		nbytes := util.Min(disk.BlockSize-byteoff, count-n)
		blkno, _, err := ip.bmap(op, boff, false)
		if err != nil {
			return n, err
		}
		if blkno == common.NULLBNUM {
			clear(data[n : n+nbytes])
		} else {
			buf := op.ReadBlock(blkno)
			copy(data[n:n+nbytes], buf[byteoff:byteoff+nbytes])
		}
		n += nbytes
		off += nbytes
	}
	return n, nil
}

// Write stores data at offset, allocating blocks as needed, and
// returns the number of bytes written. If allocation fails part way the
// count covers the blocks written so far and the error says why; the
// inode is persisted in either case.
func (ip *Inode) Write(op *Op, offset uint64, data []byte) (uint64, error) {
	count := uint64(len(data))
	util.DPrintf(5, "Write: # %d off %d cnt %d\n", ip.Inum, offset, count)
	if util.SumOverflows(offset, count) {
		return 0, common.ErrFileTooLarge
	}

	var cnt uint64
	var off = offset
	var alloc bool
	var err error
	for boff := off / disk.BlockSize; cnt < count; boff++ {
		var blkno common.Bnum
		var new bool
		blkno, new, err = ip.bmap(op, boff, true)
		if err != nil {
			break
		}
		if new {
			alloc = true
		}
		byteoff := off % disk.BlockSize
		nbytes := util.Min(disk.BlockSize-byteoff, count-cnt)
		var buf disk.Block
		if new || (byteoff == 0 && nbytes == disk.BlockSize) {
			buf = make(disk.Block, disk.BlockSize)
		} else {
			buf = op.ReadBlock(blkno)
		}
		copy(buf[byteoff:], data[cnt:cnt+nbytes])
		op.WriteBlock(blkno, buf)
		cnt += nbytes
		off += nbytes
	}
	util.DPrintf(5, "Write: # %d off %d cnt %d size %d err %v\n", ip.Inum, offset, cnt, ip.Size, err)
	// an empty write does not extend the file
	if cnt > 0 && offset+cnt > ip.Size {
		ip.Size = offset + cnt
	}
	if alloc || cnt > 0 {
		ip.WriteInode(op)
	}
	return cnt, err
}
