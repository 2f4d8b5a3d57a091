package fs

import (
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/inode"
	"github.com/mit-pdos/go-inodefs/super"
)

func fmtBnums(bnums []common.Bnum) string {
	s := make([]string, len(bnums))
	for i, bn := range bnums {
		s[i] = fmt.Sprint(bn)
	}
	return strings.Join(s, " ")
}

// Debug prints the superblock of d and the block pointers of every
// valid inode. It reads the device directly and does not need a mount.
func Debug(d disk.Disk, w io.Writer) error {
	fs, err := super.ReadSuper(d)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "superblock:\n")
	fmt.Fprintf(w, "    %d blocks\n", fs.Nblocks)
	fmt.Fprintf(w, "    %d inode blocks\n", fs.NInodeBlk)
	fmt.Fprintf(w, "    %d inodes\n", fs.NInode)

	op := inode.MkOp(d, fs, nil)
	tbl := table.New("inode", "size", "direct", "indirect", "indirect data").WithWriter(w)
	var n uint64
	inode.ScanInodes(op, func(ip *inode.Inode) {
		n++
		nblk := util.RoundUp(ip.Size, disk.BlockSize)
		direct := ip.Direct()[:util.Min(nblk, common.NDIRECT)]
		var ind, inddata string
		if ip.Indirect() != common.NULLBNUM {
			ind = fmt.Sprint(ip.Indirect())
			if nblk > common.NDIRECT {
				entries := ip.IndirectEntries(op)
				inddata = fmtBnums(entries[:util.Min(nblk-common.NDIRECT, uint64(len(entries)))])
			}
		}
		tbl.AddRow(ip.Inum, ip.Size, fmtBnums(direct), ind, inddata)
	})
	if n > 0 {
		tbl.Print()
	}
	return nil
}

// Debug dumps the mounted device along with the allocation bitmap.
func (st *Fs) Debug(w io.Writer) error {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.mounted {
		return ErrNotMounted
	}
	if err := Debug(st.op.Disk, w); err != nil {
		return err
	}
	fmt.Fprintf(w, "bitmap: %d used, %d free\n", st.op.Balloc.Max()-st.op.Balloc.NumFree(), st.op.Balloc.NumFree())
	return nil
}
