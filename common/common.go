package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	MAGIC uint32 = 0xf0f03410

	INODESZ  uint64 = 32 // on-disk size
	INODEBLK uint64 = disk.BlockSize / INODESZ
	NDIRECT  uint64 = 5
	BNUMSZ   uint64 = 4                       // on-disk size of a block number
	NBLKBLK  uint64 = disk.BlockSize / BNUMSZ // # blkno per indirect block
	MAXBLKS  uint64 = NDIRECT + NBLKBLK       // # data blocks a file can address

	MINBLKS uint64 = 3 // superblock, one inode block, one data block
)

type Inum uint64
type Bnum = uint64

const (
	NULLINUM Inum = 0
	NULLBNUM Bnum = 0
)

func MaxFileSize() uint64 {
	return MAXBLKS * disk.BlockSize
}
