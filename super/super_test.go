package super

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-inodefs/common"
)

func TestGeometry(t *testing.T) {
	assert := assert.New(t)
	fs := MkFsSuper(20)
	assert.Equal(uint64(3), fs.NInodeBlk)
	assert.Equal(uint64(384), fs.NInode)
	assert.Equal(common.Bnum(1), fs.InodeStart())
	assert.Equal(common.Bnum(4), fs.DataStart())
}

func TestEncodeLayout(t *testing.T) {
	assert := assert.New(t)
	blk := MkFsSuper(20).Encode()
	assert.Equal(int(disk.BlockSize), len(blk))
	assert.Equal([]byte{0x10, 0x34, 0xf0, 0xf0}, blk[0:4], "magic is little-endian")
	assert.Equal([]byte{20, 0, 0, 0}, blk[4:8])
	assert.Equal([]byte{3, 0, 0, 0}, blk[8:12])
	assert.Equal([]byte{128, 1, 0, 0}, blk[12:16])
	assert.Equal(MkFsSuper(20), Decode(blk))
}

func TestInumAddr(t *testing.T) {
	assert := assert.New(t)
	fs := MkFsSuper(20)

	assert.False(fs.ValidInum(0))
	assert.True(fs.ValidInum(1))
	assert.True(fs.ValidInum(384))
	assert.False(fs.ValidInum(385))

	blk, slot := fs.Inum2Addr(1)
	assert.Equal(common.Bnum(1), blk)
	assert.Equal(uint64(0), slot)

	blk, slot = fs.Inum2Addr(129)
	assert.Equal(common.Bnum(2), blk)
	assert.Equal(uint64(0), slot)

	blk, slot = fs.Inum2Addr(384)
	assert.Equal(common.Bnum(3), blk)
	assert.Equal(uint64(127), slot)

	for _, inum := range []common.Inum{1, 2, 128, 129, 300, 384} {
		blk, slot := fs.Inum2Addr(inum)
		assert.Equal(inum, MkInum(blk-fs.InodeStart(), slot))
	}
}

func TestFormatAndRead(t *testing.T) {
	d := disk.NewMemDisk(20)
	junk := make(disk.Block, disk.BlockSize)
	for i := range junk {
		junk[i] = 0xff
	}
	for bn := uint64(1); bn < 20; bn++ {
		d.Write(bn, junk)
	}

	fs := MkFsSuper(d.Size())
	fs.Format(d)

	rd, err := ReadSuper(d)
	require.NoError(t, err)
	assert.Equal(t, fs, rd)

	zero := make(disk.Block, disk.BlockSize)
	for bn := uint64(1); bn <= 3; bn++ {
		assert.Equal(t, zero, d.Read(bn), "inode block %d zeroed", bn)
	}
	assert.Equal(t, junk, d.Read(4), "data blocks untouched")
}

func TestReadSuperBadMagic(t *testing.T) {
	d := disk.NewMemDisk(20)
	_, err := ReadSuper(d)
	assert.ErrorIs(t, err, common.ErrInvalidImage)
}

func TestReadSuperBadGeometry(t *testing.T) {
	d := disk.NewMemDisk(20)
	fs := MkFsSuper(40)
	d.Write(0, fs.Encode())
	_, err := ReadSuper(d)
	assert.ErrorIs(t, err, common.ErrInvalidImage, "image larger than disk")
}
