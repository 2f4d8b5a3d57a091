package timed_disk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/goose/machine/disk"
)

func TestCounts(t *testing.T) {
	assert := assert.New(t)
	d := New(disk.NewMemDisk(4))
	blk := make(disk.Block, disk.BlockSize)
	blk[0] = 42

	d.Write(1, blk)
	assert.Equal(blk, d.Read(1))
	d.Read(2)
	d.Barrier()

	assert.Equal(uint64(4), d.Size())
	assert.Equal(uint32(2), d.Reads())
	assert.Equal(uint32(1), d.Writes())

	buf := new(bytes.Buffer)
	d.WriteStats(buf)
	assert.Contains(buf.String(), "disk.Barrier")

	d.ResetStats()
	assert.Equal(uint32(0), d.Reads())
}
