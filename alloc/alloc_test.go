package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkAlloc(4, max)

	assert.Equal(max, a.NumFree(), "everything should be initially free")
	for i := uint64(0); i < 4; i++ {
		a.MarkUsed(i)
	}

	n := a.AllocNum()
	assert.Equal(uint64(4), n, "first fit from start")

	a.MarkUsed(n + 1)
	n2 := a.AllocNum()
	assert.Equal(n+2, n2, "should not allocate something marked used")

	assert.Equal(max-7, a.NumFree(), "should have used 7 items")
	assert.Equal([]uint64{0, 1, 2, 3, 4, 5, 6}, a.Used())

	a.FreeNum(n)
	assert.False(a.IsUsed(n))
	assert.Equal(n, a.AllocNum(), "lowest free number is reused")
}

func TestAllocFull(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(2, 5)
	a.MarkUsed(0)
	a.MarkUsed(1)
	assert.Equal(uint64(2), a.AllocNum())
	assert.Equal(uint64(3), a.AllocNum())
	assert.Equal(uint64(4), a.AllocNum())
	assert.Equal(uint64(0), a.AllocNum(), "no number left")
	assert.Equal(uint64(0), a.NumFree())

	a.FreeNum(3)
	assert.Equal(uint64(3), a.AllocNum())
}

func TestIsUsedOutOfRange(t *testing.T) {
	a := MkAlloc(1, 8)
	assert.False(t, a.IsUsed(100))
	assert.Panics(t, func() { a.FreeNum(0) }, "reserved numbers are not freed")
	assert.Panics(t, func() { a.MarkUsed(8) })
}
