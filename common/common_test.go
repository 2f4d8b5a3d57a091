package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometry(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(128), INODEBLK)
	assert.Equal(uint64(1024), NBLKBLK)
	assert.Equal(uint64(1029), MAXBLKS)
	assert.Equal(uint64(4214784), MaxFileSize())
}
