package fs

import (
	"errors"
	"sync"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/util/stats"
)

var (
	ErrDeviceTooSmall = common.ErrDeviceTooSmall
	ErrAlreadyMounted = common.ErrAlreadyMounted
	ErrNotMounted     = common.ErrNotMounted
	ErrInvalidImage   = common.ErrInvalidImage
	ErrInvalidInumber = common.ErrInvalidInumber
	ErrInodeTableFull = common.ErrInodeTableFull
	ErrDiskFull       = common.ErrDiskFull
	ErrFileTooLarge   = common.ErrFileTooLarge
)

type Inum = common.Inum

// The process holds at most one mount at a time.
var mnt struct {
	mu sync.Mutex
	fs *Fs
}

// Format lays out an empty file system on d, destroying whatever d
// held before. It refuses to run while the process holds a mount.
func Format(d disk.Disk) error {
	mnt.mu.Lock()
	defer mnt.mu.Unlock()
	if mnt.fs != nil {
		return ErrAlreadyMounted
	}
	return format(d)
}

// Mounted returns the current mount, or nil.
func Mounted() *Fs {
	mnt.mu.Lock()
	defer mnt.mu.Unlock()
	return mnt.fs
}

const (
	CREATE int = iota
	DELETE
	GETSIZE
	READ
	WRITE
	STAT
	NUM_OPS
)

var opNames = []string{
	"CREATE",
	"DELETE",
	"GETSIZE",
	"READ",
	"WRITE",
	"STAT",
}

func mkOpStats() *stats.Ops {
	return stats.New(opNames...)
}

var ErrInvalidOffset = errors.New("negative offset")
