package fs

import (
	"time"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/inode"
)

func (st *Fs) Create() (Inum, error) {
	defer st.stats.Record(CREATE, time.Now())
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.mounted {
		return 0, ErrNotMounted
	}
	ip, err := inode.AllocInode(st.op)
	if err != nil {
		return 0, err
	}
	return ip.Inum, nil
}

func (st *Fs) Delete(inum Inum) error {
	defer st.stats.Record(DELETE, time.Now())
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.mounted {
		return ErrNotMounted
	}
	ip, err := inode.GetInode(st.op, inum)
	if err != nil {
		return err
	}
	ip.Free(st.op)
	util.DPrintf(1, "Delete # %d: %d free blocks\n", inum, st.op.Balloc.NumFree())
	return nil
}

func (st *Fs) GetSize(inum Inum) (uint64, error) {
	defer st.stats.Record(GETSIZE, time.Now())
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.mounted {
		return 0, ErrNotMounted
	}
	ip, err := inode.GetInode(st.op, inum)
	if err != nil {
		return 0, err
	}
	return ip.Size, nil
}

// Stat returns a copy of inum's record.
func (st *Fs) Stat(inum Inum) (*inode.Inode, error) {
	defer st.stats.Record(STAT, time.Now())
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.mounted {
		return nil, ErrNotMounted
	}
	return inode.GetInode(st.op, inum)
}

// Read copies up to len(data) bytes of inum starting at off and returns
// the count. Reading at or beyond the end of the file returns 0.
func (st *Fs) Read(inum Inum, data []byte, off uint64) (int, error) {
	defer st.stats.Record(READ, time.Now())
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.mounted {
		return 0, ErrNotMounted
	}
	ip, err := inode.GetInode(st.op, inum)
	if err != nil {
		return 0, err
	}
	n, err := ip.Read(st.op, off, data)
	return int(n), err
}

// Write stores data in inum at off. On ErrDiskFull or ErrFileTooLarge
// the returned count says how much was written; the inode reflects
// exactly that much.
func (st *Fs) Write(inum Inum, data []byte, off uint64) (int, error) {
	defer st.stats.Record(WRITE, time.Now())
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.mounted {
		return 0, ErrNotMounted
	}
	ip, err := inode.GetInode(st.op, inum)
	if err != nil {
		return 0, err
	}
	n, err := ip.Write(st.op, off, data)
	return int(n), err
}
