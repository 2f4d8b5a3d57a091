package fs

import (
	"io"
)

// File adapts one inode to io.ReaderAt and io.WriterAt.
type File struct {
	st   *Fs
	inum Inum
}

var _ io.ReaderAt = (*File)(nil)
var _ io.WriterAt = (*File)(nil)

func (st *Fs) Open(inum Inum) (*File, error) {
	if _, err := st.GetSize(inum); err != nil {
		return nil, err
	}
	return &File{st: st, inum: inum}, nil
}

func (f *File) Inum() Inum {
	return f.inum
}

func (f *File) Size() (int64, error) {
	sz, err := f.st.GetSize(f.inum)
	return int64(sz), err
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	n, err := f.st.Read(f.inum, p, uint64(off))
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	return f.st.Write(f.inum, p, uint64(off))
}
