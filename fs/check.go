package fs

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/mit-pdos/go-inodefs/fsck"
)

// Check compares the allocation bitmap against an independent scan of
// the device and fails if they differ or the scan found problems.
func (st *Fs) Check() error {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.mounted {
		return ErrNotMounted
	}
	r, err := fsck.Scan(st.op.Disk)
	if err != nil {
		return err
	}
	if !r.OK() {
		return fmt.Errorf("fsck: %s", strings.Join(r.Problems, "; "))
	}
	used := roaring.New()
	for _, bn := range st.op.Balloc.Used() {
		used.Add(uint32(bn))
	}
	expected := r.Expected()
	if !used.Equals(expected) {
		return fmt.Errorf("bitmap mismatch: missing %v, extra %v",
			roaring.AndNot(expected, used).ToArray(),
			roaring.AndNot(used, expected).ToArray())
	}
	return nil
}
