package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/tchajed/goose/machine/disk"
	"golang.org/x/sync/errgroup"

	"github.com/mit-pdos/go-inodefs/fs"
)

const BENCHDISKSZ uint64 = 10 * 1000

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	var nthread int
	flag.IntVar(&nthread, "threads", 4, "maximum number of threads")
	var duration time.Duration
	flag.DurationVar(&duration, "time", 2*time.Second, "time to run each configuration")
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	d := disk.NewMemDisk(BENCHDISKSZ)
	if err := fs.Format(d); err != nil {
		log.Fatal(err)
	}
	st, err := fs.Mount(d)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Unmount()
	for i := 1; i <= nthread; i++ {
		n, err := parallel(st, i, duration)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("smallfile: %v file/s with %d threads\n",
			float64(n)/duration.Seconds(), i)
	}
}

// smallFile creates a file, writes data to it and deletes it.
func smallFile(st *fs.Fs, data []byte) error {
	inum, err := st.Create()
	if err != nil {
		return err
	}
	if _, err := st.Write(inum, data, 0); err != nil {
		return err
	}
	sz, err := st.GetSize(inum)
	if err != nil {
		return err
	}
	if sz != uint64(len(data)) {
		return fmt.Errorf("smallfile: inode %d has size %d", inum, sz)
	}
	return st.Delete(inum)
}

func mkdata(sz uint64) []byte {
	data := make([]byte, sz)
	for i := range data {
		data[i] = byte(i % 128)
	}
	return data
}

func parallel(st *fs.Fs, nthread int, duration time.Duration) (int, error) {
	counts := make([]int, nthread)
	var g errgroup.Group
	for t := 0; t < nthread; t++ {
		t := t
		g.Go(func() error {
			data := mkdata(100)
			start := time.Now()
			for time.Since(start) < duration {
				if err := smallFile(st, data); err != nil {
					return err
				}
				counts[t]++
			}
			return nil
		})
	}
	err := g.Wait()
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, err
}
