package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/fs"
	"github.com/mit-pdos/go-inodefs/util/timed_disk"
)

const (
	WSIZE       uint64 = disk.BlockSize
	MB          uint64 = 1024 * 1024
	BENCHDISKSZ uint64 = 10 * 1000
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	var diskfile string
	flag.StringVar(&diskfile, "disk", "", "disk image (empty for MemDisk)")
	var iters int
	flag.IntVar(&iters, "iters", 10, "number of files to write")
	var dumpStats bool
	flag.BoolVar(&dumpStats, "stats", false, "print disk statistics")
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	var d disk.Disk = disk.NewMemDisk(BENCHDISKSZ)
	if diskfile != "" {
		fd, err := disk.NewFileDisk(diskfile, BENCHDISKSZ)
		if err != nil {
			log.Fatal(err)
		}
		d = fd
	}
	td := timed_disk.New(d)
	defer td.Close()
	if err := fs.Format(td); err != nil {
		log.Fatal(err)
	}
	st, err := fs.Mount(td)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Unmount()

	for i := 0; i < iters; i++ {
		if err := largeFile(st); err != nil {
			log.Fatal(err)
		}
	}
	if dumpStats {
		st.WriteOpStats(os.Stdout)
		td.WriteStats(os.Stdout)
	}
}

func mkdata(sz uint64) []byte {
	data := make([]byte, sz)
	for i := range data {
		data[i] = byte(i % 128)
	}
	return data
}

// largeFile writes a file of the maximum size one block at a time and
// deletes it again.
func largeFile(st *fs.Fs) error {
	filesize := common.MaxFileSize()
	data := mkdata(WSIZE)

	start := time.Now()

	inum, err := st.Create()
	if err != nil {
		return err
	}
	n := filesize / WSIZE
	for j := uint64(0); j < n; j++ {
		if _, err := st.Write(inum, data, j*WSIZE); err != nil {
			return err
		}
	}
	sz, err := st.GetSize(inum)
	if err != nil {
		return err
	}
	if sz != filesize {
		return fmt.Errorf("largefile: size %d, expected %d", sz, filesize)
	}

	elapsed := time.Since(start)
	tput := float64(filesize) / float64(MB) / elapsed.Seconds()
	fmt.Printf("largefile: %.2f MB throughput %.2f MB/s\n", float64(filesize)/float64(MB), tput)

	return st.Delete(inum)
}
