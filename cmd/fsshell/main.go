package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-inodefs/imgfile"
	"github.com/mit-pdos/go-inodefs/util/timed_disk"
)

// lockImage takes an exclusive lock on the image so that a second shell
// cannot mount it at the same time. The lock is released when the
// process exits.
func lockImage(path string) error {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return err
	}
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		unix.Close(fd)
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("%s is in use by another process", path)
		}
		return fmt.Errorf("lock %s: %w", path, err)
	}
	return nil
}

func loadSnapshot(path string, d disk.Disk) (disk.Disk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := imgfile.Load(f)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return snap, nil
	}
	if snap.Size() > d.Size() {
		return nil, fmt.Errorf("snapshot has %d blocks, disk only %d", snap.Size(), d.Size())
	}
	for bn := uint64(0); bn < snap.Size(); bn++ {
		d.Write(bn, snap.Read(bn))
	}
	d.Barrier()
	return d, nil
}

func openDisk(diskfile string, nblocks uint64, loadfile string) (disk.Disk, error) {
	var d disk.Disk
	if diskfile != "" {
		if err := lockImage(diskfile); err != nil {
			return nil, err
		}
		fd, err := disk.NewFileDisk(diskfile, nblocks)
		if err != nil {
			return nil, fmt.Errorf("could not create disk: %w", err)
		}
		d = fd
	}
	if loadfile != "" {
		return loadSnapshot(loadfile, d)
	}
	if d == nil {
		d = disk.NewMemDisk(nblocks)
	}
	return d, nil
}

func main() {
	var diskfile string
	flag.StringVar(&diskfile, "disk", "", "disk image (empty for MemDisk)")

	var nblocks uint64
	flag.Uint64Var(&nblocks, "blocks", 1000, "size of the disk (in blocks)")

	var loadfile string
	flag.StringVar(&loadfile, "load", "", "initialize the disk from a saved snapshot")

	var dumpStats bool
	flag.BoolVar(&dumpStats, "stats", false, "time disk and file system operations")

	flag.Uint64Var(&util.Debug, "debug", 0, "debug level (higher is more verbose)")
	flag.Parse()

	d, err := openDisk(diskfile, nblocks, loadfile)
	if err != nil {
		log.Fatal(err)
	}
	if dumpStats {
		d = timed_disk.New(d)
	}

	sh := mkShell(d, os.Stdout)
	sh.run(bufio.NewScanner(os.Stdin), isTerminal(os.Stdin))
	if err := sh.close(); err != nil {
		log.Printf("unmount: %v", err)
	}
	d.Close()
}

func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	return err == nil
}

func (sh *shell) run(sc *bufio.Scanner, prompt bool) {
	for {
		if prompt {
			fmt.Fprint(sh.out, " fs> ")
		}
		if !sc.Scan() {
			return
		}
		args := strings.Fields(sc.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
		if err := sh.exec(args); err != nil {
			fmt.Fprintf(sh.out, "%s: %v\n", args[0], err)
		}
	}
}
