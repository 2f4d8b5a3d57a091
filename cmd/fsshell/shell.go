package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-inodefs/common"
	"github.com/mit-pdos/go-inodefs/fs"
	"github.com/mit-pdos/go-inodefs/imgfile"
	"github.com/mit-pdos/go-inodefs/util/timed_disk"
)

type shell struct {
	d   disk.Disk
	out io.Writer
	st  *fs.Fs
}

func mkShell(d disk.Disk, out io.Writer) *shell {
	return &shell{d: d, out: out}
}

type command struct {
	args  string
	nargs int
	run   func(sh *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"format":  {"", 0, (*shell).format},
		"mount":   {"", 0, (*shell).mount},
		"unmount": {"", 0, (*shell).unmount},
		"debug":   {"", 0, (*shell).debug},
		"check":   {"", 0, (*shell).check},
		"create":  {"", 0, (*shell).create},
		"delete":  {"<inode>", 1, (*shell).delete},
		"getsize": {"<inode>", 1, (*shell).getsize},
		"stat":    {"<inode>", 1, (*shell).stat},
		"cat":     {"<inode>", 1, (*shell).cat},
		"copyin":  {"<file> <inode>", 2, (*shell).copyin},
		"copyout": {"<inode> <file>", 2, (*shell).copyout},
		"save":    {"<file> [none|lz4|zstd]", -1, (*shell).save},
		"stats":   {"[reset]", -1, (*shell).stats},
		"help":    {"", 0, (*shell).help},
	}
}

var errNotMounted = errors.New("disk not mounted")

func (sh *shell) exec(args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return errors.New("unknown command, type 'help' for a list")
	}
	if cmd.nargs >= 0 && len(args)-1 != cmd.nargs {
		return fmt.Errorf("usage: %s %s", args[0], cmd.args)
	}
	return cmd.run(sh, args[1:])
}

// close unmounts the file system if the shell still holds it.
func (sh *shell) close() error {
	st := sh.st
	if st == nil {
		return nil
	}
	sh.st = nil
	return st.Unmount()
}

func (sh *shell) mounted() (*fs.Fs, error) {
	if sh.st == nil {
		return nil, errNotMounted
	}
	return sh.st, nil
}

func parseInum(s string) (common.Inum, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad inode number %q", s)
	}
	return common.Inum(n), nil
}

func (sh *shell) format(args []string) error {
	if sh.st != nil {
		return errors.New("cannot format a mounted disk")
	}
	if err := fs.Format(sh.d); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "disk formatted.")
	return nil
}

func (sh *shell) mount(args []string) error {
	st, err := fs.Mount(sh.d)
	if err != nil {
		return err
	}
	sh.st = st
	fmt.Fprintln(sh.out, "disk mounted.")
	return nil
}

func (sh *shell) unmount(args []string) error {
	st, err := sh.mounted()
	if err != nil {
		return err
	}
	sh.st = nil
	if err := st.Unmount(); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "disk unmounted.")
	return nil
}

func (sh *shell) debug(args []string) error {
	if sh.st != nil {
		return sh.st.Debug(sh.out)
	}
	return fs.Debug(sh.d, sh.out)
}

func (sh *shell) check(args []string) error {
	st, err := sh.mounted()
	if err != nil {
		return err
	}
	if err := st.Check(); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "ok")
	return nil
}

func (sh *shell) create(args []string) error {
	st, err := sh.mounted()
	if err != nil {
		return err
	}
	inum, err := st.Create()
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "created inode %d.\n", inum)
	return nil
}

func (sh *shell) delete(args []string) error {
	st, err := sh.mounted()
	if err != nil {
		return err
	}
	inum, err := parseInum(args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(inum); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "inode %d deleted.\n", inum)
	return nil
}

func (sh *shell) getsize(args []string) error {
	st, err := sh.mounted()
	if err != nil {
		return err
	}
	inum, err := parseInum(args[0])
	if err != nil {
		return err
	}
	sz, err := st.GetSize(inum)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "inode %d has size %d\n", inum, sz)
	return nil
}

func (sh *shell) stat(args []string) error {
	st, err := sh.mounted()
	if err != nil {
		return err
	}
	inum, err := parseInum(args[0])
	if err != nil {
		return err
	}
	ip, err := st.Stat(inum)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, ip)
	return nil
}

func (sh *shell) open(arg string) (*fs.File, error) {
	st, err := sh.mounted()
	if err != nil {
		return nil, err
	}
	inum, err := parseInum(arg)
	if err != nil {
		return nil, err
	}
	return st.Open(inum)
}

func copyOut(f *fs.File, w io.Writer) (int64, error) {
	sz, err := f.Size()
	if err != nil {
		return 0, err
	}
	return io.Copy(w, io.NewSectionReader(f, 0, sz))
}

func (sh *shell) cat(args []string) error {
	f, err := sh.open(args[0])
	if err != nil {
		return err
	}
	_, err = copyOut(f, sh.out)
	return err
}

func (sh *shell) copyin(args []string) error {
	f, err := sh.open(args[1])
	if err != nil {
		return err
	}
	src, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()
	n, err := io.Copy(io.NewOffsetWriter(f, 0), src)
	if err != nil {
		return fmt.Errorf("copied only %d bytes: %w", n, err)
	}
	fmt.Fprintf(sh.out, "%d bytes copied\n", n)
	return nil
}

func (sh *shell) copyout(args []string) error {
	f, err := sh.open(args[0])
	if err != nil {
		return err
	}
	dst, err := os.Create(args[1])
	if err != nil {
		return err
	}
	n, err := copyOut(f, dst)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%d bytes copied\n", n)
	return nil
}

func (sh *shell) save(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: save %s", commands["save"].args)
	}
	c := imgfile.CodecZSTD
	if len(args) == 2 {
		var err error
		c, err = imgfile.ParseCodec(args[1])
		if err != nil {
			return err
		}
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	err = imgfile.Save(sh.d, f, c)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "saved %s (%s)\n", args[0], c)
	return nil
}

func (sh *shell) stats(args []string) error {
	reset := false
	switch {
	case len(args) == 1 && args[0] == "reset":
		reset = true
	case len(args) != 0:
		return fmt.Errorf("usage: stats %s", commands["stats"].args)
	}
	td, timed := sh.d.(*timed_disk.Disk)
	if !timed {
		return errors.New("run with -stats to collect statistics")
	}
	if reset {
		td.ResetStats()
		if sh.st != nil {
			sh.st.ResetOpStats()
		}
		return nil
	}
	if sh.st != nil {
		sh.st.WriteOpStats(sh.out)
	}
	td.WriteStats(sh.out)
	return nil
}

func (sh *shell) help(args []string) error {
	fmt.Fprintln(sh.out, "commands are:")
	for _, name := range []string{
		"format", "mount", "unmount", "debug", "check",
		"create", "delete", "getsize", "stat", "cat",
		"copyin", "copyout", "save", "stats", "help",
	} {
		fmt.Fprintf(sh.out, "    %s %s\n", name, commands[name].args)
	}
	fmt.Fprintln(sh.out, "    quit")
	fmt.Fprintln(sh.out, "    exit")
	return nil
}
