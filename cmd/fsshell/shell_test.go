package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-inodefs/fs"
	"github.com/mit-pdos/go-inodefs/imgfile"
	"github.com/mit-pdos/go-inodefs/util/timed_disk"
)

func runScript(t *testing.T, d disk.Disk, script ...string) string {
	var out bytes.Buffer
	sh := mkShell(d, &out)
	sh.run(bufio.NewScanner(strings.NewReader(strings.Join(script, "\n"))), false)
	require.NoError(t, sh.close())
	return out.String()
}

func TestShellScenario(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in")
	dst := filepath.Join(dir, "out")
	data := bytes.Repeat([]byte("inode file system\n"), 1000)
	require.NoError(t, os.WriteFile(src, data, 0644))

	d := disk.NewMemDisk(100)
	out := runScript(t, d,
		"format",
		"mount",
		"create",
		"copyin "+src+" 1",
		"getsize 1",
		"copyout 1 "+dst,
		"check",
		"quit",
		"create",
	)
	assert.Contains(t, out, "disk formatted.")
	assert.Contains(t, out, "created inode 1.")
	assert.Contains(t, out, "inode 1 has size 18000")
	assert.Contains(t, out, "ok\n")
	assert.NotContains(t, out, "created inode 2.", "commands after quit run")

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestShellErrors(t *testing.T) {
	d := disk.NewMemDisk(100)
	out := runScript(t, d,
		"create",
		"bogus",
		"format",
		"mount",
		"delete",
		"delete x",
		"getsize 7",
	)
	assert.Contains(t, out, "create: disk not mounted")
	assert.Contains(t, out, "bogus: unknown command")
	assert.Contains(t, out, "usage: delete <inode>")
	assert.Contains(t, out, `bad inode number "x"`)
	assert.Contains(t, out, "getsize: inode 7 not in use: invalid inumber")
}

func TestShellCat(t *testing.T) {
	d := disk.NewMemDisk(50)
	dir := t.TempDir()
	src := filepath.Join(dir, "in")
	require.NoError(t, os.WriteFile(src, []byte("hello\n"), 0644))
	out := runScript(t, d, "format", "mount", "create", "copyin "+src+" 1", "cat 1")
	assert.True(t, strings.HasSuffix(out, "hello\n"), "output: %q", out)
}

func TestShellSave(t *testing.T) {
	d := disk.NewMemDisk(50)
	img := filepath.Join(t.TempDir(), "fs.img")
	out := runScript(t, d, "format", "save "+img+" lz4")
	assert.Contains(t, out, "saved "+img+" (lz4)")

	loaded, err := loadSnapshot(img, nil)
	require.NoError(t, err)
	assert.Equal(t, d.Size(), loaded.Size())
	for bn := uint64(0); bn < d.Size(); bn++ {
		assert.Equal(t, d.Read(bn), loaded.Read(bn), "block %d", bn)
	}

	out = runScript(t, loaded, "mount", "create", "save "+img+" xz")
	assert.Contains(t, out, "created inode 1.")
	assert.Contains(t, out, "save: ")
	_, err = imgfile.ParseCodec("xz")
	assert.Error(t, err)
}

func TestShellStats(t *testing.T) {
	out := runScript(t, disk.NewMemDisk(50), "stats")
	assert.Contains(t, out, "run with -stats")

	d := timed_disk.New(disk.NewMemDisk(50))
	out = runScript(t, d, "format", "mount", "create", "stats")
	assert.Contains(t, out, "CREATE")
	assert.Contains(t, out, "disk.Write")
}

func TestShellCloseUnmountError(t *testing.T) {
	var out bytes.Buffer
	sh := mkShell(disk.NewMemDisk(50), &out)
	require.NoError(t, sh.exec([]string{"format"}))
	require.NoError(t, sh.exec([]string{"mount"}))
	require.NoError(t, sh.st.Unmount())
	assert.ErrorIs(t, sh.close(), fs.ErrNotMounted)
	assert.NoError(t, sh.close(), "nothing left to unmount")
}

func openFds(t *testing.T) int {
	ents, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(ents)
}

func TestLockImage(t *testing.T) {
	img := filepath.Join(t.TempDir(), "fs.img")
	require.NoError(t, lockImage(img))

	nfd := openFds(t)
	err := lockImage(img)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in use")
	assert.Equal(t, nfd, openFds(t), "failed lock releases its descriptor")

	err = lockImage(filepath.Join(t.TempDir(), "missing", "fs.img"))
	assert.Error(t, err)
	assert.Equal(t, nfd, openFds(t))
}
