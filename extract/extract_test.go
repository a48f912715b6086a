package extract_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/djherbis/times.v1"

	"github.com/v7fs/go-v7fs/extract"
	v7 "github.com/v7fs/go-v7fs/filesystem/v7"
	"github.com/v7fs/go-v7fs/internal/imagetest"
	"github.com/v7fs/go-v7fs/partition"
)

var testPart = partition.Partition{Name: "root", Start: 2, Size: 64, GoodUpperBound: 50}

const (
	atimeHello = 111
	mtimeHello = 222
)

// testImage builds a small but complete filesystem:
//
//	/
//	├── bin/
//	│   ├── hard2        second link to inode 5
//	│   └── note         empty file
//	├── hello.txt        1000 bytes, one full block plus a tail
//	├── hard1            first link to inode 5
//	├── tty              character special
//	├── bad              content in the unreadable zone
//	└── removed          tombstone
func testImage(t *testing.T) *v7.FileSystem {
	t.Helper()
	b := imagetest.New(testPart)
	b.SetBlock(1, imagetest.Superblock(2, uint32(testPart.Size), 0, 0, 400000000))

	b.SetInode(2, imagetest.Inode(0o040755, 3, 0, 0, 8*16, []uint32{10}, 0, 400000000, 0))
	b.SetBlock(10, imagetest.DirBlock(
		imagetest.DirEntry(2, "."),
		imagetest.DirEntry(2, ".."),
		imagetest.DirEntry(3, "bin"),
		imagetest.DirEntry(4, "hello.txt"),
		imagetest.DirEntry(0, "removed"),
		imagetest.DirEntry(5, "hard1"),
		imagetest.DirEntry(6, "tty"),
		imagetest.DirEntry(8, "bad"),
	))

	b.SetInode(3, imagetest.Inode(0o040755, 2, 0, 0, 4*16, []uint32{11}, 0, 0, 0))
	b.SetBlock(11, imagetest.DirBlock(
		imagetest.DirEntry(3, "."),
		imagetest.DirEntry(2, ".."),
		imagetest.DirEntry(5, "hard2"),
		imagetest.DirEntry(7, "note"),
	))

	b.SetInode(4, imagetest.Inode(0o100644, 1, 100, 200, 1000, []uint32{12, 13}, atimeHello, mtimeHello, 0))
	b.SetBlock(12, bytes.Repeat([]byte{'A'}, 512))
	b.SetBlock(13, bytes.Repeat([]byte{'B'}, 512))

	b.SetInode(5, imagetest.Inode(0o100755, 2, 0, 0, 10, []uint32{14}, 0, 0, 0))
	b.SetBlock(14, []byte("hardlinked"))

	b.SetInode(6, imagetest.Inode(0o020666, 1, 0, 0, 0, nil, 0, 0, 0))

	b.SetInode(7, imagetest.Inode(0o100600, 1, 0, 0, 0, nil, 0, 0, 0))

	b.SetInode(8, imagetest.Inode(0o100644, 1, 0, 0, 5, []uint32{55}, 0, 0, 0))
	b.SetBlock(55, []byte("badbb"))

	fs, err := v7.Read(b.Open(), testPart)
	require.NoError(t, err)
	return fs
}

func messages(hook *logrustest.Hook) []string {
	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

func containsMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestRun(t *testing.T) {
	fs := testImage(t)
	logger, hook := logrustest.NewNullLogger()
	logger.Level = logrus.DebugLevel

	dest := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)

	ex := extract.New(fs, logger, extract.Options{})
	require.NoError(t, ex.Run(dest))

	// the working directory never moves
	wdAfter, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, wdAfter)

	root := filepath.Join(dest, "root")

	// directories carry mode 774
	fi, err := os.Stat(filepath.Join(root, "bin"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.Equal(t, os.FileMode(0o774), fi.Mode().Perm())

	// regular file: permissions, restored times, then content
	hello := filepath.Join(root, "hello.txt")
	fi, err = os.Stat(hello)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
	assert.True(t, fi.ModTime().Equal(time.Unix(mtimeHello, 0)))
	ts, err := times.Stat(hello)
	require.NoError(t, err)
	assert.True(t, ts.AccessTime().Equal(time.Unix(atimeHello, 0)))

	content, err := os.ReadFile(hello)
	require.NoError(t, err)
	want := append(bytes.Repeat([]byte{'A'}, 512), bytes.Repeat([]byte{'B'}, 488)...)
	assert.Equal(t, want, content)
	assert.Len(t, content, 1000)

	// the first link is a real file, the second a relative symlink to it
	first, err := os.ReadFile(filepath.Join(root, "hard1"))
	require.NoError(t, err)
	assert.Equal(t, "hardlinked", string(first))
	target, err := os.Readlink(filepath.Join(root, "bin", "hard2"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "hard1"), target)
	second, err := os.ReadFile(filepath.Join(root, "bin", "hard2"))
	require.NoError(t, err)
	assert.Equal(t, "hardlinked", string(second))

	// zero-length file comes out empty
	note, err := os.ReadFile(filepath.Join(root, "bin", "note"))
	require.NoError(t, err)
	assert.Empty(t, note)

	// specials and tombstones leave nothing behind
	_, err = os.Lstat(filepath.Join(root, "tty"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Lstat(filepath.Join(root, "removed"))
	assert.True(t, os.IsNotExist(err))

	// the bad-zone file is still extracted, under protest
	bad, err := os.ReadFile(filepath.Join(root, "bad"))
	require.NoError(t, err)
	assert.Equal(t, "badbb", string(bad))

	msgs := messages(hook)
	assert.True(t, containsMessage(msgs, "BAD BLOCK 55 in /bad"), "missing BAD BLOCK diagnostic in %q", msgs)
	assert.True(t, containsMessage(msgs, "SPECIAL /tty"), "missing SPECIAL line in %q", msgs)
	assert.True(t, containsMessage(msgs, "FLINK /hard1"), "missing FLINK line in %q", msgs)
	assert.True(t, containsMessage(msgs, "SLINK /bin/hard2"), "missing SLINK line in %q", msgs)
	assert.True(t, containsMessage(msgs, "biggest file /hello.txt: 1000 bytes"), "missing stats line in %q", msgs)
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	fs := testImage(t)
	logger, _ := logrustest.NewNullLogger()

	dest := t.TempDir()
	require.NoError(t, extract.New(fs, logger, extract.Options{}).Run(dest))
	firstHello, err := os.ReadFile(filepath.Join(dest, "root", "hello.txt"))
	require.NoError(t, err)

	require.NoError(t, extract.New(fs, logger, extract.Options{}).Run(dest))
	secondHello, err := os.ReadFile(filepath.Join(dest, "root", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, firstHello, secondHello)

	// the duplicate link is still a symlink, not a copy
	fi, err := os.Lstat(filepath.Join(dest, "root", "bin", "hard2"))
	require.NoError(t, err)
	assert.Equal(t, os.ModeSymlink, fi.Mode()&os.ModeSymlink)
}

func TestRunListOnly(t *testing.T) {
	fs := testImage(t)
	logger, hook := logrustest.NewNullLogger()

	dest := t.TempDir()
	require.NoError(t, extract.New(fs, logger, extract.Options{ListOnly: true}).Run(dest))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "list-only run wrote to the host")

	// the listing itself still happens
	msgs := messages(hook)
	assert.True(t, containsMessage(msgs, "hello.txt"), "missing listing line in %q", msgs)
}

func TestRunTripleIndirectFails(t *testing.T) {
	b := imagetest.New(testPart)
	b.SetBlock(1, imagetest.Superblock(2, uint32(testPart.Size), 0, 0, 0))
	b.SetInode(2, imagetest.Inode(0o040755, 2, 0, 0, 3*16, []uint32{10}, 0, 0, 0))
	b.SetBlock(10, imagetest.DirBlock(
		imagetest.DirEntry(2, "."),
		imagetest.DirEntry(2, ".."),
		imagetest.DirEntry(3, "huge"),
	))
	addrs := make([]uint32, 13)
	addrs[0] = 11
	addrs[12] = 12
	b.SetInode(3, imagetest.Inode(0o100644, 1, 0, 0, 512, addrs, 0, 0, 0))

	fs, err := v7.Read(b.Open(), testPart)
	require.NoError(t, err)

	logger, _ := logrustest.NewNullLogger()
	dest := t.TempDir()
	err = extract.New(fs, logger, extract.Options{}).Run(dest)
	require.ErrorIs(t, err, v7.ErrTripleIndirect)

	// no partial output for the damaged file
	_, err = os.Lstat(filepath.Join(dest, "root", "huge"))
	assert.True(t, os.IsNotExist(err))
}
