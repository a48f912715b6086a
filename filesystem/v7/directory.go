package v7

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// directory entry layout: a 16-bit big-endian inode number followed by 14
// bytes of filename, 32 entries per block. A name that uses all 14 bytes
// carries no NUL terminator.
const (
	dirEntrySize       = 16
	dirEntryNameStart  = 2
	dirNameLength      = 14
	dirEntriesPerBlock = BlockSize / dirEntrySize
)

// DirEntry is one decoded directory entry. Inode 0 marks a tombstone left
// behind by unlink: the name bytes are stale and the entry must be skipped
// for traversal, but it still occupies its slot.
type DirEntry struct {
	Inode uint16
	Name  string
}

// Tombstone reports whether the entry was unlinked.
func (e *DirEntry) Tombstone() bool {
	return e.Inode == 0
}

func dirEntryFromBytes(b []byte) *DirEntry {
	name := b[dirEntryNameStart : dirEntryNameStart+dirNameLength]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return &DirEntry{
		Inode: binary.BigEndian.Uint16(b[0:2]),
		Name:  string(name),
	}
}

// DirEntry returns entry k of a directory inode, in on-disk order, or
// (nil, nil) past the last entry. Tombstones are returned like any other
// entry; the caller decides to skip them.
func (fs *FileSystem) DirEntry(dir *Inode, k int) (*DirEntry, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("inode %d: %w", dir.Number, ErrNotDirectory)
	}
	if k < 0 {
		return nil, fmt.Errorf("directory entry index %d out of range", k)
	}
	blockIndex := k / dirEntriesPerBlock
	slot := k % dirEntriesPerBlock
	if blockIndex >= len(dir.Blocks) {
		return nil, nil
	}
	b, err := fs.ReadBlock(dir.Blocks[blockIndex])
	if err != nil {
		return nil, fmt.Errorf("could not read directory block %d of inode %d: %w", blockIndex, dir.Number, err)
	}
	return dirEntryFromBytes(b[slot*dirEntrySize : (slot+1)*dirEntrySize]), nil
}

// ReadDirectory returns every entry of a directory inode, tombstones
// included, in on-disk order.
func (fs *FileSystem) ReadDirectory(dir *Inode) ([]*DirEntry, error) {
	var entries []*DirEntry
	for k := 0; ; k++ {
		e, err := fs.DirEntry(dir, k)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return entries, nil
		}
		entries = append(entries, e)
	}
}
