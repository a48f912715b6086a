package v7

import (
	"encoding/binary"
	"fmt"
	"time"
)

// superblock layout, all fields big-endian. There is no magic number
// anywhere in the format; a filesystem is recognized purely by sitting at
// block 1 of its partition.
const (
	sbIsizeStart  = 0   // u16, inode list length in blocks
	sbFsizeStart  = 2   // u32, filesystem size in blocks
	sbNfreeStart  = 6   // u16, entries in the free-block cache
	sbFreeStart   = 8   // 50 x u32, free-block cache
	sbNinodeStart = 208 // u16, entries in the free-inode cache
	sbInodeStart  = 210 // 100 x u16, free-inode cache
	sbPadStart    = 410 // lock flags and mount state, 4 bytes
	sbTimeStart   = 414 // u32, last modification time
)

// Superblock holds the decoded fields of the filesystem superblock. The
// free-block and free-inode caches are in-core state flushed by the
// original kernel; they are decoded for display but drive nothing here.
type Superblock struct {
	// InodeBlocks is the length of the inode list in blocks (isize)
	InodeBlocks uint16
	// Blocks is the total filesystem size in blocks (fsize)
	Blocks uint32
	// Nfree is the number of valid entries in the free-block cache
	Nfree uint16
	// Ninode is the number of valid entries in the free-inode cache
	Ninode uint16
	// ModTime is the last modification time of the filesystem
	ModTime time.Time
}

// superblockFromBytes decodes the superblock from its on-disk block.
// There is nothing to validate: the format carries no magic number, so the
// partition selection is trusted.
func superblockFromBytes(b []byte) (*Superblock, error) {
	if len(b) != BlockSize {
		return nil, fmt.Errorf("superblock was %d bytes instead of expected %d", len(b), BlockSize)
	}
	sb := Superblock{
		InodeBlocks: binary.BigEndian.Uint16(b[sbIsizeStart : sbIsizeStart+2]),
		Blocks:      binary.BigEndian.Uint32(b[sbFsizeStart : sbFsizeStart+4]),
		Nfree:       binary.BigEndian.Uint16(b[sbNfreeStart : sbNfreeStart+2]),
		Ninode:      binary.BigEndian.Uint16(b[sbNinodeStart : sbNinodeStart+2]),
		ModTime:     time.Unix(int64(binary.BigEndian.Uint32(b[sbTimeStart:sbTimeStart+4])), 0).UTC(),
	}
	return &sb, nil
}

func (sb *Superblock) String() string {
	return fmt.Sprintf("isize=%d fsize=%d nfree=%d ninode=%d time=%s",
		sb.InodeBlocks, sb.Blocks, sb.Nfree, sb.Ninode, sb.ModTime.Format(time.RFC3339))
}
