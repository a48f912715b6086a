package v7

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

type fileType uint16

// type nibble of the inode mode field, in octal like the source system
const (
	fileTypeMask        fileType = 0o170000
	fileTypeCharDevice  fileType = 0o020000
	fileTypeMuxChar     fileType = 0o030000
	fileTypeDirectory   fileType = 0o040000
	fileTypeBlockDevice fileType = 0o060000
	fileTypeMuxBlock    fileType = 0o070000
	fileTypeRegular     fileType = 0o100000
)

// on-disk inode layout; 64 bytes, 8 per block, numbered from 1
const (
	inodeModeStart  = 0  // u16
	inodeNlinkStart = 2  // i16 on disk, never negative in practice
	inodeUIDStart   = 4  // u16
	inodeGIDStart   = 6  // u16
	inodeSizeStart  = 8  // u32, bytes
	inodeAddrStart  = 12 // 13 x 3-byte block numbers, 1 pad byte
	inodeAtimeStart = 52 // u32, seconds since the epoch
	inodeMtimeStart = 56 // u32
	inodeCtimeStart = 60 // u32

	directSlots        = 10
	singleIndirectSlot = 10
	doubleIndirectSlot = 11
	tripleIndirectSlot = 12
	addrSlots          = 13
)

// Inode is the in-memory form of one on-disk inode, with the 13-slot
// address table already expanded into a flat list of data blocks. Special
// files carry no usable block list for this reader, so theirs is empty.
type Inode struct {
	Number     uint32
	Mode       uint16
	Nlink      uint16
	UID        uint16
	GID        uint16
	Size       uint32
	AccessTime time.Time
	ModTime    time.Time
	CreateTime time.Time
	// Blocks is the flattened, in-order data block list. Every entry is
	// non-zero; holes (zero slots) in the address table are skipped, so
	// the list can be shorter than the slots in use suggest.
	Blocks []uint32
}

func (in *Inode) fileType() fileType {
	return fileType(in.Mode) & fileTypeMask
}

func (in *Inode) IsDir() bool {
	return in.fileType() == fileTypeDirectory
}

func (in *Inode) IsRegular() bool {
	return in.fileType() == fileTypeRegular
}

// TypeChar is the single-letter type code used in listings: D for
// directories, R for regular files, S for everything else.
func (in *Inode) TypeChar() byte {
	switch {
	case in.IsDir():
		return 'D'
	case in.IsRegular():
		return 'R'
	default:
		return 'S'
	}
}

// Perm is the permission bits of the inode as a host file mode. The
// set-uid/gid and sticky bits are deliberately dropped.
func (in *Inode) Perm() os.FileMode {
	return os.FileMode(in.Mode) & 0o777
}

// inodePosition computes where inode n lives in the inode list: the
// partition-relative block and the 64-byte slot within it.
func inodePosition(n uint32) (block, index uint32) {
	return inodeListBlock + (n-1)/inodesPerBlock, (n - 1) % inodesPerBlock
}

// ReadInode loads inode n and expands its address table into the flat
// block list. A non-zero triple indirect slot fails with
// ErrTripleIndirect before anything is expanded from it.
func (fs *FileSystem) ReadInode(n uint32) (*Inode, error) {
	if n == 0 {
		return nil, ErrInvalidInode
	}
	block, index := inodePosition(n)
	b, err := fs.ReadBlock(block)
	if err != nil {
		return nil, fmt.Errorf("could not read inode %d: %w", n, err)
	}
	raw := b[index*inodeSize : (index+1)*inodeSize]

	in := Inode{
		Number:     n,
		Mode:       binary.BigEndian.Uint16(raw[inodeModeStart : inodeModeStart+2]),
		Nlink:      binary.BigEndian.Uint16(raw[inodeNlinkStart : inodeNlinkStart+2]),
		UID:        binary.BigEndian.Uint16(raw[inodeUIDStart : inodeUIDStart+2]),
		GID:        binary.BigEndian.Uint16(raw[inodeGIDStart : inodeGIDStart+2]),
		Size:       binary.BigEndian.Uint32(raw[inodeSizeStart : inodeSizeStart+4]),
		AccessTime: time.Unix(int64(binary.BigEndian.Uint32(raw[inodeAtimeStart:inodeAtimeStart+4])), 0).UTC(),
		ModTime:    time.Unix(int64(binary.BigEndian.Uint32(raw[inodeMtimeStart:inodeMtimeStart+4])), 0).UTC(),
		CreateTime: time.Unix(int64(binary.BigEndian.Uint32(raw[inodeCtimeStart:inodeCtimeStart+4])), 0).UTC(),
	}

	// special files have no data blocks this reader can use
	if !in.IsDir() && !in.IsRegular() {
		return &in, nil
	}

	addrs := make([]uint32, addrSlots)
	for i := 0; i < addrSlots; i++ {
		addrs[i] = decodeAddr3(raw[inodeAddrStart+i*3 : inodeAddrStart+i*3+3])
	}

	if addrs[tripleIndirectSlot] != 0 {
		return nil, fmt.Errorf("inode %d: %w", n, ErrTripleIndirect)
	}

	for i := 0; i < directSlots; i++ {
		if addrs[i] != 0 {
			in.Blocks = append(in.Blocks, addrs[i])
		}
	}
	if addrs[singleIndirectSlot] != 0 {
		if in.Blocks, err = fs.expandIndirect(addrs[singleIndirectSlot], in.Blocks); err != nil {
			return nil, fmt.Errorf("inode %d: %w", n, err)
		}
	}
	if addrs[doubleIndirectSlot] != 0 {
		b, err := fs.ReadBlock(addrs[doubleIndirectSlot])
		if err != nil {
			return nil, fmt.Errorf("inode %d: could not read double indirect block: %w", n, err)
		}
		for _, a := range decodeAddrBlock(b) {
			if a == 0 {
				continue
			}
			if in.Blocks, err = fs.expandIndirect(a, in.Blocks); err != nil {
				return nil, fmt.Errorf("inode %d: %w", n, err)
			}
		}
	}

	return &in, nil
}

// expandIndirect appends the non-zero entries of one indirect block to the
// block list.
func (fs *FileSystem) expandIndirect(block uint32, list []uint32) ([]uint32, error) {
	b, err := fs.ReadBlock(block)
	if err != nil {
		return list, fmt.Errorf("could not read indirect block %d: %w", block, err)
	}
	for _, a := range decodeAddrBlock(b) {
		if a != 0 {
			list = append(list, a)
		}
	}
	return list, nil
}

// BadBlocks reports which of the inode's data blocks fall at or past the
// partition's good bound, where the original drive stopped reading back
// cleanly. Content extracted from such blocks is suspect.
func (fs *FileSystem) BadBlocks(in *Inode) []uint32 {
	var bad []uint32
	for _, b := range in.Blocks {
		if b >= fs.part.GoodUpperBound {
			bad = append(bad, b)
		}
	}
	return bad
}
