// Package v7 implements a read-only decoder for the seventh-edition unix
// filesystem as found on big-endian machines of the era: 512-byte blocks,
// 64-byte inodes with 3-byte disk addresses, and fixed 16-byte directory
// entries. It is aimed at offline extraction from captured disk images,
// not at serving as a mountable filesystem.
package v7

import (
	"fmt"

	"github.com/v7fs/go-v7fs/backend"
	"github.com/v7fs/go-v7fs/filesystem"
	"github.com/v7fs/go-v7fs/partition"
)

const (
	// BlockSize is both the I/O unit and the addressing unit
	BlockSize = 512

	// RootInode is the inode of the root directory. Inode 1 is reserved.
	RootInode = 2

	// block 0 of a partition is the boot block and is never referenced
	// through the filesystem; block 1 is the superblock
	superblockBlock = 1
	// the inode list starts at block 2, 8 inodes per block, numbered
	// from 1
	inodeListBlock = 2

	inodeSize      = 64
	inodesPerBlock = BlockSize / inodeSize
	addrsPerBlock  = BlockSize / 4
)

// FileSystem gives read access to one seventh-edition filesystem inside a
// partition window of a disk image.
type FileSystem struct {
	file       backend.File
	part       partition.Partition
	superblock *Superblock
}

// filesystem.FileSystem interface guard
var _ filesystem.FileSystem = (*FileSystem)(nil)

// Read opens the filesystem held in the given partition window of an
// image. The superblock is decoded up front; nothing is validated beyond
// that, because the format has no magic number and the partition table is
// trusted.
func Read(file backend.File, p partition.Partition) (*FileSystem, error) {
	fs := &FileSystem{
		file: file,
		part: p,
	}
	b, err := fs.ReadBlock(superblockBlock)
	if err != nil {
		return nil, fmt.Errorf("could not read superblock of partition %s: %w", p.Name, err)
	}
	if fs.superblock, err = superblockFromBytes(b); err != nil {
		return nil, fmt.Errorf("could not decode superblock of partition %s: %w", p.Name, err)
	}
	return fs, nil
}

// Type return the type of filesystem
func (fs *FileSystem) Type() filesystem.Type {
	return filesystem.TypeV7
}

// Label get the label for the filesystem. The format has none; the
// partition name stands in for it.
func (fs *FileSystem) Label() string {
	return fs.part.Name
}

// Superblock returns the decoded superblock.
func (fs *FileSystem) Superblock() Superblock {
	return *fs.superblock
}

// Partition returns the partition window this filesystem sits in.
func (fs *FileSystem) Partition() partition.Partition {
	return fs.part
}

// ReadBlock reads one whole partition-relative block. Short reads and
// blocks outside the partition window are errors; the caller never sees
// partial data.
func (fs *FileSystem) ReadBlock(n uint32) ([]byte, error) {
	if n >= fs.part.Size {
		return nil, fmt.Errorf("block %d beyond partition %s size %d: %w", n, fs.part.Name, fs.part.Size, ErrBlockOutOfRange)
	}
	b := make([]byte, BlockSize)
	offset := (int64(fs.part.Start) + int64(n)) * BlockSize
	read, err := fs.file.ReadAt(b, offset)
	if err != nil {
		return nil, fmt.Errorf("could not read block %d at offset %d: %w", n, offset, err)
	}
	if read != BlockSize {
		return nil, fmt.Errorf("read %d bytes of block %d instead of %d", read, n, BlockSize)
	}
	return b, nil
}
