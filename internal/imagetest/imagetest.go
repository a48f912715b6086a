// Package imagetest builds small synthetic disk images in the on-disk
// format the decoder expects: big-endian fields, 64-byte inodes with
// 3-byte addresses, 16-byte directory entries. Tests assemble a partition
// block by block and open the result as a backend.File.
package imagetest

import (
	"bytes"
	"encoding/binary"
	"io/fs"

	"github.com/v7fs/go-v7fs/backend"
	"github.com/v7fs/go-v7fs/partition"
)

const (
	BlockSize      = 512
	InodeSize      = 64
	InodesPerBlock = 8
)

// Builder assembles the blocks of one partition inside an image.
type Builder struct {
	part   partition.Partition
	blocks map[uint32][]byte
}

func New(p partition.Partition) *Builder {
	return &Builder{
		part:   p,
		blocks: map[uint32][]byte{},
	}
}

// SetBlock stores data as partition-relative block n, padded to a full
// block.
func (b *Builder) SetBlock(n uint32, data []byte) {
	if len(data) > BlockSize {
		panic("imagetest: block data too long")
	}
	block := make([]byte, BlockSize)
	copy(block, data)
	b.blocks[n] = block
}

// SetInode places a raw 64-byte inode at its proper slot, numbering from 1
// with the inode list starting at partition block 2.
func (b *Builder) SetInode(n uint32, raw []byte) {
	if len(raw) != InodeSize {
		panic("imagetest: inode must be 64 bytes")
	}
	blockNum := 2 + (n-1)/InodesPerBlock
	index := (n - 1) % InodesPerBlock
	block, ok := b.blocks[blockNum]
	if !ok {
		block = make([]byte, BlockSize)
		b.blocks[blockNum] = block
	}
	copy(block[index*InodeSize:], raw)
}

// Bytes renders the whole image, partition offset included.
func (b *Builder) Bytes() []byte {
	img := make([]byte, (int(b.part.Start)+int(b.part.Size))*BlockSize)
	for n, block := range b.blocks {
		copy(img[(int(b.part.Start)+int(n))*BlockSize:], block)
	}
	return img
}

// Open returns the rendered image as a backend.File.
func (b *Builder) Open() backend.File {
	return &memFile{contents: bytes.NewReader(b.Bytes())}
}

// Superblock encodes a superblock with the given fields; the free-block
// and free-inode caches are left zero.
func Superblock(isize uint16, fsize uint32, nfree, ninode uint16, modTime uint32) []byte {
	b := make([]byte, BlockSize)
	binary.BigEndian.PutUint16(b[0:2], isize)
	binary.BigEndian.PutUint32(b[2:6], fsize)
	binary.BigEndian.PutUint16(b[6:8], nfree)
	binary.BigEndian.PutUint16(b[208:210], ninode)
	binary.BigEndian.PutUint32(b[414:418], modTime)
	return b
}

// Inode encodes one 64-byte on-disk inode. addrs fills the 13-slot address
// table in order; missing slots stay zero.
func Inode(mode, nlink, uid, gid uint16, size uint32, addrs []uint32, atime, mtime, ctime uint32) []byte {
	if len(addrs) > 13 {
		panic("imagetest: at most 13 address slots")
	}
	b := make([]byte, InodeSize)
	binary.BigEndian.PutUint16(b[0:2], mode)
	binary.BigEndian.PutUint16(b[2:4], nlink)
	binary.BigEndian.PutUint16(b[4:6], uid)
	binary.BigEndian.PutUint16(b[6:8], gid)
	binary.BigEndian.PutUint32(b[8:12], size)
	for i, a := range addrs {
		b[12+i*3] = byte(a >> 16)
		b[12+i*3+1] = byte(a >> 8)
		b[12+i*3+2] = byte(a)
	}
	binary.BigEndian.PutUint32(b[52:56], atime)
	binary.BigEndian.PutUint32(b[56:60], mtime)
	binary.BigEndian.PutUint32(b[60:64], ctime)
	return b
}

// DirEntry encodes one 16-byte directory entry. Names longer than 14
// bytes are a caller bug.
func DirEntry(inode uint16, name string) []byte {
	if len(name) > 14 {
		panic("imagetest: name longer than 14 bytes")
	}
	b := make([]byte, 16)
	binary.BigEndian.PutUint16(b[0:2], inode)
	copy(b[2:], name)
	return b
}

// DirBlock packs entries into one directory block.
func DirBlock(entries ...[]byte) []byte {
	var b []byte
	for _, e := range entries {
		b = append(b, e...)
	}
	return b
}

// AddrBlock encodes an indirect block of big-endian 4-byte block numbers.
func AddrBlock(addrs ...uint32) []byte {
	b := make([]byte, BlockSize)
	for i, a := range addrs {
		binary.BigEndian.PutUint32(b[i*4:], a)
	}
	return b
}

// memFile serves a built image from memory as a backend.File.
type memFile struct {
	contents *bytes.Reader
}

var _ backend.File = (*memFile)(nil)

func (m *memFile) Stat() (fs.FileInfo, error) {
	return nil, backend.ErrNotSuitable
}

func (m *memFile) Read(b []byte) (int, error) {
	return m.contents.Read(b)
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	return m.contents.ReadAt(p, off)
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	return m.contents.Seek(offset, whence)
}

func (m *memFile) Close() error {
	return nil
}
