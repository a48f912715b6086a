package v7

import (
	"fmt"
	"io"
)

// File reads the contents of one regular file through its flattened block
// list. The declared inode size is authoritative: exactly Size bytes are
// delivered, with the final block truncated to the tail. A zero-length
// file reads as immediately empty.
type File struct {
	*Inode
	filesystem *FileSystem
	offset     int64
}

// FileReader returns a reader over the inode's content.
func (fs *FileSystem) FileReader(in *Inode) *File {
	return &File{
		Inode:      in,
		filesystem: fs,
	}
}

// Read reads up to len(b) bytes from the file, returning io.EOF once the
// declared size has been delivered. A block list too short for the size is
// an error: that means the inode's block count disagrees with its size in
// the direction this reader cannot paper over.
func (fl *File) Read(b []byte) (int, error) {
	fileSize := int64(fl.Size)
	if fl.offset >= fileSize {
		return 0, io.EOF
	}

	bytesToRead := int64(len(b))
	if fl.offset+bytesToRead > fileSize {
		bytesToRead = fileSize - fl.offset
	}

	readBytes := int64(0)
	for readBytes < bytesToRead {
		blockIndex := int(fl.offset / BlockSize)
		blockOffset := fl.offset % BlockSize
		if blockIndex >= len(fl.Blocks) {
			return int(readBytes), fmt.Errorf("inode %d: size %d needs block %d but the block list has %d entries",
				fl.Number, fl.Size, blockIndex, len(fl.Blocks))
		}
		block, err := fl.filesystem.ReadBlock(fl.Blocks[blockIndex])
		if err != nil {
			return int(readBytes), fmt.Errorf("inode %d: %w", fl.Number, err)
		}
		n := copy(b[readBytes:bytesToRead], block[blockOffset:])
		readBytes += int64(n)
		fl.offset += int64(n)
	}

	var err error
	if fl.offset >= fileSize {
		err = io.EOF
	}
	return int(readBytes), err
}

// Seek set the offset to a particular point in the file
func (fl *File) Seek(offset int64, whence int) (int64, error) {
	newOffset := int64(0)
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekEnd:
		newOffset = int64(fl.Size) + offset
	case io.SeekCurrent:
		newOffset = fl.offset + offset
	}
	if newOffset < 0 {
		return fl.offset, fmt.Errorf("cannot set offset %d before start of file", offset)
	}
	fl.offset = newOffset
	return fl.offset, nil
}
