package v7

import "errors"

var (
	// ErrTripleIndirect is returned when an inode has a non-zero triple
	// indirect slot. No file on the source medium is large enough to need
	// one, so a non-zero slot means the inode is damaged.
	ErrTripleIndirect = errors.New("triple indirect block")

	// ErrBlockOutOfRange is returned when a block number falls outside the
	// partition window. This is a bug or corrupt metadata, not a normal
	// condition.
	ErrBlockOutOfRange = errors.New("block out of partition range")

	// ErrInvalidInode is returned for inode number 0, which does not exist.
	ErrInvalidInode = errors.New("invalid inode number")

	// ErrNotDirectory is returned when a directory operation is attempted
	// on an inode that is not a directory.
	ErrNotDirectory = errors.New("inode is not a directory")
)
