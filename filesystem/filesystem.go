// Package filesystem provides the interface and constants shared by
// filesystem implementations. The interesting code is in subpackages,
// e.g. github.com/v7fs/go-v7fs/filesystem/v7
package filesystem

import "errors"

var (
	ErrNotSupported       = errors.New("method not supported by this filesystem")
	ErrReadonlyFilesystem = errors.New("read-only filesystem")
)

// FileSystem is a reference to a single filesystem inside an image
type FileSystem interface {
	// Type return the type of filesystem
	Type() Type
	// Label get the label for the filesystem, or "" if none
	Label() string
}

// Type represents the type of filesystem
type Type int

const (
	// TypeV7 is a seventh-edition unix filesystem
	TypeV7 Type = iota
)
