// Package partition describes the statically-defined windows inside a disk
// image that hold individual filesystems. The source machines this package
// targets carried their partition table compiled into the disk driver, so
// there is nothing on disk to read; concrete tables live in subpackages,
// e.g. github.com/v7fs/go-v7fs/partition/callan.
package partition

// Partition is one filesystem window inside an image. All units are
// 512-byte blocks. GoodUpperBound is the block number past which the
// original medium was unreadable; data at or above it is suspect but is
// still extracted.
type Partition struct {
	Name           string
	Start          uint32
	Size           uint32
	GoodUpperBound uint32
}

// Table is an ordered set of partitions for one disk layout.
type Table interface {
	Type() string
	GetPartitions() []Partition
}
