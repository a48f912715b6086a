// Package callan holds the partition table of the Callan CWC's Rodime
// drive. The table was compiled into the machine's disk driver and never
// written to the medium, so it is reproduced here as constants.
package callan

import "github.com/v7fs/go-v7fs/partition"

// The drive geometry is 8 heads x 17 sectors = 136 blocks per cylinder,
// with 306 cylinders empirically readable. The good bounds below reflect
// where reads started failing during image capture.
var partitions = []partition.Partition{
	{Name: "root", Start: 136, Size: 12376, GoodUpperBound: 20000},
	{Name: "usr", Start: 17408, Size: 26112, GoodUpperBound: 24208},
}

// Table is the compiled-in Callan partition table.
type Table struct{}

var _ partition.Table = Table{}

func (t Table) Type() string {
	return "callan"
}

func (t Table) GetPartitions() []partition.Partition {
	p := make([]partition.Partition, len(partitions))
	copy(p, partitions)
	return p
}

// Select picks the partition for a CLI argument: an argument whose first
// letter is 'b' or 'B' selects the usr filesystem, anything else (including
// no argument at all) selects root.
func (t Table) Select(arg string) partition.Partition {
	if len(arg) > 0 && (arg[0] == 'b' || arg[0] == 'B') {
		return partitions[1]
	}
	return partitions[0]
}
