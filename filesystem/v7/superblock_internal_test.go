package v7

import (
	"testing"
	"time"

	"github.com/v7fs/go-v7fs/internal/imagetest"
)

func TestSuperblockFromBytes(t *testing.T) {
	modTime := uint32(400000000) // 1982-09-04T15:06:40Z
	b := imagetest.Superblock(1547, 12376, 50, 100, modTime)

	sb, err := superblockFromBytes(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sb.InodeBlocks != 1547 {
		t.Errorf("isize: got %d instead of 1547", sb.InodeBlocks)
	}
	if sb.Blocks != 12376 {
		t.Errorf("fsize: got %d instead of 12376", sb.Blocks)
	}
	if sb.Nfree != 50 {
		t.Errorf("nfree: got %d instead of 50", sb.Nfree)
	}
	if sb.Ninode != 100 {
		t.Errorf("ninode: got %d instead of 100", sb.Ninode)
	}
	if want := time.Unix(int64(modTime), 0).UTC(); !sb.ModTime.Equal(want) {
		t.Errorf("time: got %v instead of %v", sb.ModTime, want)
	}
}

func TestSuperblockFromBytesShort(t *testing.T) {
	if _, err := superblockFromBytes(make([]byte, 100)); err == nil {
		t.Error("expected an error for a short superblock, got none")
	}
}
