package v7

import "encoding/binary"

// On-disk scalars are big-endian; 16- and 32-bit fields go through
// binary.BigEndian directly. The inode address table is the exception:
// thirteen 3-byte block numbers that have to be assembled by hand.

// decodeAddr3 assembles a 3-byte big-endian block number. Zero means
// "no block".
func decodeAddr3(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// decodeAddrBlock converts a whole indirect block of 128 big-endian
// 4-byte block numbers to host order. Zero entries stay zero.
func decodeAddrBlock(b []byte) []uint32 {
	addrs := make([]uint32, addrsPerBlock)
	for i := range addrs {
		addrs[i] = binary.BigEndian.Uint32(b[i*4 : i*4+4])
	}
	return addrs
}
