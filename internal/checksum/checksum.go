// Package checksum implements the two integrity functions used by the image
// format: a reflected CRC32 for the superblock and inodes and a one-byte XOR
// for directory entries.
package checksum

import "hash/crc32"

// Polynomial is the reflected CRC32 polynomial.
const Polynomial = 0xEDB88320

// table is built once from Polynomial and never written afterwards.
var table = crc32.MakeTable(Polynomial)

// CRC32 returns the CRC32 of data, starting from 0xFFFFFFFF and XORing the
// result with 0xFFFFFFFF.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, table)
}

// XOR8 returns the XOR of every byte in data.
func XOR8(data []byte) uint8 {
	var x uint8
	for _, b := range data {
		x ^= b
	}
	return x
}
