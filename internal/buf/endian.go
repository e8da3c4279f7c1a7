// Package buf contains bounds-tolerant little-endian helpers for the in-band
// block headers an arena keeps inside its region.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// PutU32LE writes v to b in little-endian order. It reports false, writing
// nothing, when b is too short.
func PutU32LE(b []byte, v uint32) bool {
	if len(b) < 4 {
		return false
	}
	binary.LittleEndian.PutUint32(b, v)
	return true
}

// PutI32LE writes v to b in little-endian order. It reports false, writing
// nothing, when b is too short.
func PutI32LE(b []byte, v int32) bool {
	return PutU32LE(b, uint32(v))
}
