package ir

import (
	"encoding/binary"
	"encoding/hex"
	"math/bits"
)

// Mixing constants of the 128-bit x64 murmur construction.
const (
	mixC1 uint64 = 0x87c37b91114253d5
	mixC2 uint64 = 0x4cf5ad432745937f

	fmixC1 uint64 = 0xff51afd7ed558ccd
	fmixC2 uint64 = 0xc4ceb9fe1a85ec53
)

// HashHexLen is the length of a rendered 128-bit hash.
const HashHexLen = 32

// Sum128 computes the 128-bit x64 murmur hash of data with the given seed and
// returns the two 64-bit accumulators.
//
// CRITICAL: the bit layout must match the client-side fingerprint library
// exactly. Word order, rotation amounts, constants and the tail order
// (second word before first) are all load-bearing.
func Sum128(data []byte, seed uint32) (h1, h2 uint64) {
	h1 = uint64(seed)
	h2 = uint64(seed)

	nblocks := len(data) / 16
	for i := 0; i < nblocks; i++ {
		block := data[i*16 : i*16+16]
		k1 := binary.LittleEndian.Uint64(block[0:8])
		k2 := binary.LittleEndian.Uint64(block[8:16])

		k1 *= mixC1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= mixC2
		h1 ^= k1

		h1 = bits.RotateLeft64(h1, 27)
		h1 += h2
		h1 = h1*5 + 0x52dce729

		k2 *= mixC2
		k2 = bits.RotateLeft64(k2, 33)
		k2 *= mixC1
		h2 ^= k2

		h2 = bits.RotateLeft64(h2, 31)
		h2 += h1
		h2 = h2*5 + 0x38495ab5
	}

	tail := data[nblocks*16:]
	var k1, k2 uint64
	switch len(tail) {
	case 15:
		k2 ^= uint64(tail[14]) << 48
		fallthrough
	case 14:
		k2 ^= uint64(tail[13]) << 40
		fallthrough
	case 13:
		k2 ^= uint64(tail[12]) << 32
		fallthrough
	case 12:
		k2 ^= uint64(tail[11]) << 24
		fallthrough
	case 11:
		k2 ^= uint64(tail[10]) << 16
		fallthrough
	case 10:
		k2 ^= uint64(tail[9]) << 8
		fallthrough
	case 9:
		k2 ^= uint64(tail[8])
		k2 *= mixC2
		k2 = bits.RotateLeft64(k2, 33)
		k2 *= mixC1
		h2 ^= k2
		fallthrough
	case 8:
		k1 ^= uint64(tail[7]) << 56
		fallthrough
	case 7:
		k1 ^= uint64(tail[6]) << 48
		fallthrough
	case 6:
		k1 ^= uint64(tail[5]) << 40
		fallthrough
	case 5:
		k1 ^= uint64(tail[4]) << 32
		fallthrough
	case 4:
		k1 ^= uint64(tail[3]) << 24
		fallthrough
	case 3:
		k1 ^= uint64(tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint64(tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint64(tail[0])
		k1 *= mixC1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= mixC2
		h1 ^= k1
	}

	length := uint64(len(data))
	h1 ^= length
	h2 ^= length

	h1 += h2
	h2 += h1

	h1 = fmix64(h1)
	h2 = fmix64(h2)

	h1 += h2
	h2 += h1

	return h1, h2
}

// fmix64 is the avalanche finalizer.
func fmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= fmixC1
	k ^= k >> 33
	k *= fmixC2
	k ^= k >> 33
	return k
}

// Hash128 returns Sum128 rendered as 32 lowercase hex characters:
// h1 big-endian followed by h2 big-endian.
func Hash128(data []byte, seed uint32) string {
	h1, h2 := Sum128(data, seed)
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], h1)
	binary.BigEndian.PutUint64(out[8:16], h2)
	return hex.EncodeToString(out[:])
}

// HashString hashes the UTF-8 bytes of s.
func HashString(s string, seed uint32) string {
	return Hash128([]byte(s), seed)
}

// ParseHash decodes a rendered hash back into its accumulators.
// Only the canonical form (32 lowercase hex characters) is accepted.
func ParseHash(s string) (h1, h2 uint64, ok bool) {
	if len(s) != HashHexLen {
		return 0, 0, false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return 0, 0, false
		}
	}
	var raw [16]byte
	if _, err := hex.Decode(raw[:], []byte(s)); err != nil {
		return 0, 0, false
	}
	return binary.BigEndian.Uint64(raw[:8]), binary.BigEndian.Uint64(raw[8:]), true
}
