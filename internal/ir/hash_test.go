package ir

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/spaolacci/murmur3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash128_KnownVectors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		seed0  string
		seed31 string
	}{
		{"empty", "", "00000000000000000000000000000000", "24700f9f1986800ab4fcc880530dd0ed"},
		{"single byte", "a", "85555565f6597889e6b53a48510e895a", "4ca5e27cea02e8c25578e2936b0061e4"},
		{"15 bytes tail only", "0123456789abcde", "a62dd5f6c0bf23514fccf50c7c544cf0", "e420d68a349bfce60017e73415c63729"},
		{"exact block", "0123456789abcdef", "4be06d94cf4ad1a787c35b5c63a708da", "bd96b791c5d8e195dea62ef6707241b6"},
		{"block plus one", "0123456789abcdefg", "8e32612daa45f9de0800f4c206c372ee", "2bac69e7b33aff5167db12a8f2534bcd"},
		{"hello", "hello", "cbd8a7b341bd9b025b1e906a48ae1d19", "e4c67dbb6870107c1129fe575d609dfb"},
		{"pangram", "The quick brown fox jumps over the lazy dog", "e34bbc7bbc071b6c7a433ca9c49a9347", "0be0b79c4b0742dc6f542fbba04a21a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.seed0, HashString(tt.input, 0))
			assert.Equal(t, tt.seed31, HashString(tt.input, 31))
		})
	}
}

func TestHash128_FixedWidthLowercase(t *testing.T) {
	for _, s := range []string{"", "x", strings.Repeat("z", 1000)} {
		h := HashString(s, 0)
		require.Len(t, h, HashHexLen)
		assert.Equal(t, strings.ToLower(h), h)
		_, err := hex.DecodeString(h)
		assert.NoError(t, err)
	}
}

func TestHash128_Deterministic(t *testing.T) {
	input := []byte(`language:"en-US"|platform:"iPhone"`)
	first := Hash128(input, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Hash128(input, 0))
	}
	assert.Equal(t, "9f5f87ad89883bb183a21a79e5141fd3", first)
}

func TestHash128_SeedChangesOutput(t *testing.T) {
	assert.NotEqual(t, HashString("hello", 0), HashString("hello", 31))
}

// Every tail length and a few block counts against an independent
// implementation of the same construction.
func TestSum128_MatchesReferenceImplementation(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}

	for _, seed := range []uint32{0, 1, 31, 0xdeadbeef} {
		for n := 0; n <= len(data); n++ {
			h1, h2 := Sum128(data[:n], seed)
			r1, r2 := murmur3.Sum128WithSeed(data[:n], seed)
			require.Equal(t, r1, h1, "h1 len=%d seed=%d", n, seed)
			require.Equal(t, r2, h2, "h2 len=%d seed=%d", n, seed)
		}
	}
}

func TestHash128_BigEndianLayout(t *testing.T) {
	data := []byte("layout")
	h1, h2 := Sum128(data, 7)

	raw, err := hex.DecodeString(Hash128(data, 7))
	require.NoError(t, err)
	assert.Equal(t, h1, binary.BigEndian.Uint64(raw[:8]))
	assert.Equal(t, h2, binary.BigEndian.Uint64(raw[8:]))
}

func TestHashString_UTF8Bytes(t *testing.T) {
	s := "café \U0001F600"
	assert.Equal(t, Hash128([]byte(s), 0), HashString(s, 0))
}

func TestParseHash(t *testing.T) {
	h1, h2 := Sum128([]byte("hello"), 0)
	g1, g2, ok := ParseHash(HashString("hello", 0))
	require.True(t, ok)
	assert.Equal(t, h1, g1)
	assert.Equal(t, h2, g2)

	for _, bad := range []string{"", "abc", "CBD8A7B341BD9B025B1E906A48AE1D19", "zzd8a7b341bd9b025b1e906a48ae1d19", HashString("x", 0) + "0"} {
		_, _, ok := ParseHash(bad)
		assert.False(t, ok, "input %q", bad)
	}
}
