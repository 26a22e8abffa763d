// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package compress implements the SHA-256 block compression function
// specified by FIPS 180-4.
//
// It is kept separate from the public sha256 package so the pure
// transformation of (chain value, 64-byte block) -> chain value can be
// tested and benchmarked against the golden values from the specification
// in isolation from padding and buffering concerns.
package compress

import (
	"encoding/binary"
	"math/bits"
)

// BlockSize is the number of bytes compressed per application of the block
// compression function.
const BlockSize = 64

// State houses the running 8-word chain value that the block compression
// function updates as each block is processed.
type State struct {
	CV [8]uint32
}

// InitState returns the initial chain value from FIPS 180-4, section 5.3.3.
// The words are the first 32 bits of the fractional parts of the square
// roots of the first 8 primes.
func InitState() State {
	return State{CV: [8]uint32{
		0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
		0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
	}}
}

// k houses the round constants from FIPS 180-4, section 4.2.2.  The words
// are the first 32 bits of the fractional parts of the cube roots of the
// first 64 primes.
var k = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// Blocks compresses every full 64-byte block in msg into the passed state.
// The caller must ensure len(msg) is a multiple of [BlockSize].
//
// Every operation below is a fixed-cost rotate, shift, or wrapping add with
// no conditional execution keyed on block contents, so the execution time
// depends only on the number of blocks, never on the data in them.
func Blocks(state *State, msg []byte) {
	var w [64]uint32
	h0, h1, h2, h3 := state.CV[0], state.CV[1], state.CV[2], state.CV[3]
	h4, h5, h6, h7 := state.CV[4], state.CV[5], state.CV[6], state.CV[7]
	for len(msg) >= BlockSize {
		// Message schedule per FIPS 180-4, section 6.2.2, step 1.  The first
		// 16 words are the big-endian words of the block and the remainder
		// follow the sigma recurrence.
		for i := 0; i < 16; i++ {
			w[i] = binary.BigEndian.Uint32(msg[i*4:])
		}
		for i := 16; i < 64; i++ {
			v1 := w[i-2]
			s1 := bits.RotateLeft32(v1, -17) ^ bits.RotateLeft32(v1, -19) ^ (v1 >> 10)
			v2 := w[i-15]
			s0 := bits.RotateLeft32(v2, -7) ^ bits.RotateLeft32(v2, -18) ^ (v2 >> 3)
			w[i] = s1 + w[i-7] + s0 + w[i-16]
		}

		// 64 rounds per FIPS 180-4, section 6.2.2, steps 2-3.
		a, b, c, d, e, f, g, h := h0, h1, h2, h3, h4, h5, h6, h7
		for i := 0; i < 64; i++ {
			bigS1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^
				bits.RotateLeft32(e, -25)
			ch := (e & f) ^ (^e & g)
			t1 := h + bigS1 + ch + k[i] + w[i]

			bigS0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^
				bits.RotateLeft32(a, -22)
			maj := (a & b) ^ (a & c) ^ (b & c)
			t2 := bigS0 + maj

			h = g
			g = f
			f = e
			e = d + t1
			d = c
			c = b
			b = a
			a = t1 + t2
		}

		// Davies-Meyer feed-forward per FIPS 180-4, section 6.2.2, step 4.
		h0 += a
		h1 += b
		h2 += c
		h3 += d
		h4 += e
		h5 += f
		h6 += g
		h7 += h

		msg = msg[BlockSize:]
	}
	state.CV = [8]uint32{h0, h1, h2, h3, h4, h5, h6, h7}
}
