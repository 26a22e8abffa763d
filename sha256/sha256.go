// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sha256 implements the SHA-256 message digest specified by FIPS
// PUB 180-4.
//
// The one-shot [Sum256] function hashes a complete in-memory message while
// [Hasher] provides a rolling hasher for data that arrives incrementally.
// Both paths fold the same block compression function over the message, so
// the chunking of writes never affects the resulting digest.
//
// The implementation contains no data-dependent branches or memory accesses:
// execution time is a function of the message length alone.  The ctbench
// package in this repository verifies that property empirically by sampling
// latency distributions over classes of secret inputs.
package sha256

import (
	"github.com/shs-go/shs/sha256/internal/compress"
)

const (
	// Size is the size of a SHA-256 digest in bytes.
	Size = 32

	// BlockSize is the underlying block size of the hash algorithm in bytes.
	BlockSize = 64

	// MaxMessageLen is the maximum number of bytes a single message may
	// contain.  It is the largest whole byte count whose bit length is
	// representable in the 64-bit length field the FIPS 180-4 padding scheme
	// embeds in the final block.  This is a limit of the standard itself,
	// not of the implementation.
	MaxMessageLen = 1<<61 - 1
)

// Sum256 returns the SHA-256 digest of the passed data.
//
// It panics if the data is longer than [MaxMessageLen] bytes, a size which
// exceeds addressable memory on all supported platforms.  Use [Hasher] to
// surface that condition as an error instead when hashing a stream of
// unknown length.
func Sum256(data []byte) [Size]byte {
	if uint64(len(data)) > MaxMessageLen {
		panic("sha256: message exceeds MaxMessageLen bytes")
	}

	hasher := Hasher{state: compress.InitState()}

	// The only write error conditions are finalization and exceeding the
	// maximum message length, neither of which is possible here.
	_ = hasher.WriteBytes(data)

	var digest [Size]byte
	hasher.finalize(&digest)
	return digest
}
