// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sha256

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/shs-go/shs/sha256/internal/compress"
)

// Hasher provides a rolling SHA-256 hasher.  Data may be written to it
// incrementally in any number of calls and with any chunking; identical
// overall byte sequences always produce identical digests.
//
// Finalize applies the FIPS 180-4 padding and returns the digest.  It may
// only be called once per hashing operation; both further writes and a
// second Finalize report an error with the kind [ErrHasherFinalized].  Reset
// returns the hasher to its initial state for a new operation.
//
// It also implements the [hash.Hash] interface.
//
// A Hasher instance must not be used concurrently from multiple goroutines.
// Independent instances require no coordination since the only process-wide
// data is read-only.
type Hasher struct {
	state compress.State
	buf   [BlockSize]byte
	nx    int    // number of pending bytes in buf
	total uint64 // total message bytes written
	done  bool   // set once Finalize has produced a digest
}

// Ensure the hasher implements the hash.Hash interface.
var _ hash.Hash = (*Hasher)(nil)

// NewHasher returns a rolling hasher for computing the SHA-256 digest of a
// stream of data.
func NewHasher() *Hasher {
	return &Hasher{state: compress.InitState()}
}

// New returns a new [hash.Hash] computing the SHA-256 digest.
func New() hash.Hash {
	return NewHasher()
}

// Reset returns the hasher to its initial state so it is ready to compute
// the digest of a new message.
func (h *Hasher) Reset() {
	h.state = compress.InitState()
	h.nx = 0
	h.total = 0
	h.done = false
}

// Size returns the size of the resulting digest in bytes.
//
// It is part of the [hash.Hash] interface.
func (h *Hasher) Size() int {
	return Size
}

// BlockSize returns the underlying block size of the hash algorithm.
//
// It is part of the [hash.Hash] interface.
func (h *Hasher) BlockSize() int {
	return BlockSize
}

// WriteBytes adds the passed bytes to the message being hashed.  Every full
// block the pending data completes is compressed immediately; at most one
// partial block is buffered.
//
// The returned error will have the kind [ErrHasherFinalized] when the hasher
// has already been finalized and the kind [ErrMessageTooLong] when the write
// would push the total message length beyond [MaxMessageLen] bytes.  In the
// latter case the hasher state is left unchanged, so no digest is ever
// produced from a truncated message.
func (h *Hasher) WriteBytes(data []byte) error {
	if h.done {
		return makeError(ErrHasherFinalized, "hasher has already been finalized")
	}
	if uint64(len(data)) > MaxMessageLen-h.total {
		desc := fmt.Sprintf("writing %d bytes to a message of %d bytes "+
			"exceeds the maximum message length of %d bytes", len(data),
			h.total, uint64(MaxMessageLen))
		return makeError(ErrMessageTooLong, desc)
	}
	h.total += uint64(len(data))

	// Fill and compress any partially filled block first.
	if h.nx > 0 {
		n := copy(h.buf[h.nx:], data)
		h.nx += n
		if h.nx < BlockSize {
			return nil
		}
		compress.Blocks(&h.state, h.buf[:])
		h.nx = 0
		data = data[n:]
	}

	// Compress as many full blocks as remain directly from the caller's
	// buffer and stash the rest for a future write.
	if full := len(data) &^ (BlockSize - 1); full > 0 {
		compress.Blocks(&h.state, data[:full])
		data = data[full:]
	}
	h.nx = copy(h.buf[:], data)
	return nil
}

// WriteString adds the passed string to the message being hashed.  See
// [Hasher.WriteBytes] for the error semantics.
func (h *Hasher) WriteString(s string) error {
	if h.done {
		return makeError(ErrHasherFinalized, "hasher has already been finalized")
	}
	if uint64(len(s)) > MaxMessageLen-h.total {
		desc := fmt.Sprintf("writing %d bytes to a message of %d bytes "+
			"exceeds the maximum message length of %d bytes", len(s),
			h.total, uint64(MaxMessageLen))
		return makeError(ErrMessageTooLong, desc)
	}
	h.total += uint64(len(s))

	if h.nx > 0 {
		n := copy(h.buf[h.nx:], s)
		h.nx += n
		if h.nx < BlockSize {
			return nil
		}
		compress.Blocks(&h.state, h.buf[:])
		h.nx = 0
		s = s[n:]
	}
	for len(s) >= BlockSize {
		copy(h.buf[:], s)
		compress.Blocks(&h.state, h.buf[:])
		s = s[BlockSize:]
	}
	h.nx = copy(h.buf[:], s)
	return nil
}

// WriteByte adds the passed byte to the message being hashed.  See
// [Hasher.WriteBytes] for the error semantics.
//
// It also implements the [io.ByteWriter] interface.
func (h *Hasher) WriteByte(b byte) error {
	var buf [1]byte
	buf[0] = b
	return h.WriteBytes(buf[:])
}

// Write adds the passed bytes to the message being hashed.  It never returns
// a short write count without an error.  See [Hasher.WriteBytes] for the
// error semantics.
//
// It is part of the [hash.Hash] interface.
func (h *Hasher) Write(data []byte) (int, error) {
	if err := h.WriteBytes(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// finalize applies the FIPS 180-4 padding to the pending block buffer,
// compresses the final block(s), and serializes the chain value into digest.
//
// The padding appends a single 0x80 byte followed by the minimum number of
// zero bytes needed for the 64-bit big-endian message bit length to land at
// the end of a block.  When fewer than 8 bytes remain in the current block
// after the 0x80 byte, the length spills into an additional block, which
// happens exactly for messages whose length mod 64 is in [56, 63].
func (h *Hasher) finalize(digest *[Size]byte) {
	h.buf[h.nx] = 0x80
	if h.nx >= 56 {
		for i := h.nx + 1; i < BlockSize; i++ {
			h.buf[i] = 0
		}
		compress.Blocks(&h.state, h.buf[:])
		for i := 0; i < 56; i++ {
			h.buf[i] = 0
		}
	} else {
		for i := h.nx + 1; i < 56; i++ {
			h.buf[i] = 0
		}
	}
	binary.BigEndian.PutUint64(h.buf[56:], h.total<<3)
	compress.Blocks(&h.state, h.buf[:])

	for i, v := range h.state.CV {
		binary.BigEndian.PutUint32(digest[i*4:], v)
	}
}

// Finalize terminates the message being hashed and returns its SHA-256
// digest.  It may only be called once per hashing operation; subsequent
// calls, like subsequent writes, return an error with the kind
// [ErrHasherFinalized] until the hasher is reset.
func (h *Hasher) Finalize() ([Size]byte, error) {
	var digest [Size]byte
	if h.done {
		err := makeError(ErrHasherFinalized, "hasher has already been finalized")
		return digest, err
	}
	h.done = true

	// Pad and compress a snapshot so the running state continues to describe
	// the unpadded message.  That keeps Sum correct even after finalization.
	snapshot := *h
	snapshot.finalize(&digest)
	return digest, nil
}

// Sum appends the SHA-256 digest of the message written to this point to b
// and returns the resulting slice.  The digest is computed over a snapshot
// of the hasher state, so the hasher itself is not finalized and writing may
// continue afterwards.
//
// It is part of the [hash.Hash] interface.
func (h *Hasher) Sum(b []byte) []byte {
	snapshot := *h
	var digest [Size]byte
	snapshot.finalize(&digest)
	return append(b, digest[:]...)
}
