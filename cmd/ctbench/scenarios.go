// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/shs-go/shs/ctbench"
	"github.com/shs-go/shs/sha256"
)

// scenario describes one pair of input classes the hash is timed against.
type scenario struct {
	// name uniquely identifies the scenario on the command line and in the
	// report.
	name string

	// description is a one-line summary shown by the list option.
	description string

	// gating indicates whether a leaky verdict for this scenario fails the
	// run.  Scenarios whose classes differ in length are informational only
	// since processing a different number of blocks legitimately takes a
	// different amount of time.
	gating bool

	// run performs iterations measurement rounds, alternating one left and
	// one right invocation per round so slow drift in machine load affects
	// both classes equally.
	run func(r *ctbench.Runner, rng *rand.Rand, iterations int)
}

// randBytes fills a new buffer of the given length from the passed
// deterministic generator.
func randBytes(rng *rand.Rand, length int) []byte {
	buf := make([]byte, length)
	var word [8]byte
	for i := 0; i < length; i += 8 {
		binary.LittleEndian.PutUint64(word[:], rng.Uint64())
		copy(buf[i:], word[:])
	}
	return buf
}

// hashInput returns a measurement closure that hashes the passed message.
func hashInput(msg []byte) func() {
	return func() {
		digest := sha256.Sum256(msg)
		digestSink = digest
	}
}

// digestSink prevents the measured hash computations from being optimized
// away.
var digestSink [sha256.Size]byte

// runLengthPair measures fresh random messages of the two given lengths each
// round.
func runLengthPair(lenLeft, lenRight int) func(*ctbench.Runner, *rand.Rand, int) {
	return func(r *ctbench.Runner, rng *rand.Rand, iterations int) {
		for i := 0; i < iterations; i++ {
			left := randBytes(rng, lenLeft)
			right := randBytes(rng, lenRight)
			r.MeasureOne(ctbench.ClassLeft, hashInput(left))
			r.MeasureOne(ctbench.ClassRight, hashInput(right))
		}
	}
}

// runSpecialVersusRandom measures a fixed special-pattern message against a
// fresh random message of the same length each round.
func runSpecialVersusRandom(special []byte) func(*ctbench.Runner, *rand.Rand, int) {
	return func(r *ctbench.Runner, rng *rand.Rand, iterations int) {
		for i := 0; i < iterations; i++ {
			random := randBytes(rng, len(special))
			r.MeasureOne(ctbench.ClassLeft, hashInput(special))
			r.MeasureOne(ctbench.ClassRight, hashInput(random))
		}
	}
}

// runSingleBitDifference measures pairs of messages that differ in exactly
// one randomly chosen bit.
func runSingleBitDifference(r *ctbench.Runner, rng *rand.Rand, iterations int) {
	for i := 0; i < iterations; i++ {
		left := randBytes(rng, 64)
		right := append([]byte(nil), left...)
		right[rng.IntN(len(right))] ^= 1 << rng.IntN(8)
		r.MeasureOne(ctbench.ClassLeft, hashInput(left))
		r.MeasureOne(ctbench.ClassRight, hashInput(right))
	}
}

// runIntermediateState measures two-block messages that share their first
// block so any timing difference would have to come from the chaining value
// the second compression starts from.
func runIntermediateState(r *ctbench.Runner, rng *rand.Rand, iterations int) {
	for i := 0; i < iterations; i++ {
		left := randBytes(rng, 128)
		right := append([]byte(nil), left...)
		copy(right[64:], randBytes(rng, 64))
		r.MeasureOne(ctbench.ClassLeft, hashInput(left))
		r.MeasureOne(ctbench.ClassRight, hashInput(right))
	}
}

// repeatByte returns a length-n buffer filled with b.
func repeatByte(b byte, n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

// ascendingBytes returns the buffer 0, 1, ..., n-1 truncated to bytes.
func ascendingBytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

// highLowBytes returns a length-n buffer alternating 0x00 and 0xff.
func highLowBytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		if i%2 != 0 {
			buf[i] = 0xff
		}
	}
	return buf
}

// singleOneByte returns a length-n zero buffer whose final byte is 1.
func singleOneByte(n int) []byte {
	buf := make([]byte, n)
	buf[n-1] = 1
	return buf
}

// scenarios is the full suite in the order it is run and reported.
var scenarios = []scenario{{
	name:        "random-vs-random",
	description: "control: two independent random 64-byte messages",
	gating:      true,
	run:         runLengthPair(64, 64),
}, {
	name:        "single-bit-difference",
	description: "64-byte messages differing in one random bit",
	gating:      true,
	run:         runSingleBitDifference,
}, {
	name:        "multiple-blocks",
	description: "independent random 128-byte messages",
	gating:      true,
	run:         runLengthPair(128, 128),
}, {
	name:        "intermediate-state-dependency",
	description: "128-byte messages sharing their first block",
	gating:      true,
	run:         runIntermediateState,
}, {
	name:        "special-values-all-zeros",
	description: "64 zero bytes vs a random 64-byte message",
	gating:      true,
	run:         runSpecialVersusRandom(repeatByte(0x00, 64)),
}, {
	name:        "special-values-all-ones",
	description: "64 0xff bytes vs a random 64-byte message",
	gating:      true,
	run:         runSpecialVersusRandom(repeatByte(0xff, 64)),
}, {
	name:        "special-values-alternating-bits",
	description: "64 0xaa bytes vs a random 64-byte message",
	gating:      true,
	run:         runSpecialVersusRandom(repeatByte(0xaa, 64)),
}, {
	name:        "special-values-single-one",
	description: "63 zero bytes and a final 1 vs a random 64-byte message",
	gating:      true,
	run:         runSpecialVersusRandom(singleOneByte(64)),
}, {
	name:        "special-values-high-low-bytes",
	description: "alternating 0x00/0xff bytes vs a random 64-byte message",
	gating:      true,
	run:         runSpecialVersusRandom(highLowBytes(64)),
}, {
	name:        "special-values-ascending",
	description: "bytes 0..63 vs a random 64-byte message",
	gating:      true,
	run:         runSpecialVersusRandom(ascendingBytes(64)),
}, {
	name:        "length-extremes",
	description: "informational: 1-byte vs 1000-byte random messages",
	run:         runLengthPair(1, 1000),
}, {
	name:        "block-boundary",
	description: "informational: 63-byte vs 65-byte random messages",
	run:         runLengthPair(63, 65),
}, {
	name:        "padding-extremes",
	description: "informational: 55-byte vs 56-byte random messages",
	run:         runLengthPair(55, 56),
}, {
	name:        "two-block-boundary",
	description: "informational: 119-byte vs 120-byte random messages",
	run:         runLengthPair(119, 120),
}}

// findScenario returns the scenario with the given name, or nil when no such
// scenario exists.
func findScenario(name string) *scenario {
	for i := range scenarios {
		if scenarios[i].name == name {
			return &scenarios[i]
		}
	}
	return nil
}
