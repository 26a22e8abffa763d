// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sha256

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrMessageTooLong indicates the total message length exceeds
	// MaxMessageLen bytes so its bit length can no longer be represented in
	// the 64-bit length field the padding scheme requires.
	ErrMessageTooLong = ErrorKind("ErrMessageTooLong")

	// ErrHasherFinalized indicates an attempt to write additional data to a
	// hasher, or to finalize it a second time, after Finalize has already
	// produced a digest.
	ErrHasherFinalized = ErrorKind("ErrHasherFinalized")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to hashing.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific reason
// for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
