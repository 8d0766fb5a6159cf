// Package hash provides the archive's content hashing primitives: a
// streaming Hasher abstraction over a selectable Algorithm and an opaque
// Result type with a hex codec.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"

	"github.com/pkg/errors"
)

// streamChunkSize is the buffer size used by Stream, matching the
// archive's own read granularity for hashing plaintext file contents.
const streamChunkSize = 64 * 1024

// Algorithm identifies a hash algorithm usable for an archive. The archive
// selects one at init time and never changes it.
type Algorithm string

// AlgorithmSHA256 is the only algorithm this archive format currently
// supports.
const AlgorithmSHA256 Algorithm = "Sha256"

// Supported reports whether the algorithm is a known, usable value.
func (a Algorithm) Supported() bool {
	return a == AlgorithmSHA256
}

// Factory returns a constructor for the underlying hash.Hash implementation.
// It panics on an unsupported algorithm; callers must validate with
// Supported first (archive.Init does this once, at creation time).
func (a Algorithm) Factory() func() hash.Hash {
	switch a {
	case AlgorithmSHA256:
		return sha256.New
	default:
		panic("unsupported hash algorithm: " + string(a))
	}
}

// Hasher computes a Result incrementally.
type Hasher struct {
	algorithm Algorithm
	h         hash.Hash
}

// New constructs a Hasher for the given algorithm.
func New(algorithm Algorithm) *Hasher {
	return &Hasher{algorithm: algorithm, h: algorithm.Factory()()}
}

// Write feeds bytes into the running hash. It never returns an error and
// satisfies io.Writer so a Hasher can be used as a tee destination.
func (h *Hasher) Write(data []byte) (int, error) {
	return h.h.Write(data)
}

// Sum finalizes the hash and returns the Result.
func (h *Hasher) Sum() Result {
	return Result{algorithm: h.algorithm, data: h.h.Sum(nil)}
}

// Stream reads r in fixed-size chunks until EOF, updating the hash, and
// returns the finalized Result.
func Stream(algorithm Algorithm, r io.Reader) (Result, error) {
	h := New(algorithm)
	buffer := make([]byte, streamChunkSize)
	for {
		n, err := r.Read(buffer)
		if n > 0 {
			h.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return Result{}, errors.Wrap(err, "unable to read stream")
		}
	}
	return h.Sum(), nil
}

// Result is an opaque hash value plus the algorithm that produced it. Two
// Results are equal iff their byte sequences are equal.
type Result struct {
	algorithm Algorithm
	data      []byte
}

// FromHex decodes a lowercase-or-uppercase hex string into a Result for the
// given algorithm.
func FromHex(algorithm Algorithm, text string) (Result, error) {
	data, err := hex.DecodeString(text)
	if err != nil {
		return Result{}, errors.Wrap(err, "invalid hex hash value")
	}
	return Result{algorithm: algorithm, data: data}, nil
}

// Bytes returns the raw hash bytes.
func (r Result) Bytes() []byte {
	return r.data
}

// Equal reports whether two Results carry identical bytes.
func (r Result) Equal(other Result) bool {
	if len(r.data) != len(other.data) {
		return false
	}
	for i := range r.data {
		if r.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// String returns the lowercase hex encoding of the hash, used as both the
// manifest's hash value and the content store's blob filename.
func (r Result) String() string {
	return hex.EncodeToString(r.data)
}

// ShortString returns the first 4 bytes (8 hex characters) of the hash
// followed by "...", for compact human-facing display (backup/restore
// progress logging).
func (r Result) ShortString() string {
	n := len(r.data)
	if n > 4 {
		n = 4
	}
	return hex.EncodeToString(r.data[:n]) + "..."
}
