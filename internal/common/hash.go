// Copyright 2024 The powchain Authors
// This file is part of the powchain library.
//
// The powchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The powchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the powchain library. If not, see <http://www.gnu.org/licenses/>.

// Package common holds the fixed-size value types shared across the node:
// the 32-byte block/transaction Hash and the 20-byte Address.
package common

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// HashLength is the number of bytes in a Hash.
const HashLength = 32

// Hash is a 32-byte value, interpreted as a big-endian unsigned integer when
// compared against a difficulty target.
type Hash [HashLength]byte

// BytesToHash sets the trailing bytes of b into a Hash (left-padded with
// zero if b is shorter than HashLength, truncated from the left if longer).
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the all-zero hash (the genesis parent).
func (h Hash) IsZero() bool { return h == Hash{} }

// Big returns the hash's big-endian value as a uint256, for difficulty
// comparisons: a block is valid iff hash(B).Big().Cmp(difficulty.Big()) <= 0.
func (h Hash) Big() *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}

// Cmp compares two hashes as big-endian unsigned integers.
func (h Hash) Cmp(other Hash) int {
	return h.Big().Cmp(other.Big())
}

// LessOrEqual reports whether h, as a big-endian integer, is <= target —
// the proof-of-work acceptance test.
func (h Hash) LessOrEqual(target Hash) bool {
	return h.Cmp(target) <= 0
}

// MarshalText implements encoding.TextMarshaler for debug/JSON output.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// Format implements fmt.Formatter so %v, %x and %s all render sensibly.
func (h Hash) Format(s fmt.State, c rune) {
	switch c {
	case 'x', 'X':
		fmt.Fprintf(s, "%"+string(c), h[:])
	default:
		fmt.Fprint(s, h.Hex())
	}
}
