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

package types

import "github.com/holiman/uint256"

// Uint128 represents the spec's u128 fields (transaction value and nonce,
// block header timestamp). It is backed by holiman/uint256.Int — the same
// 256-bit fixed-width integer the node already uses for Hash/difficulty
// arithmetic — used here with the top 128 bits always zero, rather than
// introducing a second big-integer dependency for a value range uint256
// already covers.
type Uint128 struct {
	inner uint256.Int
}

// NewUint128 builds a Uint128 from a uint64, the common case (synthetic
// transactions, test fixtures).
func NewUint128(v uint64) *Uint128 {
	u := &Uint128{}
	u.inner.SetUint64(v)
	return u
}

// Uint128FromBytes16 decodes a 16-byte big-endian buffer into a Uint128.
func Uint128FromBytes16(b []byte) *Uint128 {
	u := &Uint128{}
	var buf [32]byte
	copy(buf[16:], b)
	u.inner.SetBytes(buf[:])
	return u
}

// PutBytes16 writes u as a 16-byte big-endian value into dst.
func (u *Uint128) PutBytes16(dst *[16]byte) {
	full := u.inner.Bytes32()
	copy(dst[:], full[16:])
}

// Cmp compares two Uint128 values.
func (u *Uint128) Cmp(other *Uint128) int {
	return u.inner.Cmp(&other.inner)
}

// Uint64 returns the low 64 bits of u, for tests and logging.
func (u *Uint128) Uint64() uint64 {
	return u.inner.Uint64()
}

func (u *Uint128) String() string {
	return u.inner.Dec()
}
