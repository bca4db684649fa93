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

package common

import "encoding/hex"

// AddressLength is the number of bytes in an Address.
const AddressLength = 20

// Address identifies a transaction sender or receiver. It is derived
// deterministically from an Ed25519 public key: see ccrypto.AddressFromPubkey.
type Address [AddressLength]byte

// BytesToAddress sets the trailing bytes of b into an Address.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a Address) IsZero() bool { return a == Address{} }
