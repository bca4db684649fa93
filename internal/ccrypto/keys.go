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

// Package ccrypto holds the node's cryptographic primitives: SHA-256 digests,
// Ed25519 key generation/signing/verification, and the Address derivation
// convention.
//
// Ed25519 itself is consumed from the standard library (crypto/ed25519):
// since Go 1.13 that package IS the reference Ed25519 implementation (the
// former golang.org/x/crypto/ed25519 is a now-deprecated alias to it), so
// there is no distinct third-party alternative to prefer here — the spec's
// choice of signature suite is satisfied directly by the standard library.
package ccrypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"

	"github.com/chaintutor/powchain/internal/common"
)

// KeyPair bundles an Ed25519 signing key with its public counterpart.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeyPair creates a fresh Ed25519 key pair using a CSPRNG.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// Sign signs the canonical encoding of msg with the given private key.
func Sign(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// Verify checks a signature over msg against a raw Ed25519 public key. An
// ill-formed public key or signature is treated as a verification failure,
// never as an error — callers always get a plain bool.
func Verify(pubkey []byte, msg []byte, signature []byte) bool {
	if len(pubkey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), msg, signature)
}

// Sha256 returns the SHA-256 digest of data as a Hash.
func Sha256(data []byte) common.Hash {
	return common.Hash(sha256.Sum256(data))
}

// AddressFromPubkey derives an Address from a raw Ed25519 public key: the
// last 20 bytes of the key's SHA-256 digest. This is the convention the
// original spec left as an Open Question; it is pinned here and must be
// shared by every node for addresses to compare equal across the network.
func AddressFromPubkey(pubkey []byte) common.Address {
	digest := sha256.Sum256(pubkey)
	return common.BytesToAddress(digest[len(digest)-common.AddressLength:])
}
