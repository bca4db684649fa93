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

import (
	"github.com/chaintutor/powchain/internal/ccrypto"
	"github.com/chaintutor/powchain/internal/common"
)

// Transaction is the unsigned payment intent: no balance or fee semantics
// are enforced by this node (see spec Non-goals), only transfer of the
// sender/receiver/value/nonce tuple through the mempool and into blocks.
type Transaction struct {
	Sender   common.Address
	Receiver common.Address
	Value    *Uint128
	Nonce    *Uint128
}

// Encode returns the canonical binary encoding of the transaction, used both
// as the signing payload and as the prefix of a SignedTransaction's hash
// input.
func (t *Transaction) Encode() []byte {
	e := &encoder{}
	e.buf.Write(t.Sender[:])
	e.buf.Write(t.Receiver[:])
	e.writeUint128(t.Value)
	e.writeUint128(t.Nonce)
	return e.bytes()
}

func decodeTransaction(d *decoder) (*Transaction, error) {
	senderB, err := d.take(common.AddressLength)
	if err != nil {
		return nil, err
	}
	receiverB, err := d.take(common.AddressLength)
	if err != nil {
		return nil, err
	}
	value, err := d.readUint128()
	if err != nil {
		return nil, err
	}
	nonce, err := d.readUint128()
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Sender:   common.BytesToAddress(senderB),
		Receiver: common.BytesToAddress(receiverB),
		Value:    value,
		Nonce:    nonce,
	}, nil
}

// SignedTransaction binds a Transaction to the Ed25519 signature and public
// key that authorize it.
type SignedTransaction struct {
	Transaction *Transaction
	Signature   []byte
	Pubkey      []byte
}

// Sign produces a SignedTransaction by signing t's canonical encoding with
// the given key pair.
func Sign(t *Transaction, kp ccrypto.KeyPair) *SignedTransaction {
	sig := ccrypto.Sign(kp.Private, t.Encode())
	return &SignedTransaction{
		Transaction: t,
		Signature:   sig,
		Pubkey:      append([]byte(nil), kp.Public...),
	}
}

// VerifySignature reports whether st's embedded signature and public key
// authorize its transaction. It never errors: a malformed key or signature
// is simply an invalid transaction.
func (st *SignedTransaction) VerifySignature() bool {
	return ccrypto.Verify(st.Pubkey, st.Transaction.Encode(), st.Signature)
}

// Encode returns the canonical binary encoding of the whole signed
// transaction (transaction, then length-prefixed signature and pubkey).
func (st *SignedTransaction) Encode() []byte {
	e := &encoder{}
	e.buf.Write(st.Transaction.Encode())
	e.writeBytesLP(st.Signature)
	e.writeBytesLP(st.Pubkey)
	return e.bytes()
}

// DecodeSignedTransaction parses a SignedTransaction from its canonical
// binary encoding, as produced by SignedTransaction.Encode.
func DecodeSignedTransaction(raw []byte) (*SignedTransaction, error) {
	return decodeSignedTransaction(newDecoder(raw))
}

func decodeSignedTransaction(d *decoder) (*SignedTransaction, error) {
	tx, err := decodeTransaction(d)
	if err != nil {
		return nil, err
	}
	sig, err := d.readBytesLP()
	if err != nil {
		return nil, err
	}
	pub, err := d.readBytesLP()
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{
		Transaction: tx,
		Signature:   append([]byte(nil), sig...),
		Pubkey:      append([]byte(nil), pub...),
	}, nil
}

// Hash returns the SHA-256 digest of the signed transaction's canonical
// encoding — the key used throughout the mempool.
func (st *SignedTransaction) Hash() common.Hash {
	return ccrypto.Sha256(st.Encode())
}
