// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import (
	"crypto"
	"crypto/hmac"

	"github.com/bytemare/hash"
)

// Hash functions hold no running state across calls: each operation instantiates its own function so that a single
// configuration can serve concurrent flows.

// NewKDF returns a newly instantiated KDF.
func NewKDF(id crypto.Hash) *KDF {
	return &KDF{id: id}
}

// KDF wraps a hash function and exposes KDF methods.
type KDF struct {
	id crypto.Hash
}

func (k *KDF) function() *hash.Fixed {
	return hash.FromCrypto(k.id).GetHashFunction()
}

// Extract exposes an Extract only KDF method.
func (k *KDF) Extract(salt, ikm []byte) []byte {
	return k.function().HKDFExtract(ikm, salt)
}

// Expand exposes an Expand only KDF method.
func (k *KDF) Expand(key, info []byte, length int) []byte {
	return k.function().HKDFExpand(key, info, length)
}

// Size returns the output size of the Extract method.
func (k *KDF) Size() int {
	return k.id.Size()
}

// NewMac returns a newly instantiated Mac.
func NewMac(id crypto.Hash) *Mac {
	return &Mac{id: id}
}

// Mac wraps a hash function and exposes Message Authentication Code methods.
type Mac struct {
	id crypto.Hash
}

// Equal returns a constant-time comparison of the input.
func (m *Mac) Equal(a, b []byte) bool {
	return hmac.Equal(a, b)
}

// MAC computes a MAC over the message using key.
func (m *Mac) MAC(key, message []byte) []byte {
	return hash.FromCrypto(m.id).GetHashFunction().Hmac(message, key)
}

// Size returns the MAC's output length.
func (m *Mac) Size() int {
	return m.id.Size()
}

// NewHash returns a newly instantiated Hash, with an empty running state.
func NewHash(id crypto.Hash) *Hash {
	return &Hash{h: hash.FromCrypto(id).GetHashFunction()}
}

// Hash wraps a hash function and exposes only necessary hashing methods.
type Hash struct {
	h *hash.Fixed
}

// Size returns the output size of the hashing function.
func (h *Hash) Size() int {
	return h.h.Size()
}

// Sum returns the current hash of the running state, without modifying it.
func (h *Hash) Sum() []byte {
	return h.h.Sum(nil)
}

// Write adds input to the running state.
func (h *Hash) Write(p ...[]byte) {
	for _, in := range p {
		_, _ = h.h.Write(in)
	}
}
