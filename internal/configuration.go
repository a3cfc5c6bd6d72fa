// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal provides structures and functions to operate the protocol that are not part of the public API.
package internal

import (
	"crypto"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/ksf"
	"github.com/bytemare/dirauth/internal/tag"
)

const (
	// NonceLength is the default length used for nonces.
	NonceLength = 32

	// SeedLength is the default length used for seeds.
	SeedLength = 32

	// Group is the prime-order group of the OPRF and the AKE.
	Group = group.Ristretto255Sha512

	// HashFunction is the hash function underlying the KDF, MAC, and transcript hash.
	HashFunction = crypto.SHA512
)

// Configuration is the internal representation of the instance runtime parameters. It is immutable once built.
type Configuration struct {
	KDF          *KDF
	MAC          *Mac
	KSF          *ksf.KSF
	Context      []byte
	NonceLen     int
	EnvelopeSize int
	Group        group.Group
}

// NewConfiguration returns the internal configuration for the given context and KSF.
func NewConfiguration(context []byte, k *ksf.KSF) *Configuration {
	mac := NewMac(HashFunction)

	return &Configuration{
		KDF:          NewKDF(HashFunction),
		MAC:          mac,
		KSF:          k,
		Context:      context,
		NonceLen:     NonceLength,
		EnvelopeSize: NonceLength + mac.Size(),
		Group:        Group,
	}
}

// NewHash returns a fresh transcript hash.
func (c *Configuration) NewHash() *Hash {
	return NewHash(HashFunction)
}

// HashLength returns the output length of the hash function.
func (c *Configuration) HashLength() int {
	return HashFunction.Size()
}

// ElementLength returns the length of an encoded group element.
func (c *Configuration) ElementLength() int {
	return c.Group.ElementLength()
}

// MaskedResponseLength returns the length of the masked credential response.
func (c *Configuration) MaskedResponseLength() int {
	return c.ElementLength() + c.EnvelopeSize
}

// XorResponse is used to encrypt and decrypt the response in KE2.
func (c *Configuration) XorResponse(key, nonce, in []byte) []byte {
	pad := c.KDF.Expand(
		key,
		encoding.SuffixString(nonce, tag.CredentialResponsePad),
		c.MaskedResponseLength(),
	)

	return encoding.Xor(pad, in)
}
