// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package oprf implements the Elliptic Curve Oblivious Pseudorandom Function (EC-OPRF) from RFC 9497, in base mode
// over ristretto255-SHA512.
package oprf

import (
	"crypto"
	"errors"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/tag"
)

var (
	// ErrIdentityInput indicates that the input hashed to the identity element.
	ErrIdentityInput = errors.New("input maps to the identity element")

	// ErrDeriveKeyPair indicates that no valid key could be derived from the seed.
	ErrDeriveKeyPair = errors.New("key derivation failed")
)

const (
	// Group is the prime-order group used by the OPRF.
	Group = group.Ristretto255Sha512

	// Hash is the hash function associated to the group.
	Hash = crypto.SHA512

	// base identifies the OPRF non-verifiable, base mode.
	base = 0x00
)

// contextString is "OPRFV1-" || I2OSP(mode, 1) || "-" || identifier.
var contextString = encoding.Concatenate(
	[]byte(tag.OPRFVersionPrefix),
	encoding.I2OSP(base, 1),
	[]byte("-"),
	[]byte(tag.OPRFSuite),
)

func dst(prefix string) []byte {
	return encoding.Concat([]byte(prefix), contextString)
}

// DeriveKey deterministically maps the seed and info to a non-zero scalar.
func DeriveKey(seed, info []byte) (*group.Scalar, error) {
	deriveInput := encoding.Concat(seed, encoding.EncodeVector(info))
	d := dst(tag.DeriveKeyPairInternal)

	for counter := 0; counter < 256; counter++ {
		sk := Group.HashToScalar(encoding.Concat(deriveInput, encoding.I2OSP(counter, 1)), d)
		if !sk.IsZero() {
			return sk, nil
		}
	}

	return nil, ErrDeriveKeyPair
}

// DeriveKeyPair returns the scalar derived from seed and info, and its public element.
func DeriveKeyPair(seed, info []byte) (*group.Scalar, *group.Element, error) {
	sk, err := DeriveKey(seed, info)
	if err != nil {
		return nil, nil, err
	}

	return sk, Group.Base().Multiply(sk), nil
}

// finalize returns the OPRF output for the input and its unblinded evaluation.
func finalize(input []byte, unblinded *group.Element) []byte {
	h := internal.NewHash(Hash)
	h.Write(
		encoding.EncodeVector(input),
		encoding.EncodeVector(unblinded.Encode()),
		[]byte(tag.OPRFFinalize),
	)

	return h.Sum()
}
