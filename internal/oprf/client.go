// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package oprf

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/internal/tag"
)

// blindSeedLength is the length of the entropy a blind is derived from.
const blindSeedLength = 32

// NewBlind returns a fresh secret blinding scalar, derived from the target's entropy source.
func NewBlind() (*group.Scalar, error) {
	return DeriveKey(entropy.RandomBytes(blindSeedLength), nil)
}

// Blind masks the input with the blinding scalar, which must be secret, non-zero, and used only once.
func Blind(input []byte, blind *group.Scalar) (*group.Element, error) {
	p := Group.HashToGroup(input, dst(tag.OPRFPointPrefix))
	if p.IsIdentity() {
		return nil, ErrIdentityInput
	}

	return p.Multiply(blind), nil
}

// Finalize terminates the OPRF by unblinding the evaluation and hashing the transcript.
func Finalize(input []byte, blind *group.Scalar, evaluation *group.Element) []byte {
	inverse := blind.Copy().Invert()
	unblinded := evaluation.Copy().Multiply(inverse)
	inverse.Zero()

	return finalize(input, unblinded)
}
