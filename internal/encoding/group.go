// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package encoding

import (
	"crypto/subtle"
	"errors"

	group "github.com/bytemare/crypto"
)

var (
	// ErrElementLength indicates an encoded element of the wrong size for the group.
	ErrElementLength = errors.New("invalid element encoding length")

	// ErrInvalidElement indicates an encoding that does not map to a group element.
	ErrInvalidElement = errors.New("invalid element encoding")

	// ErrIdentityElement indicates that the decoded element is the group's identity element.
	ErrIdentityElement = errors.New("element is the identity element")

	// ErrScalarLength indicates an encoded scalar of the wrong size for the group.
	ErrScalarLength = errors.New("invalid scalar encoding length")

	// ErrInvalidScalar indicates an encoding that does not map to a scalar.
	ErrInvalidScalar = errors.New("invalid scalar encoding")

	// ErrZeroScalar indicates that the decoded scalar is zero.
	ErrZeroScalar = errors.New("scalar is zero")
)

// DecodeElement decodes a group element and rejects the identity element.
func DecodeElement(g group.Group, input []byte) (*group.Element, error) {
	if len(input) != g.ElementLength() {
		return nil, ErrElementLength
	}

	e := g.NewElement()
	if subtle.ConstantTimeCompare(input, e.Encode()) == 1 {
		return nil, ErrIdentityElement
	}

	if err := e.Decode(input); err != nil {
		return nil, errors.Join(ErrInvalidElement, err)
	}

	if e.IsIdentity() {
		return nil, ErrIdentityElement
	}

	return e, nil
}

// DecodeScalar decodes a scalar and rejects zero.
func DecodeScalar(g group.Group, input []byte) (*group.Scalar, error) {
	if len(input) != g.ScalarLength() {
		return nil, ErrScalarLength
	}

	s := g.NewScalar()
	if subtle.ConstantTimeCompare(input, make([]byte, len(input))) == 1 {
		return nil, ErrZeroScalar
	}

	if err := s.Decode(input); err != nil {
		return nil, errors.Join(ErrInvalidScalar, err)
	}

	if s.IsZero() {
		return nil, ErrZeroScalar
	}

	return s, nil
}
