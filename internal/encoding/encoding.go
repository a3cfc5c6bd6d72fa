// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package encoding provides encoding utilities.
package encoding

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrI2OSPLength indicates an integer encoding length that is not supported.
	ErrI2OSPLength = errors.New("requested size is too big")

	// ErrI2OSPValue indicates a value that is negative or does not fit the requested length.
	ErrI2OSPValue = errors.New("value does not fit the requested length")
)

// I2OSP encodes value as a big-endian integer on 1 or 2 bytes.
func I2OSP(value int, length uint16) []byte {
	if length != 1 && length != 2 {
		panic(ErrI2OSPLength)
	}

	if value < 0 || value >= 1<<(8*length) {
		panic(ErrI2OSPValue)
	}

	if length == 1 {
		return []byte{byte(value)}
	}

	return binary.BigEndian.AppendUint16(nil, uint16(value))
}

// EncodeVectorLen returns the input prefixed with its length encoded on length bytes.
func EncodeVectorLen(in []byte, length uint16) []byte {
	return Concat(I2OSP(len(in), length), in)
}

// EncodeVector returns the input prefixed with its length encoded on 2 bytes.
func EncodeVector(in []byte) []byte {
	return EncodeVectorLen(in, 2)
}
