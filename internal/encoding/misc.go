// SPDX-License-Identifier: MIT
//
// Copyright (C) 2021-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package encoding

// Concat returns a newly allocated concatenation of a and b.
func Concat(a, b []byte) []byte {
	e := make([]byte, 0, len(a)+len(b))
	e = append(e, a...)
	e = append(e, b...)

	return e
}

// Concat3 returns a newly allocated concatenation of a, b, and c.
func Concat3(a, b, c []byte) []byte {
	e := make([]byte, 0, len(a)+len(b)+len(c))
	e = append(e, a...)
	e = append(e, b...)
	e = append(e, c...)

	return e
}

// SuffixString returns a newly allocated concatenation of a and the string b.
func SuffixString(a []byte, b string) []byte {
	e := make([]byte, 0, len(a)+len(b))
	e = append(e, a...)
	e = append(e, b...)

	return e
}

// Concatenate takes the variadic array of input and returns a concatenation of it.
func Concatenate(input ...[]byte) []byte {
	length := 0
	for _, b := range input {
		length += len(b)
	}

	buf := make([]byte, 0, length)

	for _, in := range input {
		buf = append(buf, in...)
	}

	return buf
}

// Xor returns a new slice holding the byte-wise XOR of a and b, which must be of the same length.
func Xor(a, b []byte) []byte {
	if len(a) != len(b) {
		panic("xoring slices of different length")
	}

	dst := make([]byte, len(a))

	for i, r := range a {
		dst[i] = r ^ b[i]
	}

	return dst
}
