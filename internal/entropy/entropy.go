// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package entropy provides the randomness source selected for the compilation target: the operating system's CSPRNG
// on native targets, and the browser's crypto.getRandomValues when compiled to js/wasm.
package entropy

import "fmt"

// RandomBytes returns random bytes of length len from the target's entropy source.
func RandomBytes(length int) []byte {
	r := make([]byte, length)
	if err := read(r); err != nil {
		// We can as well not panic and try again in a loop
		panic(fmt.Errorf("unexpected error in generating random bytes from the %s source: %w", Source, err))
	}

	return r
}

// Reader is an io.Reader backed by the target's entropy source.
type Reader struct{}

// Read fills p with random bytes.
func (Reader) Read(p []byte) (int, error) {
	if err := read(p); err != nil {
		return 0, err
	}

	return len(p), nil
}
