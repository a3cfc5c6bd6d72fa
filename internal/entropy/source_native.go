// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !(js && wasm)

package entropy

import cryptorand "crypto/rand"

// Source names the entropy source compiled in.
const Source = "os"

func read(p []byte) error {
	_, err := cryptorand.Read(p)
	return err
}
