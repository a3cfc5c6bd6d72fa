// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build js && wasm

package entropy

import (
	"errors"
	"syscall/js"
)

// Source names the entropy source compiled in.
const Source = "browser"

// getRandomValues refuses requests larger than 65536 bytes.
const maxGetRandomValues = 65536

var errNoWebCrypto = errors.New("crypto.getRandomValues is not available in this environment")

func read(p []byte) (err error) {
	c := js.Global().Get("crypto")
	if c.IsUndefined() || c.Get("getRandomValues").IsUndefined() {
		return errNoWebCrypto
	}

	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = jsErr
				return
			}

			panic(r)
		}
	}()

	for len(p) > 0 {
		n := min(len(p), maxGetRandomValues)
		buf := js.Global().Get("Uint8Array").New(n)
		c.Call("getRandomValues", buf)

		if js.CopyBytesToGo(p[:n], buf) != n {
			return errors.New("short read from crypto.getRandomValues")
		}

		p = p[n:]
	}

	return nil
}
