// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package dirauth implements OPAQUE-3DH password authentication for a directory service over Ristretto255 and
// SHA-512, with Argon2id password hardening.
//
// A client registers once, turning its password into a PasswordEnvelope the server stores without ever seeing the
// password, and then logs in with a two round-trip handshake that ends with both sides holding the same session key.
// Each flow is a start and a finish call on each side, linked by a single-use state object the caller keeps for the
// duration of the attempt.
//
// Build tags select the roles compiled in: dirauth_noclient drops the client, dirauth_noserver drops the server.
// Compiled to js/wasm, the client draws its entropy from the browser's crypto.getRandomValues.
package dirauth
