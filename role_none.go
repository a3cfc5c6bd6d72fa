// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build dirauth_noclient && dirauth_noserver

package dirauth

// At least one role must be compiled in.
var _ int = "dirauth: building with both dirauth_noclient and dirauth_noserver leaves nothing to link"
