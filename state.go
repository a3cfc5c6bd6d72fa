// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !dirauth_noserver

package dirauth

import (
	"github.com/bytemare/dirauth/message"
)

// ServerLoginState holds what the server needs between LoginStart and LoginFinish. It is single use. It can be
// serialized to be kept outside the process between the two calls, in which case it must be stored as a secret.
type ServerLoginState struct {
	expectedClientMac []byte
	sessionKey        []byte
	used              bool
}

func (s *ServerLoginState) flush() {
	s.used = true
	clear(s.expectedClientMac)
	clear(s.sessionKey)
	s.expectedClientMac = nil
	s.sessionKey = nil
}

// Serialize returns the byte encoding of the state.
func (s *ServerLoginState) Serialize() []byte {
	return message.TypeServerLoginState.Frame(s.expectedClientMac, s.sessionKey)
}

// ServerLoginState takes a serialized ServerLoginState and returns its deserialized form.
func (d *Deserializer) ServerLoginState(input []byte) (*ServerLoginState, error) {
	b, err := body(input, message.TypeServerLoginState, d.conf.MAC.Size()+d.conf.KDF.Size())
	if err != nil {
		return nil, ErrServerLoginState.with(err)
	}

	return &ServerLoginState{
		expectedClientMac: append([]byte(nil), b[:d.conf.MAC.Size()]...),
		sessionKey:        append([]byte(nil), b[d.conf.MAC.Size():]...),
	}, nil
}
