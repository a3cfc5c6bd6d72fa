// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package message provides the message structures exchanged during registration and login, and their wire framing.
package message

import "github.com/bytemare/dirauth/internal/encoding"

// Version is the wire format version carried in the first byte of every serialized value.
const Version byte = 0x01

// HeaderLength is the length of the version and type prefix of every serialized value.
const HeaderLength = 2

// Type identifies the kind of a serialized value, and is carried in the second byte of its header.
type Type byte

const (
	// TypeRegistrationRequest identifies a RegistrationRequest.
	TypeRegistrationRequest Type = 0x01

	// TypeRegistrationResponse identifies a RegistrationResponse.
	TypeRegistrationResponse Type = 0x02

	// TypeRegistrationRecord identifies a RegistrationRecord.
	TypeRegistrationRecord Type = 0x03

	// TypeKE1 identifies a KE1 message.
	TypeKE1 Type = 0x04

	// TypeKE2 identifies a KE2 message.
	TypeKE2 Type = 0x05

	// TypeKE3 identifies a KE3 message.
	TypeKE3 Type = 0x06

	// TypePasswordEnvelope identifies a stored password envelope.
	TypePasswordEnvelope Type = 0x07

	// TypeServerSetup identifies a serialized server setup.
	TypeServerSetup Type = 0x10

	// TypeServerLoginState identifies a serialized server login state.
	TypeServerLoginState Type = 0x11
)

// String returns a human-readable name of the type.
func (t Type) String() string {
	switch t {
	case TypeRegistrationRequest:
		return "registration request"
	case TypeRegistrationResponse:
		return "registration response"
	case TypeRegistrationRecord:
		return "registration record"
	case TypeKE1:
		return "KE1"
	case TypeKE2:
		return "KE2"
	case TypeKE3:
		return "KE3"
	case TypePasswordEnvelope:
		return "password envelope"
	case TypeServerSetup:
		return "server setup"
	case TypeServerLoginState:
		return "server login state"
	default:
		return "unknown"
	}
}

// Header returns the two byte header of the type.
func (t Type) Header() []byte {
	return []byte{Version, byte(t)}
}

// Frame returns the concatenation of the type's header and the body.
func (t Type) Frame(body ...[]byte) []byte {
	return encoding.Concatenate(append([][]byte{t.Header()}, body...)...)
}
