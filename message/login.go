// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package message

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal/encoding"
)

// CredentialRequest represents credential request message.
type CredentialRequest struct {
	BlindedMessage *group.Element `json:"blindedMessage"`
}

// Serialize returns the byte encoding of CredentialRequest.
func (c *CredentialRequest) Serialize() []byte {
	return c.BlindedMessage.Encode()
}

// CredentialResponse represents credential response message.
type CredentialResponse struct {
	EvaluatedMessage *group.Element `json:"evaluatedMessage"`
	MaskingNonce     []byte         `json:"maskingNonce"`
	MaskedResponse   []byte         `json:"maskedResponse"`
}

// Serialize returns the byte encoding of CredentialResponse.
func (c *CredentialResponse) Serialize() []byte {
	return encoding.Concat3(c.EvaluatedMessage.Encode(), c.MaskingNonce, c.MaskedResponse)
}

// KE1 is the first message of the login flow, created by the client and sent to the server.
type KE1 struct {
	CredentialRequest
	ClientNonce          []byte         `json:"clientNonce"`
	ClientPublicKeyshare *group.Element `json:"clientPublicKeyshare"`
}

// Body returns the serialization of the message without its header, as bound into the key exchange transcript.
func (m *KE1) Body() []byte {
	return encoding.Concat3(m.CredentialRequest.Serialize(), m.ClientNonce, m.ClientPublicKeyshare.Encode())
}

// Serialize returns the byte encoding of KE1.
func (m *KE1) Serialize() []byte {
	return TypeKE1.Frame(m.Body())
}

// KE2 is the second message of the login flow, created by the server and sent to the client.
type KE2 struct {
	CredentialResponse
	ServerNonce          []byte         `json:"serverNonce"`
	ServerPublicKeyshare *group.Element `json:"serverPublicKeyshare"`
	ServerMac            []byte         `json:"serverMac"`
}

// Body returns the serialization of the message without its header.
func (m *KE2) Body() []byte {
	return encoding.Concatenate(
		m.CredentialResponse.Serialize(),
		m.ServerNonce,
		m.ServerPublicKeyshare.Encode(),
		m.ServerMac,
	)
}

// Serialize returns the byte encoding of KE2.
func (m *KE2) Serialize() []byte {
	return TypeKE2.Frame(m.Body())
}

// KE3 is the third and last message of the login flow, created by the client and sent to the server.
type KE3 struct {
	ClientMac []byte `json:"clientMac"`
}

// Body returns the serialization of the message without its header.
func (k *KE3) Body() []byte {
	return k.ClientMac
}

// Serialize returns the byte encoding of KE3.
func (k *KE3) Serialize() []byte {
	return TypeKE3.Frame(k.Body())
}
