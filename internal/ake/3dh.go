// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ake provides high-level functions for the 3DH AKE.
package ake

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/internal/oprf"
	"github.com/bytemare/dirauth/internal/tag"
	"github.com/bytemare/dirauth/message"
)

// KeyGen returns a fresh private and public key pair, derived from a seed drawn from the entropy source.
func KeyGen() (*group.Scalar, *group.Element, error) {
	return DeriveKeyPair(entropy.RandomBytes(internal.SeedLength))
}

// DeriveKeyPair deterministically derives a private and public key pair from seed.
func DeriveKeyPair(seed []byte) (*group.Scalar, *group.Element, error) {
	return oprf.DeriveKeyPair(seed, []byte(tag.DeriveDiffieHellmanKeyPair))
}

func diffieHellman(s *group.Scalar, e *group.Element) []byte {
	return e.Copy().Multiply(s).Encode()
}

// Identities holds the client and server identities.
type Identities struct {
	ClientIdentity []byte
	ServerIdentity []byte
}

// SetIdentities returns identities where each unset identity is replaced by the respective public key.
func (id *Identities) SetIdentities(clientPublicKey, serverPublicKey []byte) *Identities {
	out := &Identities{
		ClientIdentity: id.ClientIdentity,
		ServerIdentity: id.ServerIdentity,
	}

	if out.ClientIdentity == nil {
		out.ClientIdentity = clientPublicKey
	}

	if out.ServerIdentity == nil {
		out.ServerIdentity = serverPublicKey
	}

	return out
}

func k3dh(
	p1 *group.Element,
	s1 *group.Scalar,
	p2 *group.Element,
	s2 *group.Scalar,
	p3 *group.Element,
	s3 *group.Scalar,
) []byte {
	return encoding.Concat3(diffieHellman(s1, p1), diffieHellman(s2, p2), diffieHellman(s3, p3))
}

// keys holds the secrets derived from a 3DH exchange.
type keys struct {
	sessionSecret []byte
	serverMac     []byte
	clientMac     []byte
}

func core3DH(
	conf *internal.Configuration,
	identities *Identities,
	ikm []byte,
	ke1 *message.KE1,
	response *message.CredentialResponse,
	serverNonce []byte,
	serverPublicKeyshare *group.Element,
) *keys {
	h := conf.NewHash()
	h.Write(preamble(conf, identities, ke1, response, serverNonce, serverPublicKeyshare)...)
	transcript2 := h.Sum()

	serverMacKey, clientMacKey, sessionSecret := deriveKeys(conf.KDF, ikm, transcript2)
	serverMac := conf.MAC.MAC(serverMacKey, transcript2)

	h.Write(serverMac)
	clientMac := conf.MAC.MAC(clientMacKey, h.Sum())

	return &keys{
		sessionSecret: sessionSecret,
		serverMac:     serverMac,
		clientMac:     clientMac,
	}
}

func preamble(
	conf *internal.Configuration,
	identities *Identities,
	ke1 *message.KE1,
	response *message.CredentialResponse,
	serverNonce []byte,
	serverPublicKeyshare *group.Element,
) [][]byte {
	return [][]byte{
		[]byte(tag.VersionTag),
		encoding.EncodeVector(conf.Context),
		encoding.EncodeVector(identities.ClientIdentity),
		ke1.Body(),
		encoding.EncodeVector(identities.ServerIdentity),
		response.Serialize(),
		serverNonce,
		serverPublicKeyshare.Encode(),
	}
}

func buildLabel(length int, label, context []byte) []byte {
	return encoding.Concat3(
		encoding.I2OSP(length, 2),
		encoding.EncodeVectorLen(append([]byte(tag.LabelPrefix), label...), 1),
		encoding.EncodeVectorLen(context, 1))
}

func expandLabel(h *internal.KDF, secret, label, context []byte) []byte {
	return h.Expand(secret, buildLabel(h.Size(), label, context), h.Size())
}

func deriveKeys(h *internal.KDF, ikm, context []byte) (serverMacKey, clientMacKey, sessionSecret []byte) {
	prk := h.Extract(nil, ikm)
	handshakeSecret := expandLabel(h, prk, []byte(tag.Handshake), context)
	sessionSecret = expandLabel(h, prk, []byte(tag.SessionKey), context)
	serverMacKey = expandLabel(h, handshakeSecret, []byte(tag.MacServer), nil)
	clientMacKey = expandLabel(h, handshakeSecret, []byte(tag.MacClient), nil)

	return serverMacKey, clientMacKey, sessionSecret
}
