// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package keyrecovery provides utility functions and structures allowing credential management.
package keyrecovery

import (
	"errors"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/oprf"
	"github.com/bytemare/dirauth/internal/tag"
)

var (
	// ErrEnvelopeInvalidMac indicates that the envelope's authentication tag did not verify.
	ErrEnvelopeInvalidMac = errors.New("invalid envelope authentication tag")

	// ErrEnvelopeLength indicates a serialized envelope of the wrong size.
	ErrEnvelopeLength = errors.New("invalid envelope length")
)

// Envelope represents the OPAQUE envelope.
type Envelope struct {
	Nonce   []byte
	AuthTag []byte
}

// Serialize returns the byte serialization of the envelope.
func (e *Envelope) Serialize() []byte {
	return encoding.Concat(e.Nonce, e.AuthTag)
}

// DeserializeEnvelope splits a serialized envelope into its nonce and authentication tag.
func DeserializeEnvelope(conf *internal.Configuration, input []byte) (*Envelope, error) {
	if len(input) != conf.EnvelopeSize {
		return nil, ErrEnvelopeLength
	}

	return &Envelope{
		Nonce:   input[:conf.NonceLen],
		AuthTag: input[conf.NonceLen:],
	}, nil
}

func exportKey(conf *internal.Configuration, randomizedPassword, nonce []byte) []byte {
	return conf.KDF.Expand(randomizedPassword, encoding.SuffixString(nonce, tag.ExportKey), conf.KDF.Size())
}

func authTag(conf *internal.Configuration, randomizedPassword, nonce, ctc []byte) []byte {
	authKey := conf.KDF.Expand(randomizedPassword, encoding.SuffixString(nonce, tag.AuthKey), conf.KDF.Size())
	return conf.MAC.MAC(authKey, encoding.Concat(nonce, ctc))
}

// cleartextCredentials assumes that clientPublicKey, serverPublicKey are non-nil valid group elements.
func cleartextCredentials(clientPublicKey, serverPublicKey, clientIdentity, serverIdentity []byte) []byte {
	if clientIdentity == nil {
		clientIdentity = clientPublicKey
	}

	if serverIdentity == nil {
		serverIdentity = serverPublicKey
	}

	return encoding.Concat3(
		serverPublicKey,
		encoding.EncodeVector(serverIdentity),
		encoding.EncodeVector(clientIdentity),
	)
}

func deriveDiffieHellmanKeyPair(
	conf *internal.Configuration,
	randomizedPassword, nonce []byte,
) (*group.Scalar, *group.Element, error) {
	seed := conf.KDF.Expand(randomizedPassword, encoding.SuffixString(nonce, tag.ExpandPrivateKey), internal.SeedLength)
	return oprf.DeriveKeyPair(seed, []byte(tag.DeriveDiffieHellmanKeyPair))
}

// Store returns the client's Envelope, its public key, and the additional export key.
func Store(
	conf *internal.Configuration,
	randomizedPassword, serverPublicKey,
	clientIdentity, serverIdentity,
	nonce []byte,
) (env *Envelope, pku *group.Element, export []byte, err error) {
	sku, pku, err := deriveDiffieHellmanKeyPair(conf, randomizedPassword, nonce)
	if err != nil {
		return nil, nil, nil, err
	}

	sku.Zero()

	ctc := cleartextCredentials(
		pku.Encode(),
		serverPublicKey,
		clientIdentity,
		serverIdentity,
	)
	auth := authTag(conf, randomizedPassword, nonce, ctc)
	export = exportKey(conf, randomizedPassword, nonce)

	env = &Envelope{
		Nonce:   nonce,
		AuthTag: auth,
	}

	return env, pku, export, nil
}

// Recover returns the client's private and public key, as well as the secret export key.
func Recover(
	conf *internal.Configuration,
	randomizedPassword, serverPublicKey, clientIdentity, serverIdentity []byte,
	envelope *Envelope,
) (clientSecretKey *group.Scalar, clientPublicKey *group.Element, export []byte, err error) {
	clientSecretKey, clientPublicKey, err = deriveDiffieHellmanKeyPair(conf, randomizedPassword, envelope.Nonce)
	if err != nil {
		return nil, nil, nil, err
	}

	ctc := cleartextCredentials(
		clientPublicKey.Encode(),
		serverPublicKey,
		clientIdentity,
		serverIdentity,
	)

	expectedTag := authTag(conf, randomizedPassword, envelope.Nonce, ctc)
	if !conf.MAC.Equal(expectedTag, envelope.AuthTag) {
		clientSecretKey.Zero()
		return nil, nil, nil, ErrEnvelopeInvalidMac
	}

	export = exportKey(conf, randomizedPassword, envelope.Nonce)

	return clientSecretKey, clientPublicKey, export, nil
}
