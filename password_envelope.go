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
	"errors"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/message"
)

var errEmptyEnvelope = errors.New("password envelope was not created by RegistrationFinish or deserialization")

// PasswordEnvelope is the per-user record the server persists after registration. It is not plaintext-equivalent but
// must be stored as sensitive data. It is immutable: accessors return copies.
type PasswordEnvelope struct {
	clientPublicKey *group.Element
	maskingKey      []byte
	envelope        []byte
}

func (p *PasswordEnvelope) check(conf *internal.Configuration) error {
	if !isValidElement(p.clientPublicKey) ||
		len(p.maskingKey) != conf.HashLength() || len(p.envelope) != conf.EnvelopeSize {
		return errEmptyEnvelope
	}

	return nil
}

// ClientPublicKey returns the encoding of the client's public key, or nil for an empty envelope.
func (p *PasswordEnvelope) ClientPublicKey() []byte {
	if p.clientPublicKey == nil {
		return nil
	}

	return p.clientPublicKey.Encode()
}

// MaskingKey returns a copy of the masking key.
func (p *PasswordEnvelope) MaskingKey() []byte {
	return append([]byte(nil), p.maskingKey...)
}

// Envelope returns a copy of the sealed envelope.
func (p *PasswordEnvelope) Envelope() []byte {
	return append([]byte(nil), p.envelope...)
}

// Serialize returns the byte encoding of the PasswordEnvelope, for storage.
func (p *PasswordEnvelope) Serialize() []byte {
	return message.TypePasswordEnvelope.Frame(p.ClientPublicKey(), p.maskingKey, p.envelope)
}

// PasswordEnvelope takes a serialized PasswordEnvelope and returns its deserialized form.
func (d *Deserializer) PasswordEnvelope(input []byte) (*PasswordEnvelope, error) {
	b, err := body(input, message.TypePasswordEnvelope, d.recordLength())
	if err != nil {
		return nil, ErrPasswordEnvelope.with(err)
	}

	r, err := d.decodeRecord(b)
	if err != nil {
		return nil, ErrPasswordEnvelope.with(err)
	}

	return &PasswordEnvelope{
		clientPublicKey: r.PublicKey,
		maskingKey:      r.MaskingKey,
		envelope:        r.Envelope,
	}, nil
}

