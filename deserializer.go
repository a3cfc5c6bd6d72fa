// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package dirauth

import (
	"errors"
	"fmt"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/message"
)

var (
	errInvalidMessageLength = errors.New("invalid message length for the configuration")
	errUnknownVersion       = errors.New("unknown message version")
	errWrongType            = errors.New("unexpected message type")
	errInvalidBlindedData   = errors.New("blinded data is an invalid point")
	errInvalidEvaluatedData = errors.New("invalid OPRF evaluation")
	errInvalidServerPK      = errors.New("invalid server public key")
	errInvalidClientPK      = errors.New("invalid client public key")
	errNilMessage           = errors.New("nil message or message field")
	errNilState             = errors.New("nil state")
	errStateUsed            = errors.New("state has already been used")
)

func isValidElement(e *group.Element) bool {
	return e != nil && !e.IsIdentity()
}

// Deserializer exposes the message deserialization functions.
type Deserializer struct {
	conf *internal.Configuration
}

// body verifies the header of input against the expected type and returns the body, which must be of length bytes.
func body(input []byte, t message.Type, length int) ([]byte, error) {
	if len(input) < message.HeaderLength {
		return nil, errInvalidMessageLength
	}

	if input[0] != message.Version {
		return nil, fmt.Errorf("%w: %d", errUnknownVersion, input[0])
	}

	if message.Type(input[1]) != t {
		return nil, fmt.Errorf("%w: expected %s, got 0x%02x", errWrongType, t, input[1])
	}

	if len(input) != message.HeaderLength+length {
		return nil, errInvalidMessageLength
	}

	return input[message.HeaderLength:], nil
}

// RegistrationRequest takes a serialized RegistrationRequest message and returns a deserialized
// RegistrationRequest structure.
func (d *Deserializer) RegistrationRequest(registrationRequest []byte) (*message.RegistrationRequest, error) {
	b, err := body(registrationRequest, message.TypeRegistrationRequest, d.conf.ElementLength())
	if err != nil {
		return nil, ErrRegistrationRequest.with(err)
	}

	blindedMessage, err := encoding.DecodeElement(d.conf.Group, b)
	if err != nil {
		return nil, ErrRegistrationRequest.with(ErrInvalidInput, errInvalidBlindedData, err)
	}

	return &message.RegistrationRequest{BlindedMessage: blindedMessage}, nil
}

// RegistrationResponse takes a serialized RegistrationResponse message and returns a deserialized
// RegistrationResponse structure.
func (d *Deserializer) RegistrationResponse(registrationResponse []byte) (*message.RegistrationResponse, error) {
	b, err := body(registrationResponse, message.TypeRegistrationResponse, 2*d.conf.ElementLength())
	if err != nil {
		return nil, ErrRegistrationResponse.with(err)
	}

	evaluatedMessage, err := encoding.DecodeElement(d.conf.Group, b[:d.conf.ElementLength()])
	if err != nil {
		return nil, ErrRegistrationResponse.with(ErrInvalidInput, errInvalidEvaluatedData, err)
	}

	pks, err := encoding.DecodeElement(d.conf.Group, b[d.conf.ElementLength():])
	if err != nil {
		return nil, ErrRegistrationResponse.with(ErrInvalidInput, errInvalidServerPK, err)
	}

	return &message.RegistrationResponse{
		EvaluatedMessage: evaluatedMessage,
		Pks:              pks,
	}, nil
}

func (d *Deserializer) recordLength() int {
	return d.conf.ElementLength() + d.conf.HashLength() + d.conf.EnvelopeSize
}

func (d *Deserializer) decodeRecord(b []byte) (*message.RegistrationRecord, error) {
	pk := b[:d.conf.ElementLength()]
	maskingKey := b[d.conf.ElementLength() : d.conf.ElementLength()+d.conf.HashLength()]
	env := b[d.conf.ElementLength()+d.conf.HashLength():]

	pku, err := encoding.DecodeElement(d.conf.Group, pk)
	if err != nil {
		return nil, errors.Join(ErrInvalidInput, errInvalidClientPK, err)
	}

	return &message.RegistrationRecord{
		PublicKey:  pku,
		MaskingKey: append([]byte(nil), maskingKey...),
		Envelope:   append([]byte(nil), env...),
	}, nil
}

// RegistrationRecord takes a serialized RegistrationRecord message and returns a deserialized
// RegistrationRecord structure.
func (d *Deserializer) RegistrationRecord(record []byte) (*message.RegistrationRecord, error) {
	b, err := body(record, message.TypeRegistrationRecord, d.recordLength())
	if err != nil {
		return nil, ErrRegistrationRecord.with(err)
	}

	r, err := d.decodeRecord(b)
	if err != nil {
		return nil, ErrRegistrationRecord.with(err)
	}

	return r, nil
}

func (d *Deserializer) ke1Length() int {
	return d.conf.ElementLength() + d.conf.NonceLen + d.conf.ElementLength()
}

// KE1 takes a serialized KE1 message and returns a deserialized KE1 structure. A well-framed KE1 carrying an invalid
// group element fails with ErrAuthenticationFailed, like any other failed login.
func (d *Deserializer) KE1(ke1 []byte) (*message.KE1, error) {
	b, err := body(ke1, message.TypeKE1, d.ke1Length())
	if err != nil {
		return nil, ErrKE1.with(err)
	}

	blindedMessage, err := encoding.DecodeElement(d.conf.Group, b[:d.conf.ElementLength()])
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	offset := d.conf.ElementLength()
	nonce := b[offset : offset+d.conf.NonceLen]
	offset += d.conf.NonceLen

	epku, err := encoding.DecodeElement(d.conf.Group, b[offset:])
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return &message.KE1{
		CredentialRequest:    message.CredentialRequest{BlindedMessage: blindedMessage},
		ClientNonce:          append([]byte(nil), nonce...),
		ClientPublicKeyshare: epku,
	}, nil
}

func (d *Deserializer) credentialResponseLength() int {
	return d.conf.ElementLength() + d.conf.NonceLen + d.conf.MaskedResponseLength()
}

func (d *Deserializer) ke2Length() int {
	return d.credentialResponseLength() + d.conf.NonceLen + d.conf.ElementLength() + d.conf.MAC.Size()
}

// KE2 takes a serialized KE2 message and returns a deserialized KE2 structure. A well-framed KE2 carrying an invalid
// group element fails with ErrAuthenticationFailed, like any other failed login.
func (d *Deserializer) KE2(ke2 []byte) (*message.KE2, error) {
	b, err := body(ke2, message.TypeKE2, d.ke2Length())
	if err != nil {
		return nil, ErrKE2.with(err)
	}

	evaluated, err := encoding.DecodeElement(d.conf.Group, b[:d.conf.ElementLength()])
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	offset := d.conf.ElementLength()
	maskingNonce := b[offset : offset+d.conf.NonceLen]
	offset += d.conf.NonceLen
	maskedResponse := b[offset : offset+d.conf.MaskedResponseLength()]
	offset += d.conf.MaskedResponseLength()
	serverNonce := b[offset : offset+d.conf.NonceLen]
	offset += d.conf.NonceLen
	epk := b[offset : offset+d.conf.ElementLength()]
	offset += d.conf.ElementLength()
	mac := b[offset:]

	epks, err := encoding.DecodeElement(d.conf.Group, epk)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return &message.KE2{
		CredentialResponse: message.CredentialResponse{
			EvaluatedMessage: evaluated,
			MaskingNonce:     append([]byte(nil), maskingNonce...),
			MaskedResponse:   append([]byte(nil), maskedResponse...),
		},
		ServerNonce:          append([]byte(nil), serverNonce...),
		ServerPublicKeyshare: epks,
		ServerMac:            append([]byte(nil), mac...),
	}, nil
}

// KE3 takes a serialized KE3 message and returns a deserialized KE3 structure.
func (d *Deserializer) KE3(ke3 []byte) (*message.KE3, error) {
	b, err := body(ke3, message.TypeKE3, d.conf.MAC.Size())
	if err != nil {
		return nil, ErrKE3.with(err)
	}

	return &message.KE3{ClientMac: append([]byte(nil), b...)}, nil
}
