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
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/oprf"
	"github.com/bytemare/dirauth/message"
)

// ServerRegistrationState binds a RegistrationFinish to the RegistrationStart it follows. It is single use.
type ServerRegistrationState struct {
	credentialIdentifier []byte
	used                 bool
}

// CredentialIdentifier returns the identifier the registration was started for.
func (s *ServerRegistrationState) CredentialIdentifier() []byte {
	return append([]byte(nil), s.credentialIdentifier...)
}

// RegistrationStart evaluates the client's blinded password under the user's OPRF key. It answers any credential
// identifier, registered or not.
func (s *Server) RegistrationStart(
	setup *ServerSetup,
	credentialIdentifier []byte,
	request *message.RegistrationRequest,
) (*ServerRegistrationState, *message.RegistrationResponse, error) {
	if err := checkSetupAndIdentifier(setup, credentialIdentifier); err != nil {
		return nil, nil, err
	}

	if request == nil || !isValidElement(request.BlindedMessage) {
		return nil, nil, ErrRegistrationRequest.with(ErrInvalidInput, errInvalidBlindedData)
	}

	ku, err := s.oprfKey(setup, credentialIdentifier)
	if err != nil {
		return nil, nil, err
	}

	defer ku.Zero()

	return &ServerRegistrationState{credentialIdentifier: append([]byte(nil), credentialIdentifier...)},
		&message.RegistrationResponse{
			EvaluatedMessage: oprf.Evaluate(ku, request.BlindedMessage),
			Pks:              setup.publicKey.Copy(),
		}, nil
}

// RegistrationFinish validates the client's record and returns the PasswordEnvelope to persist for the credential
// identifier. It fails only on malformed input.
func (s *Server) RegistrationFinish(
	state *ServerRegistrationState,
	record *message.RegistrationRecord,
) (*PasswordEnvelope, error) {
	if state == nil {
		return nil, ErrInvalidInput.with(errNilState)
	}

	if state.used {
		return nil, ErrInvalidInput.with(errStateUsed)
	}

	state.used = true

	if record == nil || record.PublicKey == nil {
		return nil, ErrRegistrationRecord.with(errNilMessage)
	}

	if len(record.MaskingKey) != s.conf.HashLength() || len(record.Envelope) != s.conf.EnvelopeSize {
		return nil, ErrRegistrationRecord.with(errInvalidMessageLength)
	}

	pku, err := encoding.DecodeElement(s.conf.Group, record.PublicKey.Encode())
	if err != nil {
		return nil, ErrRegistrationRecord.with(ErrInvalidInput, errInvalidClientPK, err)
	}

	return &PasswordEnvelope{
		clientPublicKey: pku,
		maskingKey:      append([]byte(nil), record.MaskingKey...),
		envelope:        append([]byte(nil), record.Envelope...),
	}, nil
}
