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
	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal/ake"
	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/internal/masking"
	"github.com/bytemare/dirauth/internal/oprf"
	"github.com/bytemare/dirauth/message"
)

// LoginStart answers the client's KE1 for the credential identifier. A nil envelope stands for an identity that is
// not registered: the response is then computed over a fake record, with the same work and the same shape as for a
// registered one.
func (s *Server) LoginStart(
	setup *ServerSetup,
	credentialIdentifier []byte,
	envelope *PasswordEnvelope,
	ke1 *message.KE1,
) (*ServerLoginState, *message.KE2, error) {
	if err := checkSetupAndIdentifier(setup, credentialIdentifier); err != nil {
		return nil, nil, err
	}

	if envelope != nil {
		if err := envelope.check(s.conf); err != nil {
			return nil, nil, ErrInvalidInput.with(err)
		}
	}

	if ke1 == nil || !isValidElement(ke1.BlindedMessage) || !isValidElement(ke1.ClientPublicKeyshare) ||
		len(ke1.ClientNonce) != s.conf.NonceLen {
		return nil, nil, ErrAuthenticationFailed
	}

	var (
		clientPublicKey *group.Element
		maskingKey      []byte
		sealed          []byte
	)

	if envelope != nil {
		clientPublicKey = envelope.clientPublicKey
		maskingKey = envelope.maskingKey
		sealed = envelope.envelope
	} else {
		clientPublicKey = setup.fakePublicKey
		maskingKey = entropy.RandomBytes(s.conf.HashLength())
		sealed = make([]byte, s.conf.EnvelopeSize)
	}

	ku, err := s.oprfKey(setup, credentialIdentifier)
	if err != nil {
		return nil, nil, err
	}

	defer ku.Zero()

	serverPublicKey := setup.publicKey.Encode()
	maskingNonce := entropy.RandomBytes(s.conf.NonceLen)
	response := &message.CredentialResponse{
		EvaluatedMessage: oprf.Evaluate(ku, ke1.BlindedMessage),
		MaskingNonce:     maskingNonce,
		MaskedResponse:   masking.Mask(s.conf, maskingNonce, maskingKey, serverPublicKey, sealed),
	}

	identities := (&ake.Identities{}).SetIdentities(clientPublicKey.Encode(), serverPublicKey)

	ke2, state, err := ake.Response(s.conf, identities, setup.secretKey, clientPublicKey, ke1, response)
	if err != nil {
		return nil, nil, ErrInvalidInput.with(err)
	}

	return &ServerLoginState{
		expectedClientMac: state.ExpectedClientMac,
		sessionKey:        state.SessionSecret,
	}, ke2, nil
}

// LoginFinish verifies the client's KE3 and returns the session key. Every failure, including a reused or empty
// state, yields the bare ErrAuthenticationFailed. The state is consumed whatever the outcome.
func (s *Server) LoginFinish(state *ServerLoginState, ke3 *message.KE3) ([]byte, error) {
	if state == nil || state.used || state.expectedClientMac == nil {
		return nil, ErrAuthenticationFailed
	}

	defer state.flush()

	if ke3 == nil || !s.conf.MAC.Equal(state.expectedClientMac, ke3.ClientMac) {
		return nil, ErrAuthenticationFailed
	}

	return append([]byte(nil), state.sessionKey...), nil
}
