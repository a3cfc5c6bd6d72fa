// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !dirauth_noclient

package dirauth

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal/ake"
	"github.com/bytemare/dirauth/internal/keyrecovery"
	"github.com/bytemare/dirauth/internal/masking"
	"github.com/bytemare/dirauth/message"
)

// ClientLoginState holds the client's secrets between LoginStart and LoginFinish. It is single use and must not be
// shared between attempts.
type ClientLoginState struct {
	blind                *group.Scalar
	clientSecretKeyshare *group.Scalar
	ke1                  *message.KE1
	used                 bool
}

func (s *ClientLoginState) flush() {
	s.used = true
	s.blind.Zero()
	s.clientSecretKeyshare.Zero()
	s.blind = nil
	s.clientSecretKeyshare = nil
	s.ke1 = nil
}

// LoginStart blinds the password, generates the client's ephemeral key share, and returns the KE1 message to send
// to the server along with the state to keep until KE2 is received.
func (c *Client) LoginStart(password []byte) (*ClientLoginState, *message.KE1, error) {
	blind, blinded, err := c.blind(password)
	if err != nil {
		return nil, nil, err
	}

	esk, epk, nonce, err := ake.Start(c.conf)
	if err != nil {
		blind.Zero()
		return nil, nil, ErrInvalidInput.with(err)
	}

	ke1 := &message.KE1{
		CredentialRequest:    message.CredentialRequest{BlindedMessage: blinded},
		ClientNonce:          nonce,
		ClientPublicKeyshare: epk,
	}

	return &ClientLoginState{
		blind:                blind,
		clientSecretKeyshare: esk,
		ke1:                  ke1,
	}, ke1, nil
}

// LoginFinish recovers the client's credentials from KE2, verifies the server, and returns the KE3 message to send
// to the server along with the session key and the export key of the registration. Whatever goes wrong with KE2 or
// the password, the error is ErrAuthenticationFailed. The state is consumed whatever the outcome.
func (c *Client) LoginFinish(
	state *ClientLoginState,
	ke2 *message.KE2,
	password []byte,
) (ke3 *message.KE3, sessionKey, exportKey []byte, err error) {
	if state == nil {
		return nil, nil, nil, ErrInvalidInput.with(errNilState)
	}

	if state.used || state.blind == nil || state.clientSecretKeyshare == nil || state.ke1 == nil {
		return nil, nil, nil, ErrInvalidInput.with(errStateUsed)
	}

	defer state.flush()

	if len(password) == 0 {
		return nil, nil, nil, ErrInvalidInput.with(errEmptyPassword)
	}

	if ke2 == nil || !isValidElement(ke2.EvaluatedMessage) || !isValidElement(ke2.ServerPublicKeyshare) {
		return nil, nil, nil, ErrAuthenticationFailed
	}

	randomizedPassword, err := c.randomizedPassword(password, state.blind, ke2.EvaluatedMessage)
	if err != nil {
		return nil, nil, nil, err
	}

	defer clear(randomizedPassword)

	maskingKey := masking.MaskingKey(c.conf, randomizedPassword)

	serverPublicKey, serverPublicKeyBytes, envelope, err := masking.Unmask(
		c.conf,
		maskingKey,
		ke2.MaskingNonce,
		ke2.MaskedResponse,
	)
	if err != nil {
		return nil, nil, nil, ErrAuthenticationFailed
	}

	clientSecretKey, clientPublicKey, exportKey, err := keyrecovery.Recover(
		c.conf,
		randomizedPassword,
		serverPublicKeyBytes,
		nil,
		nil,
		envelope,
	)
	if err != nil {
		return nil, nil, nil, ErrAuthenticationFailed
	}

	defer clientSecretKey.Zero()

	identities := (&ake.Identities{}).SetIdentities(clientPublicKey.Encode(), serverPublicKeyBytes)

	ke3, sessionKey, err = ake.Finalize(
		c.conf,
		identities,
		clientSecretKey,
		state.clientSecretKeyshare,
		serverPublicKey,
		state.ke1,
		ke2,
	)
	if err != nil {
		return nil, nil, nil, ErrAuthenticationFailed
	}

	return ke3, sessionKey, exportKey, nil
}
