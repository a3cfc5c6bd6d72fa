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

	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/internal/keyrecovery"
	"github.com/bytemare/dirauth/internal/masking"
	"github.com/bytemare/dirauth/message"
)

// ClientRegistrationState holds the client's secret between RegistrationStart and RegistrationFinish. It is single
// use and must not be shared between attempts.
type ClientRegistrationState struct {
	blind *group.Scalar
	used  bool
}

// RegistrationStart blinds the password and returns the request to send to the server, and the state to keep until
// the server's response is received.
func (c *Client) RegistrationStart(password []byte) (*ClientRegistrationState, *message.RegistrationRequest, error) {
	blind, blinded, err := c.blind(password)
	if err != nil {
		return nil, nil, err
	}

	return &ClientRegistrationState{blind: blind}, &message.RegistrationRequest{BlindedMessage: blinded}, nil
}

// RegistrationFinish validates the server's response, hardens the password and seals the envelope, returning the
// record to send to the server. The export key is a secret only the client can recompute at each login, usable for
// application-level encryption; it must never be sent to the server. The state is consumed whatever the outcome.
func (c *Client) RegistrationFinish(
	state *ClientRegistrationState,
	response *message.RegistrationResponse,
	password []byte,
) (record *message.RegistrationRecord, exportKey []byte, err error) {
	if state == nil {
		return nil, nil, ErrInvalidInput.with(errNilState)
	}

	if state.used || state.blind == nil {
		return nil, nil, ErrInvalidInput.with(errStateUsed)
	}

	blind := state.blind
	state.used = true
	state.blind = nil

	defer blind.Zero()

	if len(password) == 0 {
		return nil, nil, ErrInvalidInput.with(errEmptyPassword)
	}

	if response == nil || !isValidElement(response.EvaluatedMessage) || !isValidElement(response.Pks) {
		return nil, nil, ErrRegistrationResponse.with(ErrInvalidInput, errNilMessage)
	}

	randomizedPassword, err := c.randomizedPassword(password, blind, response.EvaluatedMessage)
	if err != nil {
		return nil, nil, err
	}

	defer clear(randomizedPassword)

	envelope, clientPublicKey, exportKey, err := keyrecovery.Store(
		c.conf,
		randomizedPassword,
		response.Pks.Encode(),
		nil,
		nil,
		entropy.RandomBytes(c.conf.NonceLen),
	)
	if err != nil {
		return nil, nil, ErrInvalidInput.with(err)
	}

	return &message.RegistrationRecord{
		PublicKey:  clientPublicKey,
		MaskingKey: masking.MaskingKey(c.conf, randomizedPassword),
		Envelope:   envelope.Serialize(),
	}, exportKey, nil
}
