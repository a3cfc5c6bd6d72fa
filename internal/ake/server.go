// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/message"
)

// ServerState holds what the server needs to verify the client's KE3.
type ServerState struct {
	ExpectedClientMac []byte
	SessionSecret     []byte
}

// Response produces the server's key share, nonce and MAC over the transcript, and returns the values the server
// must keep to authenticate the client.
func Response(
	conf *internal.Configuration,
	identities *Identities,
	serverSecretKey *group.Scalar,
	clientPublicKey *group.Element,
	ke1 *message.KE1,
	response *message.CredentialResponse,
) (*message.KE2, *ServerState, error) {
	esk, epk, err := KeyGen()
	if err != nil {
		return nil, nil, err
	}

	nonce := entropy.RandomBytes(conf.NonceLen)
	ikm := k3dh(ke1.ClientPublicKeyshare, esk, ke1.ClientPublicKeyshare, serverSecretKey, clientPublicKey, esk)
	esk.Zero()

	k := core3DH(conf, identities, ikm, ke1, response, nonce, epk)

	return &message.KE2{
			CredentialResponse:   *response,
			ServerNonce:          nonce,
			ServerPublicKeyshare: epk,
			ServerMac:            k.serverMac,
		}, &ServerState{
			ExpectedClientMac: k.clientMac,
			SessionSecret:     k.sessionSecret,
		}, nil
}
