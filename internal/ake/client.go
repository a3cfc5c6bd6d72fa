// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	"errors"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/message"
)

// ErrServerAuthentication indicates that the server MAC in KE2 does not authenticate the transcript.
var ErrServerAuthentication = errors.New("failed to authenticate server")

// Start returns the client's ephemeral secret key share, its public key share, and a fresh nonce.
func Start(conf *internal.Configuration) (*group.Scalar, *group.Element, []byte, error) {
	esk, epk, err := KeyGen()
	if err != nil {
		return nil, nil, nil, err
	}

	return esk, epk, entropy.RandomBytes(conf.NonceLen), nil
}

// Finalize verifies the server's MAC and returns the client's MAC and the session secret.
func Finalize(
	conf *internal.Configuration,
	identities *Identities,
	clientSecretKey, clientSecretKeyshare *group.Scalar,
	serverPublicKey *group.Element,
	ke1 *message.KE1,
	ke2 *message.KE2,
) (*message.KE3, []byte, error) {
	ikm := k3dh(
		ke2.ServerPublicKeyshare, clientSecretKeyshare,
		serverPublicKey, clientSecretKeyshare,
		ke2.ServerPublicKeyshare, clientSecretKey,
	)

	k := core3DH(conf, identities, ikm, ke1, &ke2.CredentialResponse, ke2.ServerNonce, ke2.ServerPublicKeyshare)
	if !conf.MAC.Equal(k.serverMac, ke2.ServerMac) {
		return nil, nil, ErrServerAuthentication
	}

	return &message.KE3{ClientMac: k.clientMac}, k.sessionSecret, nil
}
