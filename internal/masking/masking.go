// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package masking provides the credential masking mechanism.
package masking

import (
	"errors"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/keyrecovery"
	"github.com/bytemare/dirauth/internal/tag"
)

var (
	// ErrInvalidPKS happens when the unmasked server public key is not a valid element.
	ErrInvalidPKS = errors.New("invalid server public key")

	// ErrMaskedLength happens when the masked response has an unexpected length.
	ErrMaskedLength = errors.New("invalid masked response length")
)

// MaskingKey derives the masking key from the randomized password.
func MaskingKey(conf *internal.Configuration, randomizedPassword []byte) []byte {
	return conf.KDF.Expand(randomizedPassword, []byte(tag.MaskingKey), conf.HashLength())
}

// Mask encrypts the serverPublicKey and the envelope under nonce and the maskingKey.
func Mask(conf *internal.Configuration, nonce, maskingKey, serverPublicKey, envelope []byte) []byte {
	clear := encoding.Concat(serverPublicKey, envelope)
	return conf.XorResponse(maskingKey, nonce, clear)
}

// Unmask decrypts the maskedResponse and returns the server's public key and the client's envelope.
func Unmask(
	conf *internal.Configuration,
	maskingKey, nonce, maskedResponse []byte,
) (serverPublicKey *group.Element, serverPublicKeyBytes []byte, envelope *keyrecovery.Envelope, err error) {
	if len(maskedResponse) != conf.MaskedResponseLength() {
		return nil, nil, nil, ErrMaskedLength
	}

	clear := conf.XorResponse(maskingKey, nonce, maskedResponse)
	serverPublicKeyBytes = clear[:conf.ElementLength()]

	envelope, err = keyrecovery.DeserializeEnvelope(conf, clear[conf.ElementLength():])
	if err != nil {
		return nil, nil, nil, err
	}

	serverPublicKey, err = encoding.DecodeElement(conf.Group, serverPublicKeyBytes)
	if err != nil {
		return nil, nil, nil, errors.Join(ErrInvalidPKS, err)
	}

	return serverPublicKey, serverPublicKeyBytes, envelope, nil
}
