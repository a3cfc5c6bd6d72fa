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
	"crypto"
	"errors"
	"io"

	group "github.com/bytemare/crypto"
	"golang.org/x/crypto/chacha20"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/ake"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/message"
)

var (
	errEmptySeed      = errors.New("empty key seed")
	errKeyMismatch    = errors.New("public key does not match the secret key")
	errInvalidFakeKey = errors.New("invalid fake record public key")
	errNilSetup       = errors.New("nil server setup")
	errEmptySetup     = errors.New("server setup was not created by NewServerSetup or DeserializeServerSetup")
)

// ServerSetup holds the server's long-term secrets: the OPRF seed and the AKE key pair, along with the client public
// key of the fake record answering logins of unknown identities. It is read-only once created and safe for
// concurrent use.
type ServerSetup struct {
	oprfSeed      []byte
	secretKey     *group.Scalar
	publicKey     *group.Element
	fakePublicKey *group.Element
}

func (s *ServerSetup) check() error {
	if s == nil {
		return errNilSetup
	}

	if len(s.oprfSeed) != internal.HashFunction.Size() ||
		!isValidElement(s.publicKey) || !isValidElement(s.fakePublicKey) || s.secretKey == nil {
		return errEmptySetup
	}

	return nil
}

func serverSetupLength() int {
	g := internal.Group
	return internal.HashFunction.Size() + g.ScalarLength() + 2*g.ElementLength()
}

func newServerSetup(r io.Reader) (*ServerSetup, error) {
	oprfSeed := make([]byte, internal.HashFunction.Size())
	keySeed := make([]byte, internal.SeedLength)
	fakeSeed := make([]byte, internal.SeedLength)

	for _, b := range [][]byte{oprfSeed, keySeed, fakeSeed} {
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, ErrConfiguration.with(err)
		}
	}

	defer clear(keySeed)
	defer clear(fakeSeed)

	sk, pk, err := ake.DeriveKeyPair(keySeed)
	if err != nil {
		return nil, ErrConfiguration.with(err)
	}

	// Only the public half of the fake key pair is ever used.
	fsk, fpk, err := ake.DeriveKeyPair(fakeSeed)
	if err != nil {
		return nil, ErrConfiguration.with(err)
	}

	fsk.Zero()

	return &ServerSetup{
		oprfSeed:      oprfSeed,
		secretKey:     sk,
		publicKey:     pk,
		fakePublicKey: fpk,
	}, nil
}

// NewServerSetup returns a fresh ServerSetup drawn from the target's entropy source.
func NewServerSetup() (*ServerSetup, error) {
	return newServerSetup(entropy.Reader{})
}

// keystream is an io.Reader over a ChaCha20 keystream.
type keystream struct {
	cipher *chacha20.Cipher
}

func (k *keystream) Read(p []byte) (int, error) {
	clear(p)
	k.cipher.XORKeyStream(p, p)

	return len(p), nil
}

// NewServerSetupFromSeed deterministically derives a ServerSetup from seed: the same seed always yields the same
// setup. The SHA-256 digest of the seed keys a ChaCha20 keystream from which every secret is drawn.
func NewServerSetupFromSeed(seed []byte) (*ServerSetup, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidInput.with(errEmptySeed)
	}

	h := internal.NewHash(crypto.SHA256)
	h.Write(seed)
	key := h.Sum()

	defer clear(key)

	cipher, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, ErrConfiguration.with(err)
	}

	return newServerSetup(&keystream{cipher: cipher})
}

// PublicKey returns the encoding of the server's public key.
func (s *ServerSetup) PublicKey() []byte {
	return s.publicKey.Encode()
}

// Serialize returns the byte encoding of the ServerSetup. The output contains secrets.
func (s *ServerSetup) Serialize() []byte {
	return message.TypeServerSetup.Frame(
		s.oprfSeed,
		s.secretKey.Encode(),
		s.publicKey.Encode(),
		s.fakePublicKey.Encode(),
	)
}

func decodeKeyPair(sk, pk []byte) (*group.Scalar, *group.Element, error) {
	s, err := encoding.DecodeScalar(internal.Group, sk)
	if err != nil {
		return nil, nil, err
	}

	p, err := encoding.DecodeElement(internal.Group, pk)
	if err != nil {
		return nil, nil, err
	}

	if internal.Group.Base().Multiply(s).Equal(p) != 1 {
		return nil, nil, errKeyMismatch
	}

	return s, p, nil
}

// DeserializeServerSetup decodes a serialized ServerSetup and verifies its key pair and the fake record's key.
func DeserializeServerSetup(input []byte) (*ServerSetup, error) {
	b, err := body(input, message.TypeServerSetup, serverSetupLength())
	if err != nil {
		return nil, ErrServerSetup.with(err)
	}

	sl := internal.Group.ScalarLength()
	el := internal.Group.ElementLength()
	offset := internal.HashFunction.Size()

	sk, pk, err := decodeKeyPair(b[offset:offset+sl], b[offset+sl:offset+sl+el])
	if err != nil {
		return nil, ErrServerSetup.with(err)
	}

	offset += sl + el

	fpk, err := encoding.DecodeElement(internal.Group, b[offset:])
	if err != nil {
		return nil, ErrServerSetup.with(errInvalidFakeKey, err)
	}

	return &ServerSetup{
		oprfSeed:      append([]byte(nil), b[:internal.HashFunction.Size()]...),
		secretKey:     sk,
		publicKey:     pk,
		fakePublicKey: fpk,
	}, nil
}
