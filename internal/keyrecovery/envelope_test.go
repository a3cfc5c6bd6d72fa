// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package keyrecovery

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/internal/tag"
)

func testConfiguration() *internal.Configuration {
	return internal.NewConfiguration([]byte(tag.DefaultContext), nil)
}

func TestStoreRecover(t *testing.T) {
	conf := testConfiguration()
	rwd := entropy.RandomBytes(64)
	pks := internal.Group.Base().Encode()
	nonce := entropy.RandomBytes(conf.NonceLen)

	env, pku, exportReg, err := Store(conf, rwd, pks, nil, nil, nonce)
	if err != nil {
		t.Fatal(err)
	}

	if len(env.Serialize()) != conf.EnvelopeSize {
		t.Fatalf("unexpected envelope size %d", len(env.Serialize()))
	}

	decoded, err := DeserializeEnvelope(conf, env.Serialize())
	if err != nil {
		t.Fatal(err)
	}

	sku, pku2, exportLogin, err := Recover(conf, rwd, pks, nil, nil, decoded)
	if err != nil {
		t.Fatal(err)
	}

	if pku.Equal(pku2) != 1 {
		t.Fatal("recovered public key differs")
	}

	if internal.Group.Base().Multiply(sku).Equal(pku) != 1 {
		t.Fatal("recovered secret key does not match the public key")
	}

	if !bytes.Equal(exportReg, exportLogin) {
		t.Fatal("export keys differ")
	}
}

func TestRecoverWrongPassword(t *testing.T) {
	conf := testConfiguration()
	pks := internal.Group.Base().Encode()

	env, _, _, err := Store(conf, entropy.RandomBytes(64), pks, nil, nil, entropy.RandomBytes(conf.NonceLen))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := Recover(conf, entropy.RandomBytes(64), pks, nil, nil, env); !errors.Is(err, ErrEnvelopeInvalidMac) {
		t.Fatalf("expected %v, got %v", ErrEnvelopeInvalidMac, err)
	}
}

func TestRecoverWrongServerKey(t *testing.T) {
	conf := testConfiguration()
	rwd := entropy.RandomBytes(64)
	pks := internal.Group.Base().Encode()
	other := internal.Group.Base().Add(internal.Group.Base()).Encode()

	env, _, _, err := Store(conf, rwd, pks, nil, nil, entropy.RandomBytes(conf.NonceLen))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := Recover(conf, rwd, other, nil, nil, env); !errors.Is(err, ErrEnvelopeInvalidMac) {
		t.Fatalf("expected %v, got %v", ErrEnvelopeInvalidMac, err)
	}
}

func TestDeserializeEnvelopeLength(t *testing.T) {
	conf := testConfiguration()

	if _, err := DeserializeEnvelope(conf, make([]byte, conf.EnvelopeSize+1)); !errors.Is(err, ErrEnvelopeLength) {
		t.Fatalf("expected %v, got %v", ErrEnvelopeLength, err)
	}
}
