// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package masking

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/internal/tag"
)

func TestMaskUnmask(t *testing.T) {
	conf := internal.NewConfiguration([]byte(tag.DefaultContext), nil)
	maskingKey := MaskingKey(conf, entropy.RandomBytes(64))
	nonce := entropy.RandomBytes(conf.NonceLen)
	pks := internal.Group.Base().Encode()
	env := entropy.RandomBytes(conf.EnvelopeSize)

	masked := Mask(conf, nonce, maskingKey, pks, env)
	if len(masked) != conf.MaskedResponseLength() {
		t.Fatalf("unexpected masked length %d", len(masked))
	}

	if bytes.Contains(masked, pks) {
		t.Fatal("server public key appears in clear")
	}

	_, pksBytes, envelope, err := Unmask(conf, maskingKey, nonce, masked)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(pksBytes, pks) || !bytes.Equal(envelope.Serialize(), env) {
		t.Fatal("unmasking did not recover the cleartext")
	}

	if _, _, _, err := Unmask(conf, maskingKey, nonce, masked[1:]); !errors.Is(err, ErrMaskedLength) {
		t.Fatalf("expected %v, got %v", ErrMaskedLength, err)
	}
}

func TestUnmaskWrongKey(t *testing.T) {
	conf := internal.NewConfiguration([]byte(tag.DefaultContext), nil)
	nonce := entropy.RandomBytes(conf.NonceLen)
	masked := Mask(conf, nonce, MaskingKey(conf, entropy.RandomBytes(64)),
		internal.Group.Base().Encode(), entropy.RandomBytes(conf.EnvelopeSize))

	_, pks, _, err := Unmask(conf, MaskingKey(conf, entropy.RandomBytes(64)), nonce, masked)
	if err == nil && bytes.Equal(pks, internal.Group.Base().Encode()) {
		t.Fatal("wrong masking key recovered the server public key")
	}
}
