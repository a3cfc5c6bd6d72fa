// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import (
	"bytes"
	"testing"

	"github.com/bytemare/dirauth/internal/tag"
)

func TestConfigurationLengths(t *testing.T) {
	conf := NewConfiguration([]byte(tag.DefaultContext), nil)

	if conf.EnvelopeSize != 96 || conf.MaskedResponseLength() != 128 || conf.HashLength() != 64 {
		t.Fatalf("unexpected lengths: envelope %d, masked response %d, hash %d",
			conf.EnvelopeSize, conf.MaskedResponseLength(), conf.HashLength())
	}
}

func TestXorResponse(t *testing.T) {
	conf := NewConfiguration([]byte(tag.DefaultContext), nil)
	key := bytes.Repeat([]byte{7}, 64)
	nonce := bytes.Repeat([]byte{9}, 32)
	in := bytes.Repeat([]byte{3}, conf.MaskedResponseLength())

	masked := conf.XorResponse(key, nonce, in)
	if bytes.Equal(masked, in) {
		t.Fatal("masking left the input unchanged")
	}

	if !bytes.Equal(conf.XorResponse(key, nonce, masked), in) {
		t.Fatal("masking is not an involution")
	}

	other := conf.XorResponse(key, bytes.Repeat([]byte{8}, 32), in)
	if bytes.Equal(other, masked) {
		t.Fatal("the nonce does not affect the pad")
	}
}

func TestHashIsolation(t *testing.T) {
	conf := NewConfiguration([]byte(tag.DefaultContext), nil)

	h1 := conf.NewHash()
	h2 := conf.NewHash()

	h1.Write([]byte("transcript"))

	if bytes.Equal(h1.Sum(), h2.Sum()) {
		t.Fatal("hash instances share their state")
	}

	h2.Write([]byte("trans"), []byte("cript"))

	if !bytes.Equal(h1.Sum(), h2.Sum()) {
		t.Fatal("split writes differ from a single write")
	}
}
