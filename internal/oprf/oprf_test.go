// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package oprf

import (
	"bytes"
	"testing"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal/entropy"
	"github.com/bytemare/dirauth/internal/tag"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	return entropy.RandomBytes(32)
}

// unblindedOutput evaluates the OPRF directly, without blinding.
func unblindedOutput(t *testing.T, key *group.Scalar, input []byte) []byte {
	t.Helper()

	p := Group.HashToGroup(input, dst(tag.OPRFPointPrefix))

	return finalize(input, p.Multiply(key))
}

// evaluate runs the blinded protocol for input under key.
func evaluate(t *testing.T, key *group.Scalar, input []byte) []byte {
	t.Helper()

	blind, err := NewBlind()
	if err != nil {
		t.Fatal(err)
	}

	blinded, err := Blind(input, blind)
	if err != nil {
		t.Fatal(err)
	}

	return Finalize(input, blind, Evaluate(key, blinded))
}

func TestDeriveKeyPairDeterministic(t *testing.T) {
	seed := newKey(t)

	sk1, pk1, err := DeriveKeyPair(seed, []byte("info"))
	if err != nil {
		t.Fatal(err)
	}

	sk2, pk2, err := DeriveKeyPair(seed, []byte("info"))
	if err != nil {
		t.Fatal(err)
	}

	if sk1.Equal(sk2) != 1 || pk1.Equal(pk2) != 1 {
		t.Fatal("key derivation is not deterministic")
	}

	sk3, _, err := DeriveKeyPair(seed, []byte("other"))
	if err != nil {
		t.Fatal(err)
	}

	if sk1.Equal(sk3) == 1 {
		t.Fatal("different info yields the same key")
	}

	if pk1.Equal(Group.Base().Multiply(sk1)) != 1 {
		t.Fatal("public key does not match the secret key")
	}
}

func TestBlindEvaluateFinalize(t *testing.T) {
	input := []byte("correct-horse")

	key, err := DeriveKey(newKey(t), []byte("server"))
	if err != nil {
		t.Fatal(err)
	}

	blind, err := DeriveKey(newKey(t), []byte("blind"))
	if err != nil {
		t.Fatal(err)
	}

	blinded, err := Blind(input, blind)
	if err != nil {
		t.Fatal(err)
	}

	evaluated := Evaluate(key, blinded)
	output := Finalize(input, blind, evaluated)

	if !bytes.Equal(output, unblindedOutput(t, key, input)) {
		t.Fatal("blinded evaluation does not match the direct evaluation")
	}

	if len(output) != Hash.Size() {
		t.Fatalf("unexpected output length %d", len(output))
	}
}

func TestBlindingHidesInput(t *testing.T) {
	input := []byte("correct-horse")

	b1, _ := DeriveKey(newKey(t), []byte("blind"))
	b2, _ := DeriveKey(newKey(t), []byte("blind"))

	m1, err := Blind(input, b1)
	if err != nil {
		t.Fatal(err)
	}

	m2, err := Blind(input, b2)
	if err != nil {
		t.Fatal(err)
	}

	if m1.Equal(m2) == 1 {
		t.Fatal("two blindings of the same input are equal")
	}
}

func TestEvaluateDoesNotMutate(t *testing.T) {
	key, _ := DeriveKey(newKey(t), []byte("server"))
	blind, _ := DeriveKey(newKey(t), []byte("blind"))

	blinded, err := Blind([]byte("input"), blind)
	if err != nil {
		t.Fatal(err)
	}

	before := blinded.Encode()
	_ = Evaluate(key, blinded)

	if !bytes.Equal(before, blinded.Encode()) {
		t.Fatal("Evaluate modified its input")
	}

	blindBefore := blind.Encode()
	_ = Finalize([]byte("input"), blind, Evaluate(key, blinded))

	if !bytes.Equal(blindBefore, blind.Encode()) {
		t.Fatal("Finalize modified the blind")
	}
}

func TestDifferentKeysDifferentOutputs(t *testing.T) {
	k1, _ := DeriveKey(newKey(t), []byte("server"))
	k2, _ := DeriveKey(newKey(t), []byte("server"))

	o1 := evaluate(t, k1, []byte("input"))
	o2 := evaluate(t, k2, []byte("input"))

	if bytes.Equal(o1, o2) {
		t.Fatal("different keys yield the same output")
	}

	if !bytes.Equal(o1, evaluate(t, k1, []byte("input"))) {
		t.Fatal("the output depends on the blind")
	}
}

func TestNewBlind(t *testing.T) {
	b1, err := NewBlind()
	if err != nil {
		t.Fatal(err)
	}

	b2, err := NewBlind()
	if err != nil {
		t.Fatal(err)
	}

	if b1.IsZero() || b1.Equal(b2) == 1 {
		t.Fatal("blinds are not fresh non-zero scalars")
	}
}
