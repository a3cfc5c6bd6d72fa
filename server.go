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
	"errors"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/oprf"
	"github.com/bytemare/dirauth/internal/tag"
)

var errEmptyCredentialIdentifier = errors.New("empty credential identifier")

// Server represents the directory's side of the protocol. It holds no per-flow state and is safe for concurrent use.
type Server struct {
	Deserialize *Deserializer
	conf        *internal.Configuration
}

// NewServer returns a Server instantiation given the application Configuration.
func NewServer(c *Configuration) (*Server, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Server{
		Deserialize: &Deserializer{conf: conf},
		conf:        conf,
	}, nil
}

// Server returns a newly instantiated Server from the Configuration.
func (c *Configuration) Server() (*Server, error) {
	return NewServer(c)
}

func checkSetupAndIdentifier(setup *ServerSetup, credentialIdentifier []byte) error {
	if err := setup.check(); err != nil {
		return ErrInvalidInput.with(err)
	}

	if len(credentialIdentifier) == 0 {
		return ErrInvalidInput.with(errEmptyCredentialIdentifier)
	}

	return nil
}

// oprfKey derives the per-user OPRF key. It only depends on the setup and the credential identifier, so the
// evaluation for an unknown identity is as deterministic as for a registered one.
func (s *Server) oprfKey(setup *ServerSetup, credentialIdentifier []byte) (*group.Scalar, error) {
	seed := s.conf.KDF.Expand(
		setup.oprfSeed,
		encoding.SuffixString(credentialIdentifier, tag.ExpandOPRF),
		internal.SeedLength,
	)
	defer clear(seed)

	ku, _, err := oprf.DeriveKeyPair(seed, []byte(tag.DeriveKeyPair))
	if err != nil {
		return nil, ErrInvalidInput.with(err)
	}

	return ku, nil
}
