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
	"errors"

	group "github.com/bytemare/crypto"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/encoding"
	"github.com/bytemare/dirauth/internal/ksf"
	"github.com/bytemare/dirauth/internal/oprf"
)

var errEmptyPassword = errors.New("empty password")

// Client represents a user's side of the protocol. It holds no per-flow state and is safe for concurrent use.
type Client struct {
	Deserialize *Deserializer
	conf        *internal.Configuration
}

// NewClient returns a new Client instantiation given the application Configuration.
func NewClient(c *Configuration) (*Client, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Client{
		Deserialize: &Deserializer{conf: conf},
		conf:        conf,
	}, nil
}

// Client returns a newly instantiated Client from the Configuration.
func (c *Configuration) Client() (*Client, error) {
	return NewClient(c)
}

// blind starts the OPRF for the password with a fresh blind.
func (c *Client) blind(password []byte) (*group.Scalar, *group.Element, error) {
	if len(password) == 0 {
		return nil, nil, ErrInvalidInput.with(errEmptyPassword)
	}

	blind, err := oprf.NewBlind()
	if err != nil {
		return nil, nil, ErrInvalidInput.with(err)
	}

	blinded, err := oprf.Blind(password, blind)
	if err != nil {
		blind.Zero()
		return nil, nil, ErrInvalidInput.with(err)
	}

	return blind, blinded, nil
}

// randomizedPassword finalizes the OPRF and hardens its output.
func (c *Client) randomizedPassword(password []byte, blind *group.Scalar, evaluated *group.Element) ([]byte, error) {
	oprfOutput := oprf.Finalize(password, blind, evaluated)

	stretched, err := c.conf.KSF.Harden(oprfOutput, c.conf.HashLength())
	if err != nil {
		if errors.Is(err, ksf.ErrResourceExhausted) {
			return nil, ErrResourceExhausted.with(err)
		}

		return nil, ErrConfiguration.with(err)
	}

	return c.conf.KDF.Extract(nil, encoding.Concat(oprfOutput, stretched)), nil
}
