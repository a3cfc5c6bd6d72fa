// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package dirauth

import (
	"errors"
	"fmt"

	"github.com/bytemare/dirauth/internal"
	"github.com/bytemare/dirauth/internal/ksf"
	"github.com/bytemare/dirauth/internal/tag"
)

var (
	errNilConfiguration = errors.New("nil configuration")
	errContextLength    = errors.New("context is longer than 65535 bytes")
)

// KSFParameters holds the Argon2id cost profile used to harden passwords. Clients and servers of a deployment must
// agree on it, as envelopes registered under one profile cannot be opened under another.
type KSFParameters struct {
	// Time is the number of passes over the memory.
	Time uint32 `json:"time"`

	// MemoryKiB is the memory size in KiB.
	MemoryKiB uint32 `json:"memoryKiB"`

	// Threads is the degree of parallelism.
	Threads uint8 `json:"threads"`
}

// Configuration represents the tunable parameters of a deployment.
type Configuration struct {
	// Context is bound into every login transcript. Defaults to "DirAuth-OPAQUE-v1" when empty.
	Context []byte `json:"context"`

	// KSF is the password hardening cost profile.
	KSF KSFParameters `json:"ksf"`

	// MemoryLimitKiB caps the memory the KSF may use on this target. 0 selects the target's default: none on native
	// targets, 256 MiB in a browser.
	MemoryLimitKiB uint32 `json:"memoryLimitKiB"`
}

// DefaultConfiguration returns a default configuration with strong parameters.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Context: []byte(tag.DefaultContext),
		KSF: KSFParameters{
			Time:      ksf.DefaultProfile.Time,
			MemoryKiB: ksf.DefaultProfile.MemoryKiB,
			Threads:   ksf.DefaultProfile.Threads,
		},
		MemoryLimitKiB: 0,
	}
}

func (c *Configuration) profile() ksf.Profile {
	return ksf.Profile{
		Time:      c.KSF.Time,
		MemoryKiB: c.KSF.MemoryKiB,
		Threads:   c.KSF.Threads,
	}
}

func (c *Configuration) toInternal() (*internal.Configuration, error) {
	if c == nil {
		return nil, ErrConfiguration.with(errNilConfiguration)
	}

	k, err := ksf.New(c.profile(), c.MemoryLimitKiB)
	if err != nil {
		return nil, ErrConfiguration.with(err)
	}

	context := c.Context
	if len(context) == 0 {
		context = []byte(tag.DefaultContext)
	}

	if len(context) > 1<<16-1 {
		return nil, ErrConfiguration.with(errContextLength)
	}

	return internal.NewConfiguration(append([]byte(nil), context...), k), nil
}

// Deserializer returns a pointer to a Deserializer structure allowing deserialization of messages in the given
// configuration.
func (c *Configuration) Deserializer() (*Deserializer, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Deserializer{conf: conf}, nil
}

// String returns a human-readable representation of the configuration.
func (c *Configuration) String() string {
	context := c.Context
	if len(context) == 0 {
		context = []byte(tag.DefaultContext)
	}

	return fmt.Sprintf("ristretto255-SHA512 %s context=%q", c.profile(), context)
}
