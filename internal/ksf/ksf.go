// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ksf provides the Key Stretching Function hardening the OPRF output: Argon2id under a pinned cost profile.
package ksf

import (
	"errors"
	"fmt"

	"github.com/bytemare/ksf"

	"github.com/bytemare/dirauth/internal/tag"
)

var (
	// ErrParameters indicates an invalid KSF cost profile.
	ErrParameters = errors.New("invalid KSF parameters")

	// ErrResourceExhausted indicates that the cost profile exceeds what the executing target can afford.
	ErrResourceExhausted = errors.New("KSF cost exceeds the available resources")
)

// Profile pins the Argon2id cost parameters. Client builds for every target must use the same profile, or the
// envelopes registered by one cannot be opened by the other.
type Profile struct {
	// Time is the number of passes over the memory.
	Time uint32

	// MemoryKiB is the memory size in KiB.
	MemoryKiB uint32

	// Threads is the degree of parallelism.
	Threads uint8
}

// DefaultProfile is the profile every deployment uses unless explicitly configured otherwise:
// one pass over 50 MiB, single lane.
var DefaultProfile = Profile{
	Time:      1,
	MemoryKiB: 50 * 1024,
	Threads:   1,
}

// String implements the fmt.Stringer interface.
func (p Profile) String() string {
	return fmt.Sprintf("argon2id(t=%d, m=%dKiB, p=%d)", p.Time, p.MemoryKiB, p.Threads)
}

// Validate returns an error if the profile can't be used.
func (p Profile) Validate() error {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
		return fmt.Errorf("%w: %s", ErrParameters, p)
	}

	// Argon2 requires at least 8 KiB of memory per lane.
	if p.MemoryKiB < 8*uint32(p.Threads) {
		return fmt.Errorf("%w: memory must be at least 8KiB per thread, got %s", ErrParameters, p)
	}

	return nil
}

// KSF hardens passwords with Argon2id. It is immutable and safe for concurrent use.
type KSF struct {
	profile        Profile
	memoryLimitKiB uint32
}

// New returns a KSF for the profile. A memoryLimitKiB of 0 selects the default ceiling of the compilation target.
func New(profile Profile, memoryLimitKiB uint32) (*KSF, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if memoryLimitKiB == 0 {
		memoryLimitKiB = DefaultMemoryLimitKiB
	}

	return &KSF{
		profile:        profile,
		memoryLimitKiB: memoryLimitKiB,
	}, nil
}

// Profile returns the cost profile.
func (k *KSF) Profile() Profile {
	return k.profile
}

// MemoryLimitKiB returns the memory ceiling in effect, 0 meaning none.
func (k *KSF) MemoryLimitKiB() uint32 {
	return k.memoryLimitKiB
}

// Harden stretches the input to length bytes.
func (k *KSF) Harden(input []byte, length int) (out []byte, err error) {
	if k.memoryLimitKiB != 0 && k.profile.MemoryKiB > k.memoryLimitKiB {
		return nil, fmt.Errorf("%w: %s over a %dKiB ceiling", ErrResourceExhausted, k.profile, k.memoryLimitKiB)
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrResourceExhausted, r)
		}
	}()

	f := ksf.Argon2id.Get()
	f.Parameterize(int(k.profile.Time), int(k.profile.MemoryKiB), int(k.profile.Threads))

	return f.Harden(input, []byte(tag.KSFSalt), length), nil
}
