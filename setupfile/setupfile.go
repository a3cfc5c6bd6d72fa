// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !dirauth_noserver

// Package setupfile provisions the server setup from a key seed or a key file, generating and persisting a new one
// when neither exists.
package setupfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bytemare/dirauth"
)

// DefaultKeyFile is the key file used when none is configured.
const DefaultKeyFile = "server_key"

// Mode is the permission of a generated key file.
const Mode fs.FileMode = 0o400

// ErrNoKeyFile indicates that neither a key seed nor a key file path was provided.
var ErrNoKeyFile = errors.New("no key seed and no key file path")

// Options configures where the server setup comes from.
type Options struct {
	// Logger receives the provisioning notices. Defaults to slog.Default().
	Logger *slog.Logger

	// KeyFile is the path of the serialized server setup.
	KeyFile string

	// KeySeed, when not empty, takes precedence over the key file: the setup is derived from it and nothing is
	// written to disk.
	KeySeed []byte
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}

	return o.Logger
}

// Load returns the server setup described by opts. A key seed derives the setup deterministically and the key file
// is then ignored. Otherwise an existing key file is read and decoded, and a missing one is generated and written
// with mode 0400. An existing file is never overwritten.
func Load(opts Options) (*dirauth.ServerSetup, error) {
	logger := opts.logger()

	if len(opts.KeySeed) != 0 {
		if opts.KeyFile != "" && opts.KeyFile != DefaultKeyFile || exists(opts.KeyFile) {
			logger.Warn("a key seed was given, the key file is ignored and the server setup is derived from the seed",
				"key_file", opts.KeyFile)
		} else {
			logger.Info("deriving the server setup from the key seed")
		}

		return dirauth.NewServerSetupFromSeed(opts.KeySeed)
	}

	if opts.KeyFile == "" {
		return nil, dirauth.ErrConfiguration.Code.New("", ErrNoKeyFile)
	}

	encoded, err := os.ReadFile(opts.KeyFile)
	switch {
	case err == nil:
		setup, err := dirauth.DeserializeServerSetup(encoded)
		if err != nil {
			return nil, fmt.Errorf("could not decode key file %q: %w", opts.KeyFile, err)
		}

		logger.Debug("loaded the server setup", "key_file", opts.KeyFile)

		return setup, nil
	case errors.Is(err, fs.ErrNotExist):
		return generate(opts.KeyFile, logger)
	default:
		return nil, fmt.Errorf("could not read key file %q: %w", opts.KeyFile, err)
	}
}

func exists(path string) bool {
	if path == "" {
		return false
	}

	_, err := os.Stat(path)

	return err == nil
}

func generate(path string, logger *slog.Logger) (*dirauth.ServerSetup, error) {
	setup, err := dirauth.NewServerSetup()
	if err != nil {
		return nil, err
	}

	if err := Write(path, setup); err != nil {
		return nil, err
	}

	logger.Info("generated a new server setup", "key_file", path)

	return setup, nil
}

// Write persists the setup to path with mode 0400. It fails if path already exists.
func Write(path string, setup *dirauth.ServerSetup) error {
	f, err := createKeyFile(path)
	if err != nil {
		return fmt.Errorf("could not create key file %q: %w", path, err)
	}

	_, err = f.Write(setup.Serialize())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		// A truncated key file would fail every later Load.
		_ = os.Remove(path)

		return fmt.Errorf("could not write key file %q: %w", path, err)
	}

	return nil
}

// createKeyFile creates a new key file, failing if one exists.
var createKeyFile = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, Mode)
}
