// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !dirauth_noserver

package setupfile

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/bytemare/dirauth"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoad_GenerateThenRead(t *testing.T) {
	var logs bytes.Buffer

	path := filepath.Join(t.TempDir(), DefaultKeyFile)
	opts := Options{KeyFile: path, Logger: testLogger(&logs)}

	generated, err := Load(opts)
	if err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if runtime.GOOS != "windows" && info.Mode().Perm() != Mode {
		t.Fatalf("expected mode %v, got %v", Mode, info.Mode().Perm())
	}

	loaded, err := Load(opts)
	if err != nil {
		t.Fatal(err)
	}

	if diff := deep.Equal(generated.Serialize(), loaded.Serialize()); diff != nil {
		t.Fatal(diff)
	}

	if !strings.Contains(logs.String(), "generated a new server setup") {
		t.Fatalf("missing generation notice in %q", logs.String())
	}
}

func TestWrite_NoOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")

	setup, err := dirauth.NewServerSetup()
	if err != nil {
		t.Fatal(err)
	}

	if err := Write(path, setup); err != nil {
		t.Fatal(err)
	}

	other, err := dirauth.NewServerSetup()
	if err != nil {
		t.Fatal(err)
	}

	if err := Write(path, other); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected %v, got %v", fs.ErrExist, err)
	}
}

// failingCloser writes to a real file but reports a failure when closed.
type failingCloser struct {
	*os.File
}

var errClose = errors.New("close failed")

func (f failingCloser) Close() error {
	_ = f.File.Close()
	return errClose
}

func TestWrite_CloseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")

	create := createKeyFile
	t.Cleanup(func() { createKeyFile = create })

	createKeyFile = func(path string) (io.WriteCloser, error) {
		f, err := create(path)
		if err != nil {
			return nil, err
		}

		return failingCloser{File: f.(*os.File)}, nil
	}

	setup, err := dirauth.NewServerSetup()
	if err != nil {
		t.Fatal(err)
	}

	if err := Write(path, setup); !errors.Is(err, errClose) {
		t.Fatalf("expected %v, got %v", errClose, err)
	}

	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("a partial key file was left behind: %v", err)
	}
}

func TestLoad_Seed(t *testing.T) {
	var logs bytes.Buffer

	dir := t.TempDir()
	path := filepath.Join(dir, "custom_key")

	s1, err := Load(Options{KeyFile: path, KeySeed: []byte("seed"), Logger: testLogger(&logs)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("a key file was written although a seed was given")
	}

	if !strings.Contains(logs.String(), "level=WARN") {
		t.Fatalf("expected a warning for the ignored key file, got %q", logs.String())
	}

	s2, err := Load(Options{KeySeed: []byte("seed"), Logger: testLogger(&logs)})
	if err != nil {
		t.Fatal(err)
	}

	if diff := deep.Equal(s1.Serialize(), s2.Serialize()); diff != nil {
		t.Fatal(diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(Options{}); !errors.Is(err, ErrNoKeyFile) || !errors.Is(err, dirauth.ErrConfiguration) {
		t.Fatalf("expected %v, got %v", ErrNoKeyFile, err)
	}

	path := filepath.Join(t.TempDir(), "corrupt")
	if err := os.WriteFile(path, []byte("not a setup"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(Options{KeyFile: path}); !errors.Is(err, dirauth.ErrServerSetup) {
		t.Fatalf("expected %v, got %v", dirauth.ErrServerSetup, err)
	}
}
