// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !dirauth_noclient && !dirauth_noserver

// Package commands holds the dirauth command line.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bytemare/dirauth"
	"github.com/bytemare/dirauth/setupfile"
)

var (
	verbose    bool
	keyFile    string
	keySeed    string
	appContext string
	logger     *slog.Logger
)

// envOr returns the value of the environment variable, or def if it is unset.
func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}

	return def
}

// Execute runs the command line.
func Execute() error {
	root := &cobra.Command{
		Use:           "dirauth",
		Short:         "Password authentication for a directory service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}

			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&keyFile, "key-file", envOr("DIRAUTH_KEY_FILE", setupfile.DefaultKeyFile),
		"server setup file (env DIRAUTH_KEY_FILE)")
	root.PersistentFlags().StringVar(&keySeed, "key-seed", envOr("DIRAUTH_KEY_SEED", ""),
		"derive the server setup from this seed instead of the key file (env DIRAUTH_KEY_SEED)")
	root.PersistentFlags().StringVar(&appContext, "context", envOr("DIRAUTH_CONTEXT", ""),
		"application context bound into login transcripts (env DIRAUTH_CONTEXT)")

	root.AddCommand(setupCmd(), paramsCmd(), selftestCmd())

	return root.Execute()
}

func configuration() *dirauth.Configuration {
	conf := dirauth.DefaultConfiguration()
	if appContext != "" {
		conf.Context = []byte(appContext)
	}

	return conf
}

func loadSetup() (*dirauth.ServerSetup, error) {
	return setupfile.Load(setupfile.Options{
		Logger:  logger,
		KeyFile: keyFile,
		KeySeed: []byte(keySeed),
	})
}
