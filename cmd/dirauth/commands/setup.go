// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !dirauth_noclient && !dirauth_noserver

package commands

import (
	"encoding/hex"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Load the server setup, generating the key file if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := loadSetup()
			if err != nil {
				color.Red("[!] %v", err)
				return err
			}

			color.Green("[+] server setup ready")
			cmd.Printf("public key: %s\n", hex.EncodeToString(setup.PublicKey()))

			return nil
		},
	}
}
