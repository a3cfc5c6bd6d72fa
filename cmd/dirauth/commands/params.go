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
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bytemare/dirauth"
	"github.com/bytemare/dirauth/internal/ksf"
	"github.com/bytemare/dirauth/message"
)

func paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Print the protocol parameters in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration()

			k, err := ksf.New(ksf.Profile{
				Time:      conf.KSF.Time,
				MemoryKiB: conf.KSF.MemoryKiB,
				Threads:   conf.KSF.Threads,
			}, conf.MemoryLimitKiB)
			if err != nil {
				return err
			}

			profile := k.Profile()

			limit := "none"
			if l := k.MemoryLimitKiB(); l != 0 {
				limit = fmt.Sprintf("%d KiB", l)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Parameter", "Value"})
			table.AppendBulk([][]string{
				{"group", "ristretto255"},
				{"hash / KDF / MAC", "SHA-512 / HKDF / HMAC"},
				{"KSF", profile.String()},
				{"KSF time", strconv.FormatUint(uint64(profile.Time), 10)},
				{"KSF memory", fmt.Sprintf("%d KiB", profile.MemoryKiB)},
				{"KSF threads", strconv.FormatUint(uint64(profile.Threads), 10)},
				{"KSF memory limit", limit},
				{"context", string(conf.Context)},
				{"wire version", strconv.Itoa(int(message.Version))},
				{"client role", strconv.FormatBool(dirauth.ClientRole)},
				{"server role", strconv.FormatBool(dirauth.ServerRole)},
			})
			table.Render()

			return nil
		},
	}
}
