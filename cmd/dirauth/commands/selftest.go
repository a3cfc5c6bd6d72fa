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
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bytemare/dirauth"
	"github.com/bytemare/dirauth/attempt"
)

var errSessionKeys = errors.New("session keys differ")

func readPassword() ([]byte, error) {
	rl, err := readline.New("")
	if err != nil {
		return nil, err
	}
	defer rl.Close()

	return rl.ReadPassword("password: ")
}

func selftestCmd() *cobra.Command {
	var (
		users    int
		password string
	)

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run concurrent registrations and logins against the configured server setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd := []byte(password)
			if len(pwd) == 0 {
				var err error
				if pwd, err = readPassword(); err != nil {
					return err
				}
			}

			setup, err := loadSetup()
			if err != nil {
				return err
			}

			start := time.Now()
			if err := selftest(setup, pwd, users); err != nil {
				color.Red("[!] self test failed: %+v", err)
				return err
			}

			color.Green("[+] %d users registered and logged in, a wrong password was rejected (%s)",
				users, time.Since(start).Round(time.Millisecond))

			return nil
		},
	}

	cmd.Flags().IntVarP(&users, "users", "n", 4, "number of concurrent users")
	cmd.Flags().StringVar(&password, "password", "", "password to use, prompted for when empty")

	return cmd
}

func selftest(setup *dirauth.ServerSetup, password []byte, users int) error {
	conf := configuration()

	client, err := conf.Client()
	if err != nil {
		return err
	}

	server, err := conf.Server()
	if err != nil {
		return err
	}

	states := attempt.New[*dirauth.ServerLoginState](attempt.WithLogger(logger))

	var g errgroup.Group

	for i := range users {
		g.Go(func() error {
			id := []byte(fmt.Sprintf("selftest-%d", i))

			envelope, err := register(client, server, setup, id, password)
			if err != nil {
				return fmt.Errorf("user %d: registration: %w", i, err)
			}

			if err := login(client, server, states, setup, id, envelope, password); err != nil {
				return fmt.Errorf("user %d: login: %w", i, err)
			}

			wrong := append(bytes.Clone(password), '!')
			if err := login(client, server, states, setup, id, envelope, wrong); !errors.Is(err, dirauth.ErrAuthenticationFailed) {
				return fmt.Errorf("user %d: wrong password was not rejected: %w", i, err)
			}

			logger.Debug("user passed", "user", string(id))

			return nil
		})
	}

	return g.Wait()
}

func register(
	client *dirauth.Client,
	server *dirauth.Server,
	setup *dirauth.ServerSetup,
	id, password []byte,
) (*dirauth.PasswordEnvelope, error) {
	clientState, request, err := client.RegistrationStart(password)
	if err != nil {
		return nil, err
	}

	req, err := server.Deserialize.RegistrationRequest(request.Serialize())
	if err != nil {
		return nil, err
	}

	serverState, response, err := server.RegistrationStart(setup, id, req)
	if err != nil {
		return nil, err
	}

	resp, err := client.Deserialize.RegistrationResponse(response.Serialize())
	if err != nil {
		return nil, err
	}

	record, _, err := client.RegistrationFinish(clientState, resp, password)
	if err != nil {
		return nil, err
	}

	rec, err := server.Deserialize.RegistrationRecord(record.Serialize())
	if err != nil {
		return nil, err
	}

	return server.RegistrationFinish(serverState, rec)
}

// login keeps the server state in the attempt store between the two round trips, as a server would.
func login(
	client *dirauth.Client,
	server *dirauth.Server,
	states *attempt.Store[*dirauth.ServerLoginState],
	setup *dirauth.ServerSetup,
	id []byte,
	envelope *dirauth.PasswordEnvelope,
	password []byte,
) error {
	clientState, ke1, err := client.LoginStart(password)
	if err != nil {
		return err
	}

	m1, err := server.Deserialize.KE1(ke1.Serialize())
	if err != nil {
		return err
	}

	serverState, ke2, err := server.LoginStart(setup, id, envelope, m1)
	if err != nil {
		return err
	}

	session, err := states.Put(serverState)
	if err != nil {
		return err
	}

	m2, err := client.Deserialize.KE2(ke2.Serialize())
	if err != nil {
		return err
	}

	ke3, clientKey, _, err := client.LoginFinish(clientState, m2, password)
	if err != nil {
		// Abandoning the attempt: the state expires in the store.
		return err
	}

	state, ok := states.Take(session)
	if !ok {
		return dirauth.ErrAuthenticationFailed
	}

	serverKey, err := server.LoginFinish(state, ke3)
	if err != nil {
		return err
	}

	if !bytes.Equal(clientKey, serverKey) {
		return errSessionKeys
	}

	return nil
}
