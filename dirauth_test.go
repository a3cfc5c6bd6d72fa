// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package dirauth_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bytemare/dirauth"
	"github.com/bytemare/dirauth/attempt"
	"github.com/bytemare/dirauth/message"
)

func TestFull(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	result := h.login(t, alice, envelope, password)
	if result.clientErr != nil || result.serverErr != nil {
		t.Fatalf("unexpected errors: client %v, server %v", result.clientErr, result.serverErr)
	}

	if diff := deep.Equal(result.clientKey, result.serverKey); diff != nil {
		t.Fatalf("session keys differ: %v", diff)
	}

	if len(result.clientKey) != 64 {
		t.Fatalf("unexpected session key length %d", len(result.clientKey))
	}

	// A second login yields a fresh session key.
	again := h.login(t, alice, envelope, password)
	if again.serverErr != nil || bytes.Equal(again.serverKey, result.serverKey) {
		t.Fatal("expected a distinct session key for a new login")
	}
}

func TestExportKey(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	registered := h.exportKeys[string(alice)]
	if len(registered) != 64 {
		t.Fatalf("unexpected export key length %d", len(registered))
	}

	result := h.login(t, alice, envelope, password)
	if result.clientErr != nil {
		t.Fatal(result.clientErr)
	}

	if diff := deep.Equal(result.exportKey, registered); diff != nil {
		t.Fatalf("login export key differs from registration: %v", diff)
	}

	if bytes.Equal(result.exportKey, result.clientKey) {
		t.Fatal("export key equals the session key")
	}

	// A new registration rotates the export key.
	h.register(t, alice, password)

	if bytes.Equal(h.exportKeys[string(alice)], registered) {
		t.Fatal("re-registration kept the export key")
	}
}

func TestDefaultConfiguration(t *testing.T) {
	if testing.Short() {
		t.Skip("default hardening profile is slow")
	}

	h := newHarness(t, dirauth.DefaultConfiguration())
	envelope := h.register(t, alice, password)

	result := h.login(t, alice, envelope, password)
	if result.serverErr != nil || !bytes.Equal(result.clientKey, result.serverKey) {
		t.Fatalf("login failed under the default profile: %v", result.serverErr)
	}
}

func TestWrongPassword(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	result := h.login(t, alice, envelope, wrong)
	if result.serverErr != dirauth.ErrAuthenticationFailed { //nolint:errorlint // the exact sentinel is required
		t.Fatalf("expected the bare %v, got %v", dirauth.ErrAuthenticationFailed, result.serverErr)
	}

	if !errors.Is(result.clientErr, dirauth.ErrAuthenticationFailed) {
		t.Fatalf("expected client side %v, got %v", dirauth.ErrAuthenticationFailed, result.clientErr)
	}

	if result.serverKey != nil || result.clientKey != nil || result.exportKey != nil {
		t.Fatal("a failed login returned a session key or an export key")
	}
}

func TestUnknownIdentity(t *testing.T) {
	h := newHarness(t, testConfiguration())
	h.register(t, alice, password)

	unknown := h.login(t, bob, nil, password)
	mismatch := h.login(t, alice, h.register(t, alice, password), wrong)

	if unknown.serverErr != dirauth.ErrAuthenticationFailed { //nolint:errorlint // the exact sentinel is required
		t.Fatalf("expected the bare %v, got %v", dirauth.ErrAuthenticationFailed, unknown.serverErr)
	}

	if unknown.serverErr.Error() != mismatch.serverErr.Error() {
		t.Fatalf("unknown identity and wrong password are distinguishable: %q vs %q",
			unknown.serverErr, mismatch.serverErr)
	}
}

func TestUnknownIdentityResponseShape(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	_, ke1, err := h.client.LoginStart(password)
	if err != nil {
		t.Fatal(err)
	}

	_, known, err := h.server.LoginStart(h.setup, alice, envelope, ke1)
	if err != nil {
		t.Fatal(err)
	}

	_, unknown, err := h.server.LoginStart(h.setup, bob, nil, ke1)
	if err != nil {
		t.Fatal(err)
	}

	if len(known.Serialize()) != len(unknown.Serialize()) {
		t.Fatal("responses for known and unknown identities differ in length")
	}

	// The OPRF evaluation is deterministic per identity, known or not.
	_, again, err := h.server.LoginStart(h.setup, bob, nil, ke1)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(unknown.EvaluatedMessage.Encode(), again.EvaluatedMessage.Encode()) {
		t.Fatal("evaluation for an unknown identity is not deterministic")
	}
}

func TestReplayKE3(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	first := h.login(t, alice, envelope, password)
	if first.serverErr != nil {
		t.Fatal(first.serverErr)
	}

	_, ke1, err := h.client.LoginStart(password)
	if err != nil {
		t.Fatal(err)
	}

	serverState, _, err := h.server.LoginStart(h.setup, alice, envelope, ke1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.server.LoginFinish(serverState, first.ke3); err != dirauth.ErrAuthenticationFailed { //nolint:errorlint // exact
		t.Fatalf("replayed KE3: expected %v, got %v", dirauth.ErrAuthenticationFailed, err)
	}
}

func TestStateSingleUse(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	t.Run("client registration", func(t *testing.T) {
		state, request, err := h.client.RegistrationStart(password)
		if err != nil {
			t.Fatal(err)
		}

		_, response, err := h.server.RegistrationStart(h.setup, alice, request)
		if err != nil {
			t.Fatal(err)
		}

		if _, _, err := h.client.RegistrationFinish(state, response, password); err != nil {
			t.Fatal(err)
		}

		if _, _, err := h.client.RegistrationFinish(state, response, password); !errors.Is(err, dirauth.ErrInvalidInput) {
			t.Fatalf("expected %v, got %v", dirauth.ErrInvalidInput, err)
		}
	})

	t.Run("server registration", func(t *testing.T) {
		clientState, request, err := h.client.RegistrationStart(password)
		if err != nil {
			t.Fatal(err)
		}

		state, response, err := h.server.RegistrationStart(h.setup, alice, request)
		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(state.CredentialIdentifier(), alice) {
			t.Fatal("state does not carry the credential identifier")
		}

		record, _, err := h.client.RegistrationFinish(clientState, response, password)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := h.server.RegistrationFinish(state, record); err != nil {
			t.Fatal(err)
		}

		if _, err := h.server.RegistrationFinish(state, record); !errors.Is(err, dirauth.ErrInvalidInput) {
			t.Fatalf("expected %v, got %v", dirauth.ErrInvalidInput, err)
		}
	})

	t.Run("login", func(t *testing.T) {
		clientState, ke1, err := h.client.LoginStart(password)
		if err != nil {
			t.Fatal(err)
		}

		serverState, ke2, err := h.server.LoginStart(h.setup, alice, envelope, ke1)
		if err != nil {
			t.Fatal(err)
		}

		ke3, _, _, err := h.client.LoginFinish(clientState, ke2, password)
		if err != nil {
			t.Fatal(err)
		}

		if _, _, _, err := h.client.LoginFinish(clientState, ke2, password); !errors.Is(err, dirauth.ErrInvalidInput) {
			t.Fatalf("expected %v, got %v", dirauth.ErrInvalidInput, err)
		}

		if _, err := h.server.LoginFinish(serverState, ke3); err != nil {
			t.Fatal(err)
		}

		if _, err := h.server.LoginFinish(serverState, ke3); err != dirauth.ErrAuthenticationFailed { //nolint:errorlint // exact
			t.Fatalf("expected %v, got %v", dirauth.ErrAuthenticationFailed, err)
		}
	})
}

func TestInvalidInputs(t *testing.T) {
	h := newHarness(t, testConfiguration())

	if _, _, err := h.client.RegistrationStart(nil); !errors.Is(err, dirauth.ErrInvalidInput) {
		t.Fatalf("empty password: expected %v, got %v", dirauth.ErrInvalidInput, err)
	}

	if _, _, err := h.client.LoginStart([]byte{}); !errors.Is(err, dirauth.ErrInvalidInput) {
		t.Fatalf("empty password: expected %v, got %v", dirauth.ErrInvalidInput, err)
	}

	_, request, err := h.client.RegistrationStart(password)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := h.server.RegistrationStart(nil, alice, request); !errors.Is(err, dirauth.ErrInvalidInput) {
		t.Fatalf("nil setup: expected %v, got %v", dirauth.ErrInvalidInput, err)
	}

	if _, _, err := h.server.RegistrationStart(h.setup, nil, request); !errors.Is(err, dirauth.ErrInvalidInput) {
		t.Fatalf("empty identifier: expected %v, got %v", dirauth.ErrInvalidInput, err)
	}

	if _, _, err := h.server.RegistrationStart(h.setup, alice, nil); !errors.Is(err, dirauth.ErrMalformedMessage) {
		t.Fatalf("nil request: expected %v, got %v", dirauth.ErrMalformedMessage, err)
	}

	if _, _, err := h.client.RegistrationFinish(nil, nil, password); !errors.Is(err, dirauth.ErrInvalidInput) {
		t.Fatalf("nil state: expected %v, got %v", dirauth.ErrInvalidInput, err)
	}

	if _, err := h.server.LoginFinish(nil, nil); err != dirauth.ErrAuthenticationFailed { //nolint:errorlint // exact
		t.Fatalf("nil login state: expected %v, got %v", dirauth.ErrAuthenticationFailed, err)
	}
}

func TestZeroValueInputs(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	_, ke1, err := h.client.LoginStart(password)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("setup", func(t *testing.T) {
		_, _, err := h.server.LoginStart(&dirauth.ServerSetup{}, alice, envelope, ke1)
		if !errors.Is(err, dirauth.ErrInvalidInput) {
			t.Fatalf("expected %v, got %v", dirauth.ErrInvalidInput, err)
		}

		_, request, err := h.client.RegistrationStart(password)
		if err != nil {
			t.Fatal(err)
		}

		_, _, err = h.server.RegistrationStart(&dirauth.ServerSetup{}, alice, request)
		if !errors.Is(err, dirauth.ErrInvalidInput) {
			t.Fatalf("expected %v, got %v", dirauth.ErrInvalidInput, err)
		}
	})

	t.Run("envelope", func(t *testing.T) {
		empty := &dirauth.PasswordEnvelope{}

		if _, _, err := h.server.LoginStart(h.setup, alice, empty, ke1); !errors.Is(err, dirauth.ErrInvalidInput) {
			t.Fatalf("expected %v, got %v", dirauth.ErrInvalidInput, err)
		}

		if empty.ClientPublicKey() != nil {
			t.Fatal("an empty envelope reports a public key")
		}
	})
}

func TestResourceExhausted(t *testing.T) {
	conf := dirauth.DefaultConfiguration()
	conf.MemoryLimitKiB = 1024

	h := newHarness(t, conf)

	state, request, err := h.client.RegistrationStart(password)
	if err != nil {
		t.Fatal(err)
	}

	_, response, err := h.server.RegistrationStart(h.setup, alice, request)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = h.client.RegistrationFinish(state, response, password)
	if !errors.Is(err, dirauth.ErrResourceExhausted) {
		t.Fatalf("expected %v, got %v", dirauth.ErrResourceExhausted, err)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	conf := testConfiguration()
	conf.KSF.Threads = 0

	if _, err := conf.Client(); !errors.Is(err, dirauth.ErrConfiguration) {
		t.Fatalf("expected %v, got %v", dirauth.ErrConfiguration, err)
	}

	if _, err := conf.Server(); !errors.Is(err, dirauth.ErrConfiguration) {
		t.Fatalf("expected %v, got %v", dirauth.ErrConfiguration, err)
	}

	var nilConf *dirauth.Configuration
	if _, err := nilConf.Deserializer(); !errors.Is(err, dirauth.ErrConfiguration) {
		t.Fatalf("expected %v, got %v", dirauth.ErrConfiguration, err)
	}
}

func TestContextMismatch(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	other := testConfiguration()
	other.Context = []byte("another-directory")

	server, err := other.Server()
	if err != nil {
		t.Fatal(err)
	}

	h.server = server

	result := h.login(t, alice, envelope, password)
	if result.serverErr != dirauth.ErrAuthenticationFailed { //nolint:errorlint // exact
		t.Fatalf("expected %v, got %v", dirauth.ErrAuthenticationFailed, result.serverErr)
	}
}

func TestConcurrentLogins(t *testing.T) {
	h := newHarness(t, testConfiguration())

	const users = 8

	envelopes := make([]*dirauth.PasswordEnvelope, users)
	for i := range users {
		envelopes[i] = h.register(t, []byte(fmt.Sprintf("user-%d", i)), password)
	}

	keys := make([][]byte, users)

	var g errgroup.Group

	for i := range users {
		g.Go(func() error {
			id := []byte(fmt.Sprintf("user-%d", i))

			clientState, ke1, err := h.client.LoginStart(password)
			if err != nil {
				return err
			}

			serverState, ke2, err := h.server.LoginStart(h.setup, id, envelopes[i], ke1)
			if err != nil {
				return err
			}

			ke3, clientKey, _, err := h.client.LoginFinish(clientState, ke2, password)
			if err != nil {
				return err
			}

			serverKey, err := h.server.LoginFinish(serverState, ke3)
			if err != nil {
				return err
			}

			if !bytes.Equal(clientKey, serverKey) {
				return fmt.Errorf("user %d: session keys differ", i)
			}

			keys[i] = serverKey

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	for i := range users {
		for j := i + 1; j < users; j++ {
			if bytes.Equal(keys[i], keys[j]) {
				t.Fatalf("sessions %d and %d share a key", i, j)
			}
		}
	}
}

// sameUserAttempt is one login attempt of a user, with the server state parked in an attempt store.
type sameUserAttempt struct {
	client  *dirauth.ClientLoginState
	ke2     *message.KE2
	session uuid.UUID
}

func startSameUserAttempt(
	t *testing.T,
	h *harness,
	states *attempt.Store[*dirauth.ServerLoginState],
	envelope *dirauth.PasswordEnvelope,
) *sameUserAttempt {
	t.Helper()

	clientState, ke1, err := h.client.LoginStart(password)
	if err != nil {
		t.Fatal(err)
	}

	serverState, ke2, err := h.server.LoginStart(h.setup, alice, envelope, ke1)
	if err != nil {
		t.Fatal(err)
	}

	session, err := states.Put(serverState)
	if err != nil {
		t.Fatal(err)
	}

	return &sameUserAttempt{client: clientState, ke2: ke2, session: session}
}

func TestConcurrentAttemptsSameUser(t *testing.T) {
	h := newHarness(t, testConfiguration())
	envelope := h.register(t, alice, password)

	t.Run("interleaved", func(t *testing.T) {
		states := attempt.New[*dirauth.ServerLoginState]()

		a := startSameUserAttempt(t, h, states, envelope)
		b := startSameUserAttempt(t, h, states, envelope)

		if a.session == b.session {
			t.Fatal("two attempts share a session identifier")
		}

		finish := func(at *sameUserAttempt) []byte {
			ke3, clientKey, _, err := h.client.LoginFinish(at.client, at.ke2, password)
			if err != nil {
				t.Fatal(err)
			}

			serverState, ok := states.Take(at.session)
			if !ok {
				t.Fatal("the server state of the attempt is gone")
			}

			serverKey, err := h.server.LoginFinish(serverState, ke3)
			if err != nil {
				t.Fatal(err)
			}

			if !bytes.Equal(clientKey, serverKey) {
				t.Fatal("session keys differ")
			}

			return serverKey
		}

		keyB := finish(b)
		keyA := finish(a)

		if bytes.Equal(keyA, keyB) {
			t.Fatal("two attempts share a session key")
		}

		if states.Len() != 0 {
			t.Fatalf("expected an empty store, got %d", states.Len())
		}
	})

	t.Run("swapped server states", func(t *testing.T) {
		states := attempt.New[*dirauth.ServerLoginState]()

		a := startSameUserAttempt(t, h, states, envelope)
		b := startSameUserAttempt(t, h, states, envelope)

		ke3A, _, _, err := h.client.LoginFinish(a.client, a.ke2, password)
		if err != nil {
			t.Fatal(err)
		}

		stateB, _ := states.Take(b.session)
		if _, err := h.server.LoginFinish(stateB, ke3A); err != dirauth.ErrAuthenticationFailed { //nolint:errorlint // exact
			t.Fatalf("expected %v, got %v", dirauth.ErrAuthenticationFailed, err)
		}
	})

	t.Run("swapped server responses", func(t *testing.T) {
		states := attempt.New[*dirauth.ServerLoginState]()

		a := startSameUserAttempt(t, h, states, envelope)
		b := startSameUserAttempt(t, h, states, envelope)

		_, _, _, err := h.client.LoginFinish(a.client, b.ke2, password)
		if !errors.Is(err, dirauth.ErrAuthenticationFailed) {
			t.Fatalf("expected %v, got %v", dirauth.ErrAuthenticationFailed, err)
		}
	})
}

func TestRoles(t *testing.T) {
	if !dirauth.ClientRole || !dirauth.ServerRole {
		t.Fatal("both roles are expected in the default build")
	}
}
