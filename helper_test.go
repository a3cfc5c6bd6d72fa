// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package dirauth_test

import (
	"testing"

	"github.com/bytemare/dirauth"
	"github.com/bytemare/dirauth/message"
)

const dbgErr = "%v"

var (
	alice    = []byte("alice")
	bob      = []byte("bob")
	password = []byte("correct-horse")
	wrong    = []byte("wrong-horse")
)

// testConfiguration keeps the hardening cheap so the suites stay fast. The default profile has its own test.
func testConfiguration() *dirauth.Configuration {
	conf := dirauth.DefaultConfiguration()
	conf.KSF.MemoryKiB = 64

	return conf
}

type harness struct {
	conf   *dirauth.Configuration
	client *dirauth.Client
	server *dirauth.Server
	setup  *dirauth.ServerSetup

	// exportKeys holds the export key of the latest registration of each credential identifier.
	exportKeys map[string][]byte
}

func newHarness(t testing.TB, conf *dirauth.Configuration) *harness {
	t.Helper()

	client, err := conf.Client()
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	server, err := conf.Server()
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	setup, err := dirauth.NewServerSetup()
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	return &harness{
		conf:       conf,
		client:     client,
		server:     server,
		setup:      setup,
		exportKeys: make(map[string][]byte),
	}
}

// register runs a full registration over the wire encodings, and returns the stored envelope.
func (h *harness) register(t *testing.T, credentialIdentifier, pwd []byte) *dirauth.PasswordEnvelope {
	t.Helper()

	clientState, request, err := h.client.RegistrationStart(pwd)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	req, err := h.server.Deserialize.RegistrationRequest(request.Serialize())
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	serverState, response, err := h.server.RegistrationStart(h.setup, credentialIdentifier, req)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	resp, err := h.client.Deserialize.RegistrationResponse(response.Serialize())
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	record, exportKey, err := h.client.RegistrationFinish(clientState, resp, pwd)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	h.exportKeys[string(credentialIdentifier)] = exportKey

	rec, err := h.server.Deserialize.RegistrationRecord(record.Serialize())
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	envelope, err := h.server.RegistrationFinish(serverState, rec)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	stored, err := h.server.Deserialize.PasswordEnvelope(envelope.Serialize())
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	return stored
}

// loginResult holds the outcome of both sides of a login.
type loginResult struct {
	clientKey []byte
	exportKey []byte
	serverKey []byte
	clientErr error
	serverErr error
	ke3       *message.KE3
}

// login runs a full login over the wire encodings. envelope is nil for an unknown identity.
func (h *harness) login(
	t *testing.T,
	credentialIdentifier []byte,
	envelope *dirauth.PasswordEnvelope,
	pwd []byte,
) *loginResult {
	t.Helper()

	clientState, ke1, err := h.client.LoginStart(pwd)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	m1, err := h.server.Deserialize.KE1(ke1.Serialize())
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	serverState, ke2, err := h.server.LoginStart(h.setup, credentialIdentifier, envelope, m1)
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	m2, err := h.client.Deserialize.KE2(ke2.Serialize())
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	result := &loginResult{}

	ke3, clientKey, exportKey, err := h.client.LoginFinish(clientState, m2, pwd)
	result.clientKey, result.exportKey, result.clientErr = clientKey, exportKey, err

	if ke3 == nil {
		// The client could not authenticate the server: it sends a KE3 that cannot verify.
		ke3 = &message.KE3{ClientMac: make([]byte, 64)}
	}

	result.ke3 = ke3

	m3, err := h.server.Deserialize.KE3(ke3.Serialize())
	if err != nil {
		t.Fatalf(dbgErr, err)
	}

	result.serverKey, result.serverErr = h.server.LoginFinish(serverState, m3)

	return result
}
