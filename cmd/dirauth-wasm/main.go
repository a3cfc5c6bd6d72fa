// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build js && wasm && dirauth_noserver

// Command dirauth-wasm exposes the client role to a browser page as the global dirauth object. Flow states stay on
// the Go side, and the page only holds their handles.
//
// The server role must never be linked into the browser artifact, so the command only builds with the
// dirauth_noserver tag:
//
//	GOOS=js GOARCH=wasm go build -tags dirauth_noserver -o dirauth.wasm ./cmd/dirauth-wasm
package main

import (
	"errors"
	"log/slog"
	"syscall/js"

	"github.com/google/uuid"

	"github.com/bytemare/dirauth"
	"github.com/bytemare/dirauth/attempt"
)

var (
	errArguments     = errors.New("unexpected arguments")
	errUnknownHandle = errors.New("unknown or expired handle")
	errStateType     = errors.New("handle refers to another flow")
)

type bindings struct {
	client *dirauth.Client
	states *attempt.Store[any]
}

func bytesFrom(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)

	return b
}

func bytesTo(b []byte) js.Value {
	v := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(v, b)

	return v
}

func failure(err error) any {
	return map[string]any{"error": err.Error()}
}

// take hands out the state of the handle if it belongs to the expected flow. A handle of another flow stays valid.
func take[T any](b *bindings, handle js.Value) (T, error) {
	var zero T

	id, err := uuid.Parse(handle.String())
	if err != nil {
		return zero, errUnknownHandle
	}

	var wrongFlow bool

	state, ok := b.states.TakeIf(id, func(v any) bool {
		_, match := v.(T)
		wrongFlow = !match

		return match
	})
	if !ok {
		if wrongFlow {
			return zero, errStateType
		}

		return zero, errUnknownHandle
	}

	return state.(T), nil
}

// registrationStart(password) returns {handle, message}.
func (b *bindings) registrationStart(_ js.Value, args []js.Value) any {
	if len(args) != 1 {
		return failure(errArguments)
	}

	state, request, err := b.client.RegistrationStart(bytesFrom(args[0]))
	if err != nil {
		return failure(err)
	}

	id, err := b.states.Put(state)
	if err != nil {
		return failure(err)
	}

	return map[string]any{"handle": id.String(), "message": bytesTo(request.Serialize())}
}

// registrationFinish(handle, response, password) returns {message, exportKey}.
func (b *bindings) registrationFinish(_ js.Value, args []js.Value) any {
	if len(args) != 3 {
		return failure(errArguments)
	}

	state, err := take[*dirauth.ClientRegistrationState](b, args[0])
	if err != nil {
		return failure(err)
	}

	response, err := b.client.Deserialize.RegistrationResponse(bytesFrom(args[1]))
	if err != nil {
		return failure(err)
	}

	record, exportKey, err := b.client.RegistrationFinish(state, response, bytesFrom(args[2]))
	if err != nil {
		return failure(err)
	}

	return map[string]any{"message": bytesTo(record.Serialize()), "exportKey": bytesTo(exportKey)}
}

// loginStart(password) returns {handle, message}.
func (b *bindings) loginStart(_ js.Value, args []js.Value) any {
	if len(args) != 1 {
		return failure(errArguments)
	}

	state, ke1, err := b.client.LoginStart(bytesFrom(args[0]))
	if err != nil {
		return failure(err)
	}

	id, err := b.states.Put(state)
	if err != nil {
		return failure(err)
	}

	return map[string]any{"handle": id.String(), "message": bytesTo(ke1.Serialize())}
}

// loginFinish(handle, ke2, password) returns {message, sessionKey, exportKey}.
func (b *bindings) loginFinish(_ js.Value, args []js.Value) any {
	if len(args) != 3 {
		return failure(errArguments)
	}

	state, err := take[*dirauth.ClientLoginState](b, args[0])
	if err != nil {
		return failure(err)
	}

	ke2, err := b.client.Deserialize.KE2(bytesFrom(args[1]))
	if err != nil {
		return failure(err)
	}

	ke3, sessionKey, exportKey, err := b.client.LoginFinish(state, ke2, bytesFrom(args[2]))
	if err != nil {
		return failure(err)
	}

	return map[string]any{
		"message":    bytesTo(ke3.Serialize()),
		"sessionKey": bytesTo(sessionKey),
		"exportKey":  bytesTo(exportKey),
	}
}

func main() {
	client, err := dirauth.DefaultConfiguration().Client()
	if err != nil {
		slog.Error("could not instantiate the client", "error", err)
		return
	}

	b := &bindings{
		client: client,
		states: attempt.New[any](attempt.WithCapacity(64)),
	}

	js.Global().Set("dirauth", map[string]any{
		"registrationStart":  js.FuncOf(b.registrationStart),
		"registrationFinish": js.FuncOf(b.registrationFinish),
		"loginStart":         js.FuncOf(b.loginStart),
		"loginFinish":        js.FuncOf(b.loginFinish),
		"clientRole":         dirauth.ClientRole,
		"serverRole":         dirauth.ServerRole,
	})

	slog.Info("dirauth client ready")

	select {}
}
