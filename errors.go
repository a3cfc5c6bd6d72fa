// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package dirauth

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	// ErrMalformedMessage indicates structurally invalid bytes: wrong length, version, or type. The caller can
	// recover by restarting the flow.
	ErrMalformedMessage = ErrCodeMalformedMessage.New("")

	// ErrInvalidInput indicates a semantically invalid value, such as an identity group element, an empty password,
	// or a reused flow state.
	ErrInvalidInput = ErrCodeInvalidInput.New("")

	// ErrAuthenticationFailed is the only error returned for a failed login, whatever the cause.
	ErrAuthenticationFailed = ErrCodeAuthenticationFailed.New("")

	// ErrResourceExhausted indicates that the password hardening cost exceeds what the executing target can afford.
	ErrResourceExhausted = ErrCodeResourceExhausted.New("")

	// ErrConfiguration indicates that the configuration or the server setup is invalid.
	ErrConfiguration = ErrCodeConfiguration.New("")

	// ErrRegistrationRequest indicates an error with a registration request.
	ErrRegistrationRequest = ErrCodeMalformedMessage.New("invalid registration request")

	// ErrRegistrationResponse indicates an error with a registration response.
	ErrRegistrationResponse = ErrCodeMalformedMessage.New("invalid registration response")

	// ErrRegistrationRecord indicates an error with a registration record.
	ErrRegistrationRecord = ErrCodeMalformedMessage.New("invalid registration record")

	// ErrKE1 indicates an error with a KE1 message.
	ErrKE1 = ErrCodeMalformedMessage.New("invalid KE1 message")

	// ErrKE2 indicates an error with a KE2 message.
	ErrKE2 = ErrCodeMalformedMessage.New("invalid KE2 message")

	// ErrKE3 indicates an error with a KE3 message.
	ErrKE3 = ErrCodeMalformedMessage.New("invalid KE3 message")

	// ErrPasswordEnvelope indicates an error with a stored password envelope.
	ErrPasswordEnvelope = ErrCodeMalformedMessage.New("invalid password envelope")

	// ErrServerSetup indicates an error with a serialized server setup.
	ErrServerSetup = ErrCodeMalformedMessage.New("invalid server setup")

	// ErrServerLoginState indicates an error with a serialized server login state.
	ErrServerLoginState = ErrCodeMalformedMessage.New("invalid server login state")
)

// ErrorCode represents the kind of error. It is used to categorize errors and provide a consistent way to handle
// error conditions.
type ErrorCode byte //nolint:errname // This is an error code, not an error type.

const (
	// ErrCodeUnknown represents an unknown error.
	ErrCodeUnknown ErrorCode = iota

	// ErrCodeMalformedMessage represents a codec-level error on structurally invalid bytes.
	ErrCodeMalformedMessage

	// ErrCodeInvalidInput represents a semantically invalid input or a misuse of the API.
	ErrCodeInvalidInput

	// ErrCodeAuthenticationFailed represents a failed login.
	ErrCodeAuthenticationFailed

	// ErrCodeResourceExhausted represents a password hardening cost exceeding the available resources.
	ErrCodeResourceExhausted

	// ErrCodeConfiguration represents an error related to the configuration or the server setup.
	ErrCodeConfiguration
)

// New creates a new Error with the given message and errors.
func (c ErrorCode) New(message string, errs ...error) *Error {
	if message == "" {
		message = c.defaultMessage()
	}

	return &Error{
		Code:    c,
		Message: message,
		Err:     errors.Join(errs...),
	}
}

func (c ErrorCode) defaultMessage() string {
	return strings.ReplaceAll(c.String(), "_", " ")
}

// String returns the string representation of the ErrorCode. If the code is not recognized, it returns "unknown_error".
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeUnknown:
		return "unknown_error"
	case ErrCodeMalformedMessage:
		return "malformed_message"
	case ErrCodeInvalidInput:
		return "invalid_input"
	case ErrCodeAuthenticationFailed:
		return "authentication_failed"
	case ErrCodeResourceExhausted:
		return "resource_exhausted"
	case ErrCodeConfiguration:
		return "configuration_error"
	default:
		return "unknown_error"
	}
}

// Error implements the error interface for the ErrorCode type. It returns a string representation of the error code.
func (c ErrorCode) Error() string {
	return c.String()
}

// Is reports whether target is the same ErrorCode, or an *Error carrying it.
func (c ErrorCode) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return c == t
	case *Error:
		return c == t.Code
	default:
		return false
	}
}

// Error represents an error of this package.
type Error struct {
	Err     error
	Message string
	Code    ErrorCode
}

// Error implements the error interface for the Error type. By convention, we return only the concise form of the
// current error, without the cause. The cause can be retrieved with the Unwrap() method.
func (e *Error) Error() string { return e.Message }

// Unwrap implements the errors.Unwrap method for the Error type. It allows retrieving the underlying error, if any.
func (e *Error) Unwrap() error { return e.Err }

// with returns a copy of e wrapping the given causes.
func (e *Error) with(errs ...error) *Error {
	return e.Code.New(e.Message, errs...)
}

// Is reports whether target matches e. An ErrorCode matches on the code alone. A sentinel *Error built without a
// message, like ErrMalformedMessage, matches every error of its code. Any other *Error must also carry the same message.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *Error:
		if e.Code != t.Code {
			return false
		}

		return t.Message == t.Code.defaultMessage() || strings.EqualFold(e.Message, t.Message)
	default:
		return false
	}
}

// As implements the errors.As method for the Error type. It allows type assertion to specific error types.
func (e *Error) As(target any) bool {
	switch t := target.(type) {
	case *ErrorCode:
		*t = e.Code
		return true
	case **Error:
		*t = e
		return true
	default:
		return false
	}
}

// LogValue implements the slog.LogValuer interface for the Error type.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("code", int(e.Code)),
		slog.String("code_name", e.Code.String()),
		slog.String("message", e.Message),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("error", e.Err))
	}

	return slog.GroupValue(attrs...)
}

// Format implements the fmt.Formatter interface for the Error type. It allows formatting the error in different ways.
func (e *Error) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			e.formatV(f)
			return
		}

		fallthrough
	case 's':
		_, _ = io.WriteString(f, e.Error()) //nolint:errcheck // safe to ignore // human-readable
	case 'q':
		_, _ = fmt.Fprintf(f, "%q", e.Error()) //nolint:errcheck // safe to ignore // quoted string
	default:
		_, _ = io.WriteString(f, e.Error()) //nolint:errcheck // safe to ignore // safe default
	}
}

func printV(f fmt.State, err error, depth int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", depth)
	_, _ = fmt.Fprintf(f, "\n%s↳ %v", prefix, err) //nolint:errcheck // safe to ignore

	switch u := err.(type) { //nolint:errorlint // only the direct wrapping level is walked here
	case interface{ Unwrap() []error }:
		for _, child := range u.Unwrap() {
			printV(f, child, depth+1)
		}
	case interface{ Unwrap() error }:
		printV(f, u.Unwrap(), depth+1)
	}
}

func (e *Error) formatV(f fmt.State) {
	_, _ = fmt.Fprintf(f, "code=%d(%s)", e.Code, e.Code.String()) //nolint:errcheck // safe to ignore
	if e.Message != "" {
		_, _ = fmt.Fprintf(f, " message=%q", e.Message) //nolint:errcheck // safe to ignore
	}

	if e.Err != nil {
		printV(f, e.Err, 0)
	}
}
