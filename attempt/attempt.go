// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package attempt keeps the flow states of in-flight registrations and logins between their start and finish calls,
// each under its own random session identifier, and discards those abandoned for longer than an inactivity window.
package attempt

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the inactivity window after which an unfinished attempt is discarded.
const DefaultTTL = 5 * time.Minute

// ErrCapacity indicates that the store holds as many attempts as it may.
var ErrCapacity = errors.New("too many attempts in flight")

type entry[T any] struct {
	state   T
	expires time.Time
}

// Store maps session identifiers to the flow state of one attempt. A state is handed out exactly once. Store is safe
// for concurrent use.
type Store[T any] struct {
	logger   *slog.Logger
	now      func() time.Time
	attempts map[uuid.UUID]entry[T]
	ttl      time.Duration
	capacity int
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	now      func() time.Time
	ttl      time.Duration
	capacity int
}

// WithTTL sets the inactivity window.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithCapacity bounds the number of attempts in flight. 0 means unbounded.
func WithCapacity(capacity int) Option {
	return func(o *options) { o.capacity = capacity }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New returns an empty Store.
func New[T any](opts ...Option) *Store[T] {
	o := &options{
		logger: slog.Default(),
		now:    time.Now,
		ttl:    DefaultTTL,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Store[T]{
		logger:   o.logger,
		now:      o.now,
		attempts: make(map[uuid.UUID]entry[T]),
		ttl:      o.ttl,
		capacity: o.capacity,
	}
}

// Put stores the state under a new random session identifier and returns it.
func (s *Store[T]) Put(state T) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && len(s.attempts) >= s.capacity {
		s.sweep(s.now())

		if len(s.attempts) >= s.capacity {
			return uuid.Nil, ErrCapacity
		}
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}

	s.attempts[id] = entry[T]{state: state, expires: s.now().Add(s.ttl)}

	return id, nil
}

// Take removes and returns the state stored under id. It reports false if there is none or if it expired.
func (s *Store[T]) Take(id uuid.UUID) (T, bool) {
	return s.TakeIf(id, nil)
}

// TakeIf is like Take, but leaves a live state in the store when match is not nil and rejects it. An expired state is
// discarded either way.
func (s *Store[T]) TakeIf(id uuid.UUID, match func(T) bool) (T, bool) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.attempts[id]
	if !ok {
		return zero, false
	}

	if !s.now().Before(e.expires) {
		delete(s.attempts, id)
		return zero, false
	}

	if match != nil && !match(e.state) {
		return zero, false
	}

	delete(s.attempts, id)

	return e.state, true
}

// Len returns the number of attempts in flight.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.attempts)
}

// Sweep discards the expired attempts and returns how many were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweep(s.now())
}

func (s *Store[T]) sweep(now time.Time) int {
	removed := 0

	for id, e := range s.attempts {
		if !now.Before(e.expires) {
			delete(s.attempts, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("discarded abandoned attempts", "count", removed)
	}

	return removed
}

// Run sweeps the store every interval until ctx is done.
func (s *Store[T]) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}
