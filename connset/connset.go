// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package connset tracks the set of live channels a session manager has
// open, keyed by remote endpoint, guarding against more than one
// connection to the same peer at a time.
package connset

import (
	"sync"

	"github.com/lastcanal/libbitcoin-network/channel"
)

// Set is a guarded collection of live channels keyed by remote endpoint.
// It corresponds to libbitcoin's connections collaborator that p2p.cpp
// delegates store/remove/connected to.
type Set struct {
	mu    sync.Mutex
	byKey map[string]*channel.Channel
}

// New returns an empty connection set.
func New() *Set {
	return &Set{byKey: make(map[string]*channel.Channel)}
}

// Exists reports whether a channel for key is already present.
func (s *Set) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byKey[key]
	return ok
}

// Store adds ch under key. Returns ErrAddressInUse, leaving the existing
// entry untouched, if key is already present.
func (s *Set) Store(key string, ch *channel.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[key]; ok {
		return ErrAddressInUse
	}
	s.byKey[key] = ch
	return nil
}

// Remove drops key from the set, if present.
func (s *Set) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byKey, key)
}

// Count returns the number of live channels in the set.
func (s *Set) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

// Stop closes every channel currently in the set with err, and empties
// the set.
func (s *Set) Stop(err error) {
	s.mu.Lock()
	channels := make([]*channel.Channel, 0, len(s.byKey))
	for _, ch := range s.byKey {
		channels = append(channels, ch)
	}
	s.byKey = make(map[string]*channel.Channel)
	s.mu.Unlock()

	for _, ch := range channels {
		ch.Stop(err)
	}
}
