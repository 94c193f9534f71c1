// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hoststore persists the set of known peer addresses a session
// manager has harvested, bounded to a fixed capacity with least-recently-
// used eviction, and saves/loads that set to/from disk in canonical
// bitcoin net_addr form.
package hoststore

import (
	"bufio"
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/dcrd/lru"
	"github.com/lastcanal/libbitcoin-network/wire"
)

// Store is a guarded, capacity-bounded collection of known peer
// addresses, keyed by endpoint.
//
// Capacity is enforced by an LRU set of keys (recent is recent is moved to
// the front on every touch); since the underlying cache reports only
// membership, not which key it silently evicted, byAddr is reconciled
// lazily against it on every read.
type Store struct {
	mu       sync.Mutex
	byAddr   map[string]*wire.NetAddress
	recent   lru.Cache
	capacity uint
}

// New returns an empty store bounded to capacity addresses.
func New(capacity uint) *Store {
	return &Store{
		byAddr:   make(map[string]*wire.NetAddress),
		recent:   lru.NewCache(capacity),
		capacity: capacity,
	}
}

// reconcile drops any byAddr entry the LRU set has silently evicted.
// Must be called with mu held.
func (s *Store) reconcile() {
	for key := range s.byAddr {
		if !s.recent.Contains(key) {
			delete(s.byAddr, key)
		}
	}
}

// StoreOne adds or refreshes na in the store, evicting the least recently
// touched entry if the store is at capacity. Returns true if na was newly
// added, false if it updated an existing record.
func (s *Store) StoreOne(na *wire.NetAddress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := na.Key()
	_, existed := s.byAddr[k]
	s.byAddr[k] = na
	s.recent.Add(k)
	s.reconcile()
	return !existed
}

// StoreMany stores every address in addrs, as StoreOne.
func (s *Store) StoreMany(addrs []*wire.NetAddress) {
	for _, na := range addrs {
		s.StoreOne(na)
	}
}

// FetchOne returns a uniformly random address from the store, and true,
// or false if the store is empty.
func (s *Store) FetchOne() (*wire.NetAddress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reconcile()
	if len(s.byAddr) == 0 {
		return nil, false
	}

	n := rand.Intn(len(s.byAddr))
	i := 0
	for k, na := range s.byAddr {
		if i == n {
			s.recent.Add(k)
			return na, true
		}
		i++
	}
	return nil, false
}

// Remove drops na from the store, if present.
func (s *Store) Remove(na *wire.NetAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := na.Key()
	delete(s.byAddr, k)
	s.recent.Delete(k)
}

// Count returns the number of addresses currently retained.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reconcile()
	return len(s.byAddr)
}

// Save writes every retained address to path in canonical net_addr form: a
// 4-byte little-endian count followed by that many timestamped address
// records. The write goes to a temp file in the same directory first, then
// is renamed over path, so a crash mid-write never leaves a truncated file
// in its place.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	s.reconcile()
	addrs := make([]*wire.NetAddress, 0, len(s.byAddr))
	for _, na := range s.byAddr {
		addrs = append(addrs, na)
	}
	s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	bw := bufio.NewWriter(tmp)
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(addrs))); err != nil {
		tmp.Close()
		return err
	}
	for _, na := range addrs {
		if err := wire.WriteNetAddress(bw, na); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Load replaces the store's contents with the addresses recorded at path,
// in the format Save writes. A missing file is treated as an empty store,
// not an error, since a node's first run has nothing to load yet.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	addrs := make([]*wire.NetAddress, 0, count)
	for i := uint32(0); i < count; i++ {
		na, err := wire.ReadNetAddress(br)
		if err != nil {
			return err
		}
		addrs = append(addrs, na)
	}

	s.mu.Lock()
	s.byAddr = make(map[string]*wire.NetAddress, len(addrs))
	s.recent = lru.NewCache(s.capacity)
	for _, na := range addrs {
		k := na.Key()
		s.byAddr[k] = na
		s.recent.Add(k)
	}
	s.mu.Unlock()

	return nil
}
