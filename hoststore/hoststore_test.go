// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hoststore

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/lastcanal/libbitcoin-network/wire"
	"github.com/stretchr/testify/require"
)

func testAddr(host string, port uint16) *wire.NetAddress {
	return wire.NewNetAddressIPPort(net.ParseIP(host), port, wire.SFNodeNetwork)
}

func TestStoreOneReportsNewVsExisting(t *testing.T) {
	s := New(10)
	require.True(t, s.StoreOne(testAddr("127.0.0.1", 8333)))
	require.False(t, s.StoreOne(testAddr("127.0.0.1", 8333)))
	require.Equal(t, 1, s.Count())
}

func TestStoreManyAndCount(t *testing.T) {
	s := New(10)
	s.StoreMany([]*wire.NetAddress{
		testAddr("10.0.0.1", 8333),
		testAddr("10.0.0.2", 8333),
		testAddr("10.0.0.3", 8333),
	})
	require.Equal(t, 3, s.Count())
}

func TestFetchOneEmptyStore(t *testing.T) {
	s := New(10)
	_, ok := s.FetchOne()
	require.False(t, ok)
}

func TestFetchOneReturnsStoredAddress(t *testing.T) {
	s := New(10)
	want := testAddr("10.0.0.1", 8333)
	s.StoreOne(want)

	got, ok := s.FetchOne()
	require.True(t, ok)
	require.Equal(t, want.Key(), got.Key())
}

func TestRemove(t *testing.T) {
	s := New(10)
	na := testAddr("10.0.0.1", 8333)
	s.StoreOne(na)

	s.Remove(na)
	require.Equal(t, 0, s.Count())
	_, ok := s.FetchOne()
	require.False(t, ok)
}

func TestCapacityEvictsLeastRecentlyTouched(t *testing.T) {
	s := New(2)
	s.StoreOne(testAddr("10.0.0.1", 8333))
	s.StoreOne(testAddr("10.0.0.2", 8333))
	s.StoreOne(testAddr("10.0.0.3", 8333))

	require.Equal(t, 2, s.Count())
	require.False(t, s.recent.Contains(testAddr("10.0.0.1", 8333).Key()))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.dat")

	s := New(10)
	s.StoreMany([]*wire.NetAddress{
		testAddr("10.0.0.1", 8333),
		testAddr("10.0.0.2", 8333),
		testAddr("10.0.0.3", 8334),
	})
	require.NoError(t, s.Save(path))

	loaded := New(10)
	require.NoError(t, loaded.Load(path))
	require.Equal(t, 3, loaded.Count())

	for _, key := range []string{"10.0.0.1:8333", "10.0.0.2:8333", "10.0.0.3:8334"} {
		_, ok := loaded.byAddr[key]
		require.True(t, ok, "missing %s after load", key)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	s := New(10)
	require.NoError(t, s.Load(filepath.Join(t.TempDir(), "does-not-exist.dat")))
	require.Equal(t, 0, s.Count())
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.dat")

	s := New(10)
	s.StoreOne(testAddr("10.0.0.1", 8333))
	require.NoError(t, s.Save(path))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	require.Empty(t, matches, "temp file left behind after Save")
}
