package store

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBondingRoundTrip(t *testing.T) {
	s := New(NewMemoryKV())

	record := &BondingRecord{Bonded: true}
	for i := range record.PeerAddress {
		record.PeerAddress[i] = byte(0x10 + i)
	}
	for i := range record.LinkKeys {
		record.LinkKeys[i] = byte(i)
	}

	require.NoError(t, s.SaveBonding(record))

	loaded, err := s.LoadBonding()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.PeerAddress, loaded.PeerAddress)
	assert.Equal(t, record.LinkKeys, loaded.LinkKeys)
	assert.True(t, loaded.Bonded)
}

func TestLoadBondingAbsent(t *testing.T) {
	s := New(NewMemoryKV())

	record, err := s.LoadBonding()
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestClearBonding(t *testing.T) {
	s := New(NewMemoryKV())
	require.NoError(t, s.SaveBonding(&BondingRecord{Bonded: true}))
	require.NoError(t, s.ClearBonding())

	record, err := s.LoadBonding()
	require.NoError(t, err)
	assert.Nil(t, record)

	// Clearing again with nothing stored must stay a no-op.
	require.NoError(t, s.ClearBonding())
}

func TestCCCDRoundTrip(t *testing.T) {
	s := New(NewMemoryKV())

	_, ok, err := s.LoadCCCD()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveCCCD(0x0001))

	value, ok, err := s.LoadCCCD()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0001), value)
}

func TestCCCDRejectsTruncatedBlob(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Write(KeyCCCD, []byte{0x01}))

	_, _, err := New(kv).LoadCCCD()
	assert.Error(t, err)
}

func TestIdentityKeysRoundTrip(t *testing.T) {
	s := New(NewMemoryKV())

	_, ok, err := s.LoadIdentityKeys()
	require.NoError(t, err)
	assert.False(t, ok)

	blob := bytes.Repeat([]byte{0xA5}, 80)
	require.NoError(t, s.SaveIdentityKeys(blob))

	loaded, ok, err := s.LoadIdentityKeys()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, blob, loaded)
}

func TestFileKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "handover.json")

	kv, err := NewFileKV(path)
	require.NoError(t, err)

	s := New(kv)
	record := &BondingRecord{Bonded: true}
	record.PeerAddress = [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	require.NoError(t, s.SaveBonding(record))
	require.NoError(t, s.SaveCCCD(0x0001))
	require.NoError(t, s.SaveIdentityKeys([]byte{1, 2, 3}))

	// Simulate a restart by reopening the same file.
	reopened, err := NewFileKV(path)
	require.NoError(t, err)

	s2 := New(reopened)
	loaded, err := s2.LoadBonding()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.PeerAddress, loaded.PeerAddress)

	cccd, ok, err := s2.LoadCCCD()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0001), cccd)

	keys, ok, err := s2.LoadIdentityKeys()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, keys)
}

func TestFileKVMissingFileIsEmpty(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, ok, err := kv.Read(KeyBonding)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKVDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handover.json")
	kv, err := NewFileKV(path)
	require.NoError(t, err)

	require.NoError(t, kv.Write("k", []byte{0x01}))
	require.NoError(t, kv.Delete("k"))
	require.NoError(t, kv.Delete("k")) // missing key is a no-op

	reopened, err := NewFileKV(path)
	require.NoError(t, err)
	_, ok, err := reopened.Read("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryKVReturnsCopies(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Write("k", []byte{1, 2, 3}))

	blob, ok, err := kv.Read("k")
	require.NoError(t, err)
	require.True(t, ok)
	blob[0] = 0xFF

	again, _, err := kv.Read("k")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)
}
