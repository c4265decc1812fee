package aliases

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

func testAddress(b byte) state.Pubkey {
	var k state.Pubkey
	k[31] = b
	return k
}

func TestStorePersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "alias.yml")

	s, err := NewOnDisk(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("launch", testAddress(1), "pack_set"))
	require.NoError(t, s.Put("alice", testAddress(2), "wallet"))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "launch"}, loaded.List())

	al, ok := loaded.Get("launch")
	require.True(t, ok)
	assert.Equal(t, testAddress(1), state.Pubkey(al.Address))
	assert.Equal(t, "pack_set", al.Kind)

	deleted, err := loaded.Delete("alice")
	require.NoError(t, err)
	assert.True(t, deleted)

	again, err := NewOnDisk(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"launch"}, again.List())
}

func TestResolve(t *testing.T) {
	s := NewInMemory()
	require.NoError(t, s.Put("launch", testAddress(1), ""))

	resolved, err := s.Resolve("launch")
	require.NoError(t, err)
	assert.Equal(t, testAddress(1), resolved)

	resolved, err = s.Resolve(testAddress(7).String())
	require.NoError(t, err)
	assert.Equal(t, testAddress(7), resolved)

	_, err = s.Resolve("unknown-name")
	assert.ErrorIs(t, err, ErrAliasNotFound)

	name, ok := s.FindByAddress(testAddress(1))
	assert.True(t, ok)
	assert.Equal(t, "launch", name)
}

func TestLoadAcceptsScalarAliases(t *testing.T) {
	doc := "aliases:\n  short: " + testAddress(3).String() + "\n"

	s, err := LoadFromReader("", strings.NewReader(doc))
	require.NoError(t, err)

	al, ok := s.Get("short")
	require.True(t, ok)
	assert.Equal(t, testAddress(3), state.Pubkey(al.Address))
	assert.Empty(t, al.Kind)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := LoadFromReader("", strings.NewReader("other: 1\n"))
	assert.Error(t, err)
}
