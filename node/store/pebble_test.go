package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"source.quilibrium.com/quilibrium/monorepo/config"
)

func TestNewPebbleDB_ExistingDirectory(t *testing.T) {
	testDir, err := os.MkdirTemp("", "pebble-test-existing-*")
	require.NoError(t, err)
	defer os.RemoveAll(testDir)

	core, logs := observer.New(zap.InfoLevel)
	testLogger := zap.New(core)

	cfg := &config.DBConfig{
		Path: testDir,
	}

	db := NewPebbleDB(testLogger, cfg)
	require.NotNil(t, db)
	defer db.Close()

	foundInfoLog := false
	for _, log := range logs.All() {
		if log.Message == "store found" {
			foundInfoLog = true
			assert.Equal(t, testDir, log.ContextMap()["path"])
			break
		}
	}
	assert.True(t, foundInfoLog, "Expected 'store found' info log")
}

func TestNewPebbleDB_NonExistingDirectory(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "pebble-test-nonexisting-*")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	testDir := filepath.Join(baseDir, "nonexisting")

	core, logs := observer.New(zap.WarnLevel)
	testLogger := zap.New(core)

	cfg := &config.DBConfig{
		Path: testDir,
	}

	db := NewPebbleDB(testLogger, cfg)
	require.NotNil(t, db)
	defer db.Close()

	_, err = os.Stat(testDir)
	assert.NoError(t, err, "Directory should have been created")

	foundWarnLog := false
	for _, log := range logs.All() {
		if log.Message == "store not found, creating" {
			foundWarnLog = true
			assert.Equal(t, testDir, log.ContextMap()["path"])
			break
		}
	}
	assert.True(t, foundWarnLog, "Expected 'store not found, creating' warning log")
}

func TestNewPebbleDB_InMemoryLeavesNoFiles(t *testing.T) {
	baseDir := t.TempDir()
	testDir := filepath.Join(baseDir, "never-created")

	db := NewPebbleDB(zap.NewNop(), &config.DBConfig{
		Path:             testDir,
		InMemoryDONOTUSE: true,
	})
	defer db.Close()

	require.NoError(t, db.Set([]byte("k"), []byte("v")))

	_, err := os.Stat(testDir)
	assert.True(t, os.IsNotExist(err))
}

func TestPebbleTransactionCommitAndAbort(t *testing.T) {
	db := NewInMemKVDB()
	defer db.Close()

	txn := db.NewBatch(true)
	require.NoError(t, txn.Set([]byte{0x01}, []byte("one")))

	value, closer, err := txn.Get([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), value)
	closer.Close()

	_, _, err = db.Get([]byte{0x01})
	assert.ErrorIs(t, err, pebble.ErrNotFound)

	require.NoError(t, txn.Commit())

	value, closer, err = db.Get([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), value)
	closer.Close()

	aborted := db.NewBatch(false)
	require.NoError(t, aborted.Set([]byte{0x02}, []byte("two")))
	require.NoError(t, aborted.Abort())

	_, _, err = db.Get([]byte{0x02})
	assert.ErrorIs(t, err, pebble.ErrNotFound)
}

func TestPebbleDBIterAndDeleteRange(t *testing.T) {
	db := NewInMemKVDB()
	defer db.Close()

	for _, k := range []byte{0x01, 0x02, 0x03, 0x04} {
		require.NoError(t, db.Set([]byte{0xAA, k}, []byte{k}))
	}

	require.NoError(t, db.DeleteRange([]byte{0xAA, 0x02}, []byte{0xAA, 0x04}))

	iter, err := db.NewIter([]byte{0xAA, 0x00}, []byte{0xAA, 0xFF})
	require.NoError(t, err)

	var seen []byte
	for iter.First(); iter.Valid(); iter.Next() {
		seen = append(seen, iter.Value()[0])
	}
	require.NoError(t, iter.Close())

	assert.Equal(t, []byte{0x01, 0x04}, seen)
	assert.NoError(t, db.CompactAll())
}

func TestCompactAllEmpty(t *testing.T) {
	db := NewInMemKVDB()
	defer db.Close()

	assert.NoError(t, db.CompactAll())
}
