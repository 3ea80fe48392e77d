package badger

import (
	"testing"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/logger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/persistencetest"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/testutil"
	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerPersistence_Suite(t *testing.T) {
	persistencetest.RunSuite(t, func(t *testing.T) persistence.IDistributionPersistence {
		testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
		bp, err := NewBadgerPersistence(t.TempDir(), testLogger)
		require.NoError(t, err)
		return bp
	})
}

func TestBadgerPersistence_SurvivesRestart(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	bp, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)

	first := testutil.CreateTestDistributionRecord(t, 4, 100)
	second := testutil.CreateTestDistributionRecord(t, 6, 200)
	require.NoError(t, bp.SaveDistribution(first))
	require.NoError(t, bp.SaveDistribution(second))
	require.NoError(t, bp.Close())

	reopened, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadDistribution(first.Root())
	require.NoError(t, err)
	assert.Equal(t, first, loaded)

	all, err := reopened.ListDistributions()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.Info.MerkleRoot, all[1].Info.MerkleRoot)
}

func TestBadgerPersistence_RejectsUnknownSchema(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	bp, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keySchemaVersion), []byte("v0"))
	}))
	require.NoError(t, bp.Close())

	_, err = NewBadgerPersistence(tmpDir, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version")
}

func TestBadgerPersistence_ListSkipsCorruptRecords(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	bp, err := NewBadgerPersistence(t.TempDir(), testLogger)
	require.NoError(t, err)
	defer func() { _ = bp.Close() }()

	good := testutil.CreateTestDistributionRecord(t, 3, 1)
	require.NoError(t, bp.SaveDistribution(good))
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyPrefixDistribution+"0xcorrupt"), []byte("{"))
	}))

	all, err := bp.ListDistributions()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, good.Info.MerkleRoot, all[0].Info.MerkleRoot)
}
