package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/config"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/logger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/memory"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/testutil"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_TwoSpaceIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]string{"merkleRoot": "0x00"}))
	assert.Equal(t, "{\n  \"merkleRoot\": \"0x00\"\n}\n", buf.String())
}

func TestArtifactRoundTrip(t *testing.T) {
	record := testutil.CreateTestDistributionRecord(t, 7, 1)
	path := filepath.Join(t.TempDir(), "distribution.json")

	require.NoError(t, writeArtifact(path, record.Info))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"merkleRoot\": "))

	info, err := readArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, record.Info, info)
	require.NoError(t, distributor.VerifyDistribution(info))
}

func TestReadArtifact_Errors(t *testing.T) {
	_, err := readArtifact(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"merkleRoot": `), 0o644))
	_, err = readArtifact(path)
	assert.ErrorIs(t, err, distributor.ErrMalformedArtifact)
}

func TestLoadArtifact(t *testing.T) {
	testLogger, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)

	store := memory.NewMemoryPersistence(testLogger)
	record := testutil.CreateTestDistributionRecord(t, 4, 1)
	require.NoError(t, store.SaveDistribution(record))

	opener := func() (persistence.IDistributionPersistence, error) { return store, nil }

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.json")
		require.NoError(t, writeArtifact(path, record.Info))

		info, err := loadArtifact(path, "", opener)
		require.NoError(t, err)
		assert.Equal(t, record.Info, info)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := loadArtifact("", "", opener)
		require.Error(t, err)
	})

	t.Run("malformed root", func(t *testing.T) {
		_, err := loadArtifact("", "0x12", opener)
		assert.ErrorIs(t, err, distributor.ErrMalformedArtifact)
	})

	t.Run("unknown root", func(t *testing.T) {
		fresh := memory.NewMemoryPersistence(testLogger)
		_, err := loadArtifact("", record.Info.MerkleRoot, func() (persistence.IDistributionPersistence, error) {
			return fresh, nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no stored distribution")
	})

	// Runs last: loadArtifact closes the store it opened
	t.Run("from store", func(t *testing.T) {
		info, err := loadArtifact("", record.Info.MerkleRoot, opener)
		require.NoError(t, err)
		assert.Equal(t, record.Info, info)
	})
}

func TestOpenPersistence(t *testing.T) {
	testLogger, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)

	store, err := openPersistence(&config.PersistenceConfig{Type: config.PersistenceType_Memory}, testLogger)
	require.NoError(t, err)
	require.NoError(t, store.HealthCheck())
	require.NoError(t, store.Close())

	store, err = openPersistence(&config.PersistenceConfig{
		Type:     config.PersistenceType_Badger,
		DataPath: t.TempDir(),
	}, testLogger)
	require.NoError(t, err)
	require.NoError(t, store.HealthCheck())
	require.NoError(t, store.Close())

	_, err = openPersistence(&config.PersistenceConfig{Type: "sqlite"}, testLogger)
	require.Error(t, err)

	_, err = openPersistence(&config.PersistenceConfig{Type: config.PersistenceType_Redis}, testLogger)
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	first := testutil.CreateTestDistributionRecord(t, 3, 10)
	second := testutil.CreateTestDistributionRecord(t, 5, 20)

	summaries := summarize([]*types.DistributionRecord{first, second})
	require.Len(t, summaries, 2)
	assert.Equal(t, first.Id, summaries[0].Id)
	assert.Equal(t, first.Info.MerkleRoot, summaries[0].MerkleRoot)
	assert.Equal(t, 3, summaries[0].Claims)
	assert.Equal(t, second.Info.TokenTotal, summaries[1].TokenTotal)
	assert.Equal(t, 5, summaries[1].Claims)
}
