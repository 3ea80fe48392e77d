// Package persistencetest holds the behavioral tests every IDistributionPersistence backend must pass.
package persistencetest

import (
	"sync"
	"testing"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/testutil"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend. The suite closes it.
type Factory func(t *testing.T) persistence.IDistributionPersistence

// RunSuite exercises the full IDistributionPersistence contract against backends produced by newStore.
func RunSuite(t *testing.T, newStore Factory) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := testutil.CreateTestDistributionRecord(t, 5, 1700000000)
		require.NoError(t, store.SaveDistribution(record))

		loaded, err := store.LoadDistribution(record.Root())
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record, loaded)
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadDistribution(common.HexToHash("0xdead"))
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.Error(t, store.SaveDistribution(nil))
		require.Error(t, store.SaveDistribution(&types.DistributionRecord{Id: "no-info"}))
		require.Error(t, store.SaveDistribution(&types.DistributionRecord{
			Id:   "bad-root",
			Info: &types.MerkleDistributorInfo{MerkleRoot: "0x1234"},
		}))
	})

	t.Run("SaveReplacesSameRoot", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := testutil.CreateTestDistributionRecord(t, 3, 100)
		require.NoError(t, store.SaveDistribution(record))

		renamed := *record
		renamed.Name = "renamed"
		require.NoError(t, store.SaveDistribution(&renamed))

		loaded, err := store.LoadDistribution(record.Root())
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "renamed", loaded.Name)

		all, err := store.ListDistributions()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("StoredRecordIsIsolated", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := testutil.CreateTestDistributionRecord(t, 3, 100)
		require.NoError(t, store.SaveDistribution(record))

		original := record.Info.TokenTotal
		record.Info.TokenTotal = "0x00"

		loaded, err := store.LoadDistribution(record.Root())
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, original, loaded.Info.TokenTotal)

		loaded.Name = "mutated"
		reloaded, err := store.LoadDistribution(record.Root())
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", reloaded.Name)
	})

	t.Run("List", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		empty, err := store.ListDistributions()
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		newest := testutil.CreateTestDistributionRecord(t, 2, 300)
		oldest := testutil.CreateTestDistributionRecord(t, 3, 100)
		middle := testutil.CreateTestDistributionRecord(t, 4, 200)
		for _, r := range []*types.DistributionRecord{newest, oldest, middle} {
			require.NoError(t, store.SaveDistribution(r))
		}

		all, err := store.ListDistributions()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, oldest.Info.MerkleRoot, all[0].Info.MerkleRoot)
		assert.Equal(t, middle.Info.MerkleRoot, all[1].Info.MerkleRoot)
		assert.Equal(t, newest.Info.MerkleRoot, all[2].Info.MerkleRoot)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		keep := testutil.CreateTestDistributionRecord(t, 2, 1)
		drop := testutil.CreateTestDistributionRecord(t, 3, 2)
		require.NoError(t, store.SaveDistribution(keep))
		require.NoError(t, store.SaveDistribution(drop))

		require.NoError(t, store.DeleteDistribution(drop.Root()))
		require.NoError(t, store.DeleteDistribution(drop.Root()))
		require.NoError(t, store.DeleteDistribution(common.HexToHash("0xbeef")))

		loaded, err := store.LoadDistribution(drop.Root())
		require.NoError(t, err)
		assert.Nil(t, loaded)

		all, err := store.ListDistributions()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.Info.MerkleRoot, all[0].Info.MerkleRoot)
	})

	t.Run("Close", func(t *testing.T) {
		store := newStore(t)
		record := testutil.CreateTestDistributionRecord(t, 2, 1)

		require.NoError(t, store.HealthCheck())
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.HealthCheck(), persistence.ErrClosed)
		assert.ErrorIs(t, store.SaveDistribution(record), persistence.ErrClosed)
		assert.ErrorIs(t, store.DeleteDistribution(record.Root()), persistence.ErrClosed)

		_, err := store.LoadDistribution(record.Root())
		assert.ErrorIs(t, err, persistence.ErrClosed)

		_, err = store.ListDistributions()
		assert.ErrorIs(t, err, persistence.ErrClosed)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		records := make([]*types.DistributionRecord, 8)
		for i := range records {
			records[i] = testutil.CreateTestDistributionRecord(t, i+1, int64(i))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(records)*2)
		for _, record := range records {
			wg.Add(1)
			go func(r *types.DistributionRecord) {
				defer wg.Done()
				if err := store.SaveDistribution(r); err != nil {
					errs <- err
					return
				}
				if _, err := store.LoadDistribution(r.Root()); err != nil {
					errs <- err
				}
			}(record)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		all, err := store.ListDistributions()
		require.NoError(t, err)
		assert.Len(t, all, len(records))
	})
}
