package redis

import (
	"context"
	"os"
	"testing"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/logger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/persistencetest"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestRedisAddress returns REDIS_TEST_ADDRESS if set, otherwise localhost:6379.
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// requireRedis connects to the test server under a unique key prefix and skips when none is reachable.
// Keys written under the prefix are removed when the test finishes.
func requireRedis(t *testing.T) *RedisPersistence {
	t.Helper()

	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	cfg := &RedisConfig{
		Address:   getTestRedisAddress(),
		DB:        15,
		KeyPrefix: "test-" + uuid.New().String() + ":",
	}

	rp, err := NewRedisPersistence(cfg, testLogger)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", cfg.Address, err)
	}

	t.Cleanup(func() {
		cleanup, err := NewRedisPersistence(cfg, testLogger)
		if err != nil {
			return
		}
		defer func() { _ = cleanup.Close() }()

		ctx := context.Background()
		keys, err := cleanup.client.Keys(ctx, cfg.KeyPrefix+"*").Result()
		if err == nil && len(keys) > 0 {
			_ = cleanup.client.Del(ctx, keys...).Err()
		}
	})

	return rp
}

func TestRedisPersistence_Suite(t *testing.T) {
	persistencetest.RunSuite(t, func(t *testing.T) persistence.IDistributionPersistence {
		return requireRedis(t)
	})
}

func TestRedisPersistence_ListPrunesStaleIndex(t *testing.T) {
	rp := requireRedis(t)
	defer func() { _ = rp.Close() }()

	record := testutil.CreateTestDistributionRecord(t, 3, 1)
	require.NoError(t, rp.SaveDistribution(record))

	ctx := context.Background()
	require.NoError(t, rp.client.Del(ctx, rp.distributionKey(record.Root())).Err())

	all, err := rp.ListDistributions()
	require.NoError(t, err)
	assert.Empty(t, all)

	members, err := rp.client.SMembers(ctx, rp.prefixKey(keySetDistributions)).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestNewRedisPersistence_InvalidConfig(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	_, err := NewRedisPersistence(nil, testLogger)
	require.Error(t, err)

	_, err = NewRedisPersistence(&RedisConfig{}, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address cannot be empty")
}
