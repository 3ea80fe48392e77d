package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefixDistribution = "merkle:distribution:"
	keySetDistributions   = "merkle:distributions:index"
	keySchemaVersion      = "merkle:metadata:schema_version"
	currentSchemaVersion  = "v1"

	operationTimeout = 5 * time.Second
)

// RedisPersistence stores distribution records in Redis. A set of known roots is kept
// alongside the records since Redis has no cheap prefix iteration.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "airdrop:" gives "airdrop:merkle:distribution:0x..."
	KeyPrefix string
}

// NewRedisPersistence connects to Redis and initializes the schema version.
func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis persistence initialized",
		"address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)

	return rp, nil
}

func (r *RedisPersistence) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisPersistence) distributionKey(merkleRoot common.Hash) string {
	return r.prefixKey(keyPrefixDistribution + merkleRoot.Hex())
}

func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existing, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if existing != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existing, currentSchemaVersion)
	}
	return nil
}

// SaveDistribution writes the record and adds its root to the index in one pipeline
func (r *RedisPersistence) SaveDistribution(record *types.DistributionRecord) error {
	root, err := persistence.RecordRoot(record)
	if err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalDistributionRecord(record)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.distributionKey(root), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetDistributions), root.Hex())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save distribution %s: %w", root.Hex(), err)
	}
	return nil
}

// LoadDistribution retrieves a distribution record by merkle root
func (r *RedisPersistence) LoadDistribution(merkleRoot common.Hash) (*types.DistributionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.distributionKey(merkleRoot)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load distribution %s: %w", merkleRoot.Hex(), err)
	}

	return persistence.UnmarshalDistributionRecord(data)
}

// ListDistributions returns all indexed records sorted by creation time.
// Index entries whose record has disappeared are pruned.
func (r *RedisPersistence) ListDistributions() ([]*types.DistributionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	indexKey := r.prefixKey(keySetDistributions)
	roots, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read distribution index: %w", err)
	}

	records := make([]*types.DistributionRecord, 0, len(roots))
	if len(roots) == 0 {
		return records, nil
	}

	keys := make([]string, len(roots))
	for i, root := range roots {
		keys[i] = r.distributionKey(common.HexToHash(root))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read distributions: %w", err)
	}

	var stale []interface{}
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			stale = append(stale, roots[i])
			continue
		}
		record, err := persistence.UnmarshalDistributionRecord([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal DistributionRecord, skipping",
				"merkleRoot", roots[i], "error", err)
			continue
		}
		records = append(records, record)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, indexKey, stale...).Err(); err != nil {
			r.logger.Sugar().Warnw("Failed to prune distribution index", "error", err)
		}
	}

	persistence.SortDistributions(records)
	return records, nil
}

// DeleteDistribution removes the record and its index entry
func (r *RedisPersistence) DeleteDistribution(merkleRoot common.Hash) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.distributionKey(merkleRoot))
	pipe.SRem(ctx, r.prefixKey(keySetDistributions), merkleRoot.Hex())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete distribution %s: %w", merkleRoot.Hex(), err)
	}
	return nil
}

// Close closes the client connection
func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis persistence closed")
	return nil
}

// HealthCheck pings the server and confirms the schema version is present
func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Err(); err != nil {
		if err == redis.Nil {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	return nil
}

var _ persistence.IDistributionPersistence = (*RedisPersistence)(nil)
