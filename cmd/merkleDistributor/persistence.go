package main

import (
	"fmt"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/config"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/badger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/memory"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/redis"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func persistenceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "persistence-type",
			Usage:   "Artifact store: memory, badger or redis",
			Value:   string(config.PersistenceType_Badger),
			EnvVars: []string{config.EnvDistributorPersistenceType},
		},
		&cli.StringFlag{
			Name:    "data-path",
			Usage:   "Badger data directory",
			Value:   "./data/distributions",
			EnvVars: []string{config.EnvDistributorDataPath},
		},
		&cli.StringFlag{
			Name:    "redis-address",
			Usage:   "Redis server address (host:port)",
			EnvVars: []string{config.EnvDistributorRedisAddress},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			EnvVars: []string{config.EnvDistributorRedisPassword},
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Redis database number (0-15)",
			EnvVars: []string{config.EnvDistributorRedisDB},
		},
		&cli.StringFlag{
			Name:    "redis-key-prefix",
			Usage:   "Prefix for every Redis key",
			EnvVars: []string{config.EnvDistributorRedisKeyPrefix},
		},
	}
}

func parsePersistenceConfig(c *cli.Context) *config.PersistenceConfig {
	return &config.PersistenceConfig{
		Type:           config.PersistenceType(c.String("persistence-type")),
		DataPath:       c.String("data-path"),
		RedisAddress:   c.String("redis-address"),
		RedisPassword:  c.String("redis-password"),
		RedisDB:        c.Int("redis-db"),
		RedisKeyPrefix: c.String("redis-key-prefix"),
	}
}

// openPersistence validates cfg and opens the configured store
func openPersistence(cfg *config.PersistenceConfig, l *zap.Logger) (persistence.IDistributionPersistence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid persistence configuration: %w", err)
	}

	switch cfg.Type {
	case config.PersistenceType_Memory:
		return memory.NewMemoryPersistence(l), nil
	case config.PersistenceType_Badger:
		return badger.NewBadgerPersistence(cfg.DataPath, l)
	case config.PersistenceType_Redis:
		return redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.RedisAddress,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}, l)
	}
	return nil, fmt.Errorf("unsupported persistence type %q", cfg.Type)
}
