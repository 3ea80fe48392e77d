package persistence

import (
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// IDistributionPersistence stores published distribution artifacts, keyed by merkle root.
// All implementations must be safe for concurrent use.
//
// Artifacts are a pure function of their input, so two records with the same root
// describe the same distribution; saving over an existing root replaces the record.
type IDistributionPersistence interface {
	// SaveDistribution persists a record under the merkle root of its artifact.
	// Returns error only on storage failure or an invalid record.
	SaveDistribution(record *types.DistributionRecord) error

	// LoadDistribution retrieves a record by merkle root.
	// Returns nil if it doesn't exist, error only on storage failure.
	LoadDistribution(merkleRoot common.Hash) (*types.DistributionRecord, error)

	// ListDistributions returns all records sorted by creation time (ascending).
	// Returns empty slice if none exist, error only on storage failure.
	ListDistributions() ([]*types.DistributionRecord, error)

	// DeleteDistribution removes a record by merkle root.
	// Idempotent - returns nil if it doesn't exist.
	DeleteDistribution(merkleRoot common.Hash) error

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations return ErrClosed.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}
