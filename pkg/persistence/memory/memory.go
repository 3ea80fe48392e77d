package memory

import (
	"sync"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MemoryPersistence is an in-memory implementation of IDistributionPersistence.
//
// All data is lost when the process exits. Records are deep copied on the way
// in and out to prevent external mutation.
type MemoryPersistence struct {
	mu            sync.RWMutex
	distributions map[common.Hash]*types.DistributionRecord
	logger        *zap.Logger
	closed        bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	logger.Sugar().Warnw("Using in-memory persistence - distributions are lost on exit")

	return &MemoryPersistence{
		distributions: make(map[common.Hash]*types.DistributionRecord),
		logger:        logger,
	}
}

// SaveDistribution persists a distribution record.
func (m *MemoryPersistence) SaveDistribution(record *types.DistributionRecord) error {
	root, err := persistence.RecordRoot(record)
	if err != nil {
		return err
	}
	stored, err := persistence.CopyDistributionRecord(record)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	m.distributions[root] = stored
	return nil
}

// LoadDistribution retrieves a distribution record by merkle root.
func (m *MemoryPersistence) LoadDistribution(merkleRoot common.Hash) (*types.DistributionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	record, exists := m.distributions[merkleRoot]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return persistence.CopyDistributionRecord(record)
}

// ListDistributions returns all distribution records sorted by creation time.
func (m *MemoryPersistence) ListDistributions() ([]*types.DistributionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	result := make([]*types.DistributionRecord, 0, len(m.distributions))
	for _, record := range m.distributions {
		copied, err := persistence.CopyDistributionRecord(record)
		if err != nil {
			return nil, err
		}
		result = append(result, copied)
	}
	persistence.SortDistributions(result)

	return result, nil
}

// DeleteDistribution removes a distribution record.
func (m *MemoryPersistence) DeleteDistribution(merkleRoot common.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.distributions, merkleRoot)
	return nil
}

// Close marks the persistence layer as closed.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck verifies the persistence layer is operational.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}
	return nil
}

var _ persistence.IDistributionPersistence = (*MemoryPersistence)(nil)
