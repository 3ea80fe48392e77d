package persistence

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// ErrClosed is returned by every operation after Close
var ErrClosed = errors.New("persistence layer is closed")

// NewDistributionRecord wraps an artifact in a new record stamped with a fresh id and the current time.
func NewDistributionRecord(name string, info *types.MerkleDistributorInfo) *types.DistributionRecord {
	return &types.DistributionRecord{
		Id:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().Unix(),
		Info:      info,
	}
}

// RecordRoot validates a record for storage and returns the root it is keyed by.
func RecordRoot(record *types.DistributionRecord) (common.Hash, error) {
	if record == nil {
		return common.Hash{}, fmt.Errorf("cannot save nil DistributionRecord")
	}
	if record.Info == nil {
		return common.Hash{}, fmt.Errorf("distribution record %s has no artifact", record.Id)
	}
	root, err := hexutil.Decode(record.Info.MerkleRoot)
	if err != nil {
		return common.Hash{}, fmt.Errorf("distribution record %s has an invalid merkle root: %w", record.Id, err)
	}
	if len(root) != common.HashLength {
		return common.Hash{}, fmt.Errorf("distribution record %s has a %d byte merkle root", record.Id, len(root))
	}
	return common.BytesToHash(root), nil
}

// SortDistributions orders records by creation time, breaking ties by merkle root.
func SortDistributions(records []*types.DistributionRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt < records[j].CreatedAt
		}
		return records[i].Info.MerkleRoot < records[j].Info.MerkleRoot
	})
}
