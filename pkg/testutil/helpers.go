package testutil

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// CreateTestBalances creates n distinct balance records with amounts 1000, 2000, ...
// Addresses are derived from a prime stride so they do not arrive in canonical order.
func CreateTestBalances(n int) []types.AddressBalance {
	records := make([]types.AddressBalance, n)
	for i := 0; i < n; i++ {
		addr := common.BigToAddress(big.NewInt(int64(7919 * (n - i))))
		records[i] = types.AddressBalance{
			Address: addr.Hex(),
			Balance: fmt.Sprintf("%d", (i+1)*1000),
		}
	}
	return records
}

// CreateTestDistribution compiles n test balances and fails the test on error
func CreateTestDistribution(t *testing.T, n int) *distributor.Distribution {
	t.Helper()

	dist, err := distributor.BuildDistribution(CreateTestBalances(n))
	if err != nil {
		t.Fatalf("Failed to build test distribution: %v", err)
	}
	return dist
}

// CreateTestDistributionRecord wraps a compiled artifact of n entries in a record created at createdAt
func CreateTestDistributionRecord(t *testing.T, n int, createdAt int64) *types.DistributionRecord {
	t.Helper()

	info, err := CreateTestDistribution(t, n).Info()
	if err != nil {
		t.Fatalf("Failed to assemble test distribution: %v", err)
	}

	return &types.DistributionRecord{
		Id:        uuid.New().String(),
		Name:      fmt.Sprintf("test-%d", n),
		CreatedAt: createdAt,
		Info:      info,
	}
}
