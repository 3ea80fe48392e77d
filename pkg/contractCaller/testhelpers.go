package contractCaller

import (
	"context"
	"fmt"
	"sync"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// MockContractCaller is an in-memory IContractCaller for tests.
// Set Err to make every call fail.
type MockContractCaller struct {
	MerkleRoot common.Hash
	Token      common.Address
	Events     []*types.ClaimedEvent
	Err        error

	mu      sync.Mutex
	claimed map[uint64]bool
	calls   int
}

// NewMockContractCaller creates a mock distributor deployed with root whose listed indices are already claimed
func NewMockContractCaller(root common.Hash, claimed ...uint64) *MockContractCaller {
	m := &MockContractCaller{
		MerkleRoot: root,
		claimed:    make(map[uint64]bool, len(claimed)),
	}
	for _, index := range claimed {
		m.claimed[index] = true
	}
	return m
}

// IsClaimedCalls returns how many IsClaimed lookups were served
func (m *MockContractCaller) IsClaimedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockContractCaller) GetMerkleRoot(ctx context.Context, distributor common.Address) (common.Hash, error) {
	if m.Err != nil {
		return common.Hash{}, m.Err
	}
	return m.MerkleRoot, nil
}

func (m *MockContractCaller) GetToken(ctx context.Context, distributor common.Address) (common.Address, error) {
	if m.Err != nil {
		return common.Address{}, m.Err
	}
	return m.Token, nil
}

func (m *MockContractCaller) IsClaimed(ctx context.Context, distributor common.Address, index uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.Err != nil {
		return false, fmt.Errorf("isClaimed(%d): %w", index, m.Err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.claimed[index], nil
}

func (m *MockContractCaller) GetClaimedEvents(ctx context.Context, distributor common.Address, fromBlock uint64, toBlock *uint64) ([]*types.ClaimedEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	var events []*types.ClaimedEvent
	for _, e := range m.Events {
		if e.BlockNumber < fromBlock || (toBlock != nil && e.BlockNumber > *toBlock) {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

var _ IContractCaller = (*MockContractCaller)(nil)
