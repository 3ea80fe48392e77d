package contractCaller

import (
	"context"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// IContractCaller reads the on-chain state of a deployed MerkleDistributor.
type IContractCaller interface {
	// GetMerkleRoot returns the root the distributor was deployed with
	GetMerkleRoot(ctx context.Context, distributor common.Address) (common.Hash, error)

	// GetToken returns the ERC-20 the distributor pays out
	GetToken(ctx context.Context, distributor common.Address) (common.Address, error)

	// IsClaimed reports whether the claim at index has been redeemed
	IsClaimed(ctx context.Context, distributor common.Address, index uint64) (bool, error)

	// GetClaimedEvents returns Claimed logs between fromBlock and toBlock (nil for latest)
	GetClaimedEvents(ctx context.Context, distributor common.Address, fromBlock uint64, toBlock *uint64) ([]*types.ClaimedEvent, error)
}
