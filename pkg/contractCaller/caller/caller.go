package caller

import (
	"context"
	"math/big"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/contractCaller"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/middleware-bindings/MerkleDistributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ContractCaller struct {
	backend bind.ContractBackend
	logger  *zap.Logger
}

// NewContractCallerFromRpcUrl dials rpcUrl and checks the node reports the expected chain id.
// A chainId of zero skips the check.
func NewContractCallerFromRpcUrl(
	ctx context.Context,
	rpcUrl string,
	chainId uint64,
	logger *zap.Logger,
) (*ContractCaller, error) {
	client, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", rpcUrl)
	}

	reported, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to get chain ID")
	}
	if chainId != 0 && reported.Uint64() != chainId {
		client.Close()
		return nil, errors.Errorf("rpc endpoint is on chain %d, expected %d", reported.Uint64(), chainId)
	}
	logger.Sugar().Infow("Connected to chain", "chain_id", reported.Uint64())

	return NewContractCaller(client, logger), nil
}

func NewContractCaller(backend bind.ContractBackend, logger *zap.Logger) *ContractCaller {
	return &ContractCaller{
		backend: backend,
		logger:  logger,
	}
}

func (cc *ContractCaller) distributor(address common.Address) (*MerkleDistributor.MerkleDistributor, error) {
	d, err := MerkleDistributor.NewMerkleDistributor(address, cc.backend)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create merkle distributor instance")
	}
	return d, nil
}

func (cc *ContractCaller) GetMerkleRoot(ctx context.Context, distributor common.Address) (common.Hash, error) {
	d, err := cc.distributor(distributor)
	if err != nil {
		return common.Hash{}, err
	}

	root, err := d.MerkleRoot(&bind.CallOpts{Context: ctx})
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "failed to get merkle root of %s", distributor.Hex())
	}
	return common.Hash(root), nil
}

func (cc *ContractCaller) GetToken(ctx context.Context, distributor common.Address) (common.Address, error) {
	d, err := cc.distributor(distributor)
	if err != nil {
		return common.Address{}, err
	}

	token, err := d.Token(&bind.CallOpts{Context: ctx})
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "failed to get token of %s", distributor.Hex())
	}
	return token, nil
}

func (cc *ContractCaller) IsClaimed(ctx context.Context, distributor common.Address, index uint64) (bool, error) {
	d, err := cc.distributor(distributor)
	if err != nil {
		return false, err
	}

	claimed, err := d.IsClaimed(&bind.CallOpts{Context: ctx}, new(big.Int).SetUint64(index))
	if err != nil {
		return false, errors.Wrapf(err, "failed to check claim %d on %s", index, distributor.Hex())
	}
	return claimed, nil
}

func (cc *ContractCaller) GetClaimedEvents(
	ctx context.Context,
	distributor common.Address,
	fromBlock uint64,
	toBlock *uint64,
) ([]*types.ClaimedEvent, error) {
	d, err := cc.distributor(distributor)
	if err != nil {
		return nil, err
	}

	it, err := d.FilterClaimed(&bind.FilterOpts{Start: fromBlock, End: toBlock, Context: ctx})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to filter Claimed events on %s", distributor.Hex())
	}
	defer func() { _ = it.Close() }()

	events := make([]*types.ClaimedEvent, 0)
	for it.Next() {
		events = append(events, &types.ClaimedEvent{
			Index:       it.Event.Index.Uint64(),
			Account:     it.Event.Account,
			Amount:      it.Event.Amount,
			BlockNumber: it.Event.Raw.BlockNumber,
			TxHash:      it.Event.Raw.TxHash,
		})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate Claimed events")
	}

	cc.logger.Sugar().Debugw("Fetched Claimed events",
		"distributor", distributor.Hex(),
		"fromBlock", fromBlock,
		"count", len(events),
	)
	return events, nil
}

var _ contractCaller.IContractCaller = (*ContractCaller)(nil)
