// Package distributor compiles a list of airdrop balances into a merkle root and
// per-recipient claims that verify against the on-chain MerkleDistributor.
package distributor

import (
	"fmt"
	"math/big"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

type compileConfig struct {
	treeOpts []merkle.Option
}

// Option configures compilation.
type Option func(*compileConfig)

// WithSortedLeaves lays the tree out with leaves sorted by hash, matching artifacts
// produced by the Uniswap merkle-distributor scripts. Entry indexes are unaffected.
func WithSortedLeaves() Option {
	return func(c *compileConfig) {
		c.treeOpts = append(c.treeOpts, merkle.WithSortedLeaves())
	}
}

// WithParallelism hashes large tree levels on up to n goroutines.
func WithParallelism(n int) Option {
	return func(c *compileConfig) {
		c.treeOpts = append(c.treeOpts, merkle.WithParallelism(n))
	}
}

// Distribution is a compiled, validated balance map. It is immutable once built.
type Distribution struct {
	// Entries are ordered canonically; Entries[i].Index == i
	Entries []types.IndexedEntry

	Tree       *merkle.MerkleTree
	TokenTotal *big.Int

	byAddress map[common.Address]int
}

// BuildDistribution validates the records and builds the merkle tree over them.
//
// Compilation is all or nothing: the first invalid address, invalid balance or
// duplicate address fails the whole batch. Entry indexes come from the ascending
// byte order of the canonical addresses, never from input order.
func BuildDistribution(records []types.AddressBalance, opts ...Option) (*Distribution, error) {
	cfg := &compileConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no balances to distribute: %w", merkle.ErrEmptyTree)
	}

	amounts := make(map[common.Address]*big.Int, len(records))
	firstSeen := make(map[common.Address]int, len(records))
	addresses := make([]common.Address, 0, len(records))

	for i, record := range records {
		address, err := ParseAddress(record.Address)
		if err != nil {
			return nil, withRecord(err, i, "")
		}

		amount, err := ParseAmount(record.Balance)
		if err != nil {
			return nil, withRecord(err, i, address.Hex())
		}

		if first, exists := firstSeen[address]; exists {
			return nil, &DuplicateAddressError{Record: i, FirstRecord: first, Address: address.Hex()}
		}

		firstSeen[address] = i
		amounts[address] = amount
		addresses = append(addresses, address)
	}

	sorted := CanonicalOrder(addresses)

	entries := make([]types.IndexedEntry, len(sorted))
	leaves := make([][32]byte, len(sorted))
	byAddress := make(map[common.Address]int, len(sorted))
	total := new(big.Int)

	for i, address := range sorted {
		entry := types.IndexedEntry{
			Index:   uint64(i),
			Address: address,
			Amount:  amounts[address],
		}

		leaf, err := merkle.EncodeLeaf(entry.Index, entry.Address, entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", firstSeen[address], address.Hex(), err)
		}

		entries[i] = entry
		leaves[i] = leaf
		byAddress[address] = i
		total.Add(total, entry.Amount)
	}

	tree, err := merkle.BuildMerkleTree(leaves, cfg.treeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build merkle tree: %w", err)
	}

	return &Distribution{
		Entries:    entries,
		Tree:       tree,
		TokenTotal: total,
		byAddress:  byAddress,
	}, nil
}

// Compile validates the records and returns the publishable distribution artifact.
func Compile(records []types.AddressBalance, opts ...Option) (*types.MerkleDistributorInfo, error) {
	d, err := BuildDistribution(records, opts...)
	if err != nil {
		return nil, err
	}
	return d.Info()
}

// Root returns the merkle root the distributor contract must be deployed with.
func (d *Distribution) Root() common.Hash {
	return common.Hash(d.Tree.Root)
}

// Claim returns the claim record for an address, or nil if the address is not in the distribution.
func (d *Distribution) Claim(address common.Address) (*types.Claim, error) {
	i, ok := d.byAddress[address]
	if !ok {
		return nil, nil
	}
	return d.claimAt(i)
}

func (d *Distribution) claimAt(i int) (*types.Claim, error) {
	entry := d.Entries[i]

	proof, err := d.Tree.GenerateProof(i)
	if err != nil {
		return nil, fmt.Errorf("failed to generate proof for %s: %w", entry.Address.Hex(), err)
	}

	hexProof := make([]string, len(proof.Proof))
	for j, sibling := range proof.Proof {
		hexProof[j] = common.Hash(sibling).Hex()
	}

	return &types.Claim{
		Index:  entry.Index,
		Amount: EncodeQuantity(entry.Amount),
		Proof:  hexProof,
	}, nil
}

// Info assembles the artifact: root, total and a claim per checksummed address.
func (d *Distribution) Info() (*types.MerkleDistributorInfo, error) {
	claims := make(map[string]*types.Claim, len(d.Entries))
	for i, entry := range d.Entries {
		claim, err := d.claimAt(i)
		if err != nil {
			return nil, err
		}
		claims[entry.Address.Hex()] = claim
	}

	return &types.MerkleDistributorInfo{
		MerkleRoot: d.Root().Hex(),
		TokenTotal: EncodeQuantity(d.TokenTotal),
		Claims:     claims,
	}, nil
}

// withRecord attaches the record position (and address, when known) to a parse error.
func withRecord(err error, record int, address string) error {
	switch e := err.(type) {
	case *InvalidAddressError:
		annotated := *e
		annotated.Record = record
		return &annotated
	case *InvalidAmountError:
		annotated := *e
		annotated.Record = record
		annotated.Address = address
		return &annotated
	}
	return fmt.Errorf("record %d: %w", record, err)
}
