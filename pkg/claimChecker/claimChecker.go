// Package claimChecker compares a compiled distribution artifact against its deployed distributor contract.
package claimChecker

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/contractCaller"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestsPerSecond = 25
	DefaultConcurrency       = 8
)

// RootMismatchError is returned when the deployed contract commits to a different root than the artifact.
type RootMismatchError struct {
	Distributor common.Address
	Expected    common.Hash
	Actual      common.Hash
}

func (e *RootMismatchError) Error() string {
	return fmt.Sprintf("distributor %s has merkle root %s, artifact has %s",
		e.Distributor.Hex(), e.Actual.Hex(), e.Expected.Hex())
}

type Config struct {
	RequestsPerSecond float64
	Concurrency       int
}

// ClaimStatus is the on-chain state of one claim in the artifact.
type ClaimStatus struct {
	Address string `json:"address"`
	Index   uint64 `json:"index"`
	Amount  string `json:"amount"`
	Claimed bool   `json:"claimed"`
}

// ClaimReport summarizes redemption progress of a distribution.
type ClaimReport struct {
	Distributor     common.Address `json:"distributor"`
	MerkleRoot      common.Hash    `json:"merkleRoot"`
	Token           common.Address `json:"token"`
	Claims          []*ClaimStatus `json:"claims"`
	ClaimedCount    int            `json:"claimedCount"`
	ClaimedAmount   string         `json:"claimedAmount"`
	UnclaimedAmount string         `json:"unclaimedAmount"`
}

type ClaimChecker struct {
	caller      contractCaller.IContractCaller
	limiter     *rate.Limiter
	concurrency int
	logger      *zap.Logger
}

// NewClaimChecker creates a checker. Zero config values fall back to the defaults.
func NewClaimChecker(caller contractCaller.IContractCaller, cfg *Config, logger *zap.Logger) *ClaimChecker {
	rps := float64(DefaultRequestsPerSecond)
	concurrency := DefaultConcurrency
	if cfg != nil {
		if cfg.RequestsPerSecond > 0 {
			rps = cfg.RequestsPerSecond
		}
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
	}

	return &ClaimChecker{
		caller:      caller,
		limiter:     rate.NewLimiter(rate.Limit(rps), concurrency),
		concurrency: concurrency,
		logger:      logger,
	}
}

// CheckRoot fails with a RootMismatchError unless the contract at address was deployed with the artifact's root.
func (c *ClaimChecker) CheckRoot(ctx context.Context, address common.Address, info *types.MerkleDistributorInfo) error {
	expected, err := distributor.DecodeHash(info.MerkleRoot)
	if err != nil {
		return fmt.Errorf("artifact merkle root: %w", err)
	}

	actual, err := c.caller.GetMerkleRoot(ctx, address)
	if err != nil {
		return err
	}

	if actual != common.Hash(expected) {
		return &RootMismatchError{Distributor: address, Expected: expected, Actual: actual}
	}
	return nil
}

// CheckClaims verifies the root and then looks up every claim's redemption state.
// Lookups are rate limited and run with bounded concurrency; the first failure cancels the rest.
func (c *ClaimChecker) CheckClaims(ctx context.Context, address common.Address, info *types.MerkleDistributorInfo) (*ClaimReport, error) {
	if err := c.CheckRoot(ctx, address, info); err != nil {
		return nil, err
	}

	token, err := c.caller.GetToken(ctx, address)
	if err != nil {
		return nil, err
	}

	statuses := make([]*ClaimStatus, 0, len(info.Claims))
	for account, claim := range info.Claims {
		statuses = append(statuses, &ClaimStatus{
			Address: account,
			Index:   claim.Index,
			Amount:  claim.Amount,
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Index < statuses[j].Index
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, status := range statuses {
		status := status
		g.Go(func() error {
			if err := c.limiter.Wait(gctx); err != nil {
				return err
			}
			claimed, err := c.caller.IsClaimed(gctx, address, status.Index)
			if err != nil {
				return err
			}
			status.Claimed = claimed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to check claims on %s: %w", address.Hex(), err)
	}

	claimedAmount := new(big.Int)
	unclaimedAmount := new(big.Int)
	claimedCount := 0
	for _, status := range statuses {
		amount, err := distributor.DecodeQuantity(status.Amount)
		if err != nil {
			return nil, fmt.Errorf("claim %d (%s): %w", status.Index, status.Address, err)
		}
		if status.Claimed {
			claimedCount++
			claimedAmount.Add(claimedAmount, amount)
		} else {
			unclaimedAmount.Add(unclaimedAmount, amount)
		}
	}

	c.logger.Sugar().Infow("Checked distribution claims",
		"distributor", address.Hex(),
		"claims", len(statuses),
		"claimed", claimedCount,
	)

	return &ClaimReport{
		Distributor:     address,
		MerkleRoot:      common.HexToHash(info.MerkleRoot),
		Token:           token,
		Claims:          statuses,
		ClaimedCount:    claimedCount,
		ClaimedAmount:   distributor.EncodeQuantity(claimedAmount),
		UnclaimedAmount: distributor.EncodeQuantity(unclaimedAmount),
	}, nil
}

// UnexpectedClaimError reports a Claimed event that does not match any claim in the artifact.
type UnexpectedClaimError struct {
	Event  *types.ClaimedEvent
	Reason string
}

func (e *UnexpectedClaimError) Error() string {
	return fmt.Sprintf("claim %d by %s in tx %s: %s",
		e.Event.Index, e.Event.Account.Hex(), e.Event.TxHash.Hex(), e.Reason)
}

// ReconcileEvents fetches Claimed events since fromBlock and checks each against the artifact.
func (c *ClaimChecker) ReconcileEvents(
	ctx context.Context,
	address common.Address,
	info *types.MerkleDistributorInfo,
	fromBlock uint64,
) ([]*types.ClaimedEvent, error) {
	events, err := c.caller.GetClaimedEvents(ctx, address, fromBlock, nil)
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		claim, ok := info.Claims[event.Account.Hex()]
		if !ok {
			return nil, &UnexpectedClaimError{Event: event, Reason: "account is not in the distribution"}
		}
		if claim.Index != event.Index {
			return nil, &UnexpectedClaimError{Event: event, Reason: fmt.Sprintf("artifact index is %d", claim.Index)}
		}
		if event.Amount == nil || distributor.EncodeQuantity(event.Amount) != claim.Amount {
			return nil, &UnexpectedClaimError{Event: event, Reason: fmt.Sprintf("artifact amount is %s", claim.Amount)}
		}
	}
	return events, nil
}
