package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AddressBalance is a raw, unvalidated input record.
type AddressBalance struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// Entry is a validated recipient and the amount they may claim.
type Entry struct {
	Address common.Address
	Amount  *big.Int
}

// IndexedEntry is an Entry placed at its position in the canonical order.
// Index is hashed into the leaf, so it is part of the commitment.
type IndexedEntry struct {
	Index   uint64
	Address common.Address
	Amount  *big.Int
}

// Claim is the per-recipient record published in the distribution artifact.
type Claim struct {
	Index  uint64   `json:"index"`
	Amount string   `json:"amount"`
	Proof  []string `json:"proof"`
}

// MerkleDistributorInfo is the blob that gets published (e.g. pinned to IPFS).
// It is sufficient to recreate the whole tree and lets anyone check that every
// airdrop is included and nothing else is.
type MerkleDistributorInfo struct {
	MerkleRoot string            `json:"merkleRoot"`
	TokenTotal string            `json:"tokenTotal"`
	Claims     map[string]*Claim `json:"claims"`
}

// DistributionRecord is a stored artifact along with bookkeeping metadata.
type DistributionRecord struct {
	// Id is a random identifier assigned when the record is first created
	Id string `json:"id"`

	// Name is an optional human readable label
	Name string `json:"name,omitempty"`

	// CreatedAt is the unix timestamp the artifact was compiled at
	CreatedAt int64 `json:"createdAt"`

	Info *MerkleDistributorInfo `json:"info"`
}

// Root returns the merkle root of the stored artifact as a hash.
func (r *DistributionRecord) Root() common.Hash {
	if r == nil || r.Info == nil {
		return common.Hash{}
	}
	return common.HexToHash(r.Info.MerkleRoot)
}

// ClaimedEvent is a Claimed log emitted by a deployed distributor contract.
type ClaimedEvent struct {
	Index       uint64         `json:"index"`
	Account     common.Address `json:"account"`
	Amount      *big.Int       `json:"amount"`
	BlockNumber uint64         `json:"blockNumber"`
	TxHash      common.Hash    `json:"txHash"`
}
