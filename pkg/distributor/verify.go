package distributor

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Verify reports whether (index, address, amount) is committed to by root through proof.
// It mirrors MerkleDistributor.claim: any malformed input is a failed verification.
func Verify(index uint64, address common.Address, amount *big.Int, proof [][32]byte, root [32]byte) bool {
	leaf, err := merkle.EncodeLeaf(index, address, amount)
	if err != nil {
		return false
	}
	return merkle.VerifyLeaf(leaf, proof, root)
}

// DecodeHash parses a 0x-prefixed 32-byte hex hash.
func DecodeHash(s string) ([32]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: invalid hash %q: %v", ErrMalformedArtifact, s, err)
	}
	if len(b) != common.HashLength {
		return [32]byte{}, fmt.Errorf("%w: hash %q is %d bytes, expected %d", ErrMalformedArtifact, s, len(b), common.HashLength)
	}
	return [32]byte(b), nil
}

// DecodeProof parses the hex proof of a published claim.
func DecodeProof(proof []string) ([][32]byte, error) {
	decoded := make([][32]byte, len(proof))
	for i, p := range proof {
		h, err := DecodeHash(p)
		if err != nil {
			return nil, err
		}
		decoded[i] = h
	}
	return decoded, nil
}

// VerifyClaim checks one published claim against a published root.
func VerifyClaim(address string, claim *types.Claim, merkleRoot string) error {
	if claim == nil {
		return fmt.Errorf("%w: missing claim for %s", ErrMalformedArtifact, address)
	}

	account, err := ParseAddress(address)
	if err != nil {
		return err
	}
	amount, err := DecodeQuantity(claim.Amount)
	if err != nil {
		return fmt.Errorf("%w: claim for %s: %v", ErrMalformedArtifact, address, err)
	}
	proof, err := DecodeProof(claim.Proof)
	if err != nil {
		return fmt.Errorf("claim for %s: %w", address, err)
	}
	root, err := DecodeHash(merkleRoot)
	if err != nil {
		return fmt.Errorf("merkle root: %w", err)
	}

	if !Verify(claim.Index, account, amount, proof, root) {
		return fmt.Errorf("%w: index %d, account %s", ErrInvalidProof, claim.Index, address)
	}
	return nil
}

// VerifyDistribution re-checks a published artifact without trusting whoever produced it:
// every claim must verify against the root, claim indexes must be exactly 0..n-1, claim keys
// must be canonical checksummed addresses and tokenTotal must equal the sum of amounts.
func VerifyDistribution(info *types.MerkleDistributorInfo) error {
	if info == nil {
		return fmt.Errorf("%w: nil artifact", ErrMalformedArtifact)
	}
	if len(info.Claims) == 0 {
		return fmt.Errorf("%w: no claims", ErrMalformedArtifact)
	}
	if _, err := DecodeHash(info.MerkleRoot); err != nil {
		return fmt.Errorf("merkle root: %w", err)
	}
	declaredTotal, err := DecodeQuantity(info.TokenTotal)
	if err != nil {
		return fmt.Errorf("%w: token total: %v", ErrMalformedArtifact, err)
	}

	accounts := make([]string, 0, len(info.Claims))
	for account := range info.Claims {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	seen := make(map[uint64]string, len(info.Claims))
	total := new(big.Int)
	for _, account := range accounts {
		claim := info.Claims[account]

		if err := VerifyClaim(account, claim, info.MerkleRoot); err != nil {
			return err
		}

		canonical, _ := ParseAddress(account)
		if canonical.Hex() != account {
			return fmt.Errorf("%w: claim key %s is not in canonical form %s", ErrMalformedArtifact, account, canonical.Hex())
		}
		if claim.Index >= uint64(len(info.Claims)) {
			return fmt.Errorf("%w: index %d of %s is out of range for %d claims", ErrMalformedArtifact, claim.Index, account, len(info.Claims))
		}
		if other, dup := seen[claim.Index]; dup {
			return fmt.Errorf("%w: index %d is used by both %s and %s", ErrMalformedArtifact, claim.Index, other, account)
		}
		seen[claim.Index] = account

		amount, _ := DecodeQuantity(claim.Amount)
		total.Add(total, amount)
	}

	if total.Cmp(declaredTotal) != 0 {
		return fmt.Errorf("%w: declared %s, claims sum to %s", ErrTotalMismatch, declaredTotal, total)
	}
	return nil
}
