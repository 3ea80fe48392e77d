package merkle

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"
)

// BuildMerkleTree creates a binary merkle tree from leaf hashes.
//
// Adjacent nodes at positions (2i, 2i+1) are combined with CombineHashes. If there's
// an odd number of nodes at any level, the last node is carried up to the next level
// unchanged (it is not re-hashed or duplicated).
func BuildMerkleTree(leaves [][32]byte, opts ...Option) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	cfg := &buildConfig{parallelism: 1}
	for _, opt := range opts {
		opt(cfg)
	}

	supplied := make([][32]byte, len(leaves))
	copy(supplied, leaves)

	layout, positions := layoutLeaves(supplied, cfg.sortLeaves)

	levels := make([][][32]byte, 0)
	levels = append(levels, layout)

	currentLevel := layout
	for len(currentLevel) > 1 {
		nextLevel := hashLevel(currentLevel, cfg.parallelism)
		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		Leaves:    supplied,
		Root:      currentLevel[0],
		levels:    levels,
		positions: positions,
	}, nil
}

// layoutLeaves returns the level 0 layout and the position of every supplied leaf in it.
func layoutLeaves(leaves [][32]byte, sortLeaves bool) ([][32]byte, []int) {
	order := make([]int, len(leaves))
	for i := range order {
		order[i] = i
	}
	if sortLeaves {
		sort.SliceStable(order, func(i, j int) bool {
			return bytes.Compare(leaves[order[i]][:], leaves[order[j]][:]) < 0
		})
	}

	layout := make([][32]byte, len(leaves))
	positions := make([]int, len(leaves))
	for pos, idx := range order {
		layout[pos] = leaves[idx]
		positions[idx] = pos
	}
	return layout, positions
}

// hashLevel computes the parent level of the given level.
func hashLevel(level [][32]byte, parallelism int) [][32]byte {
	pairs := len(level) / 2
	next := make([][32]byte, (len(level)+1)/2)

	hashRange := func(from, to int) {
		for i := from; i < to; i++ {
			next[i] = CombineHashes(level[2*i], level[2*i+1])
		}
	}

	if parallelism <= 1 || pairs < parallelThreshold {
		hashRange(0, pairs)
	} else {
		chunk := (pairs + parallelism - 1) / parallelism
		var g errgroup.Group
		g.SetLimit(parallelism)
		for from := 0; from < pairs; from += chunk {
			to := min(from+chunk, pairs)
			g.Go(func() error {
				hashRange(from, to)
				return nil
			})
		}
		_ = g.Wait()
	}

	// Carry the unpaired node up as-is
	if len(level)%2 == 1 {
		next[len(next)-1] = level[len(level)-1]
	}
	return next
}

// Depth returns the number of levels above the leaves.
func (mt *MerkleTree) Depth() int {
	return len(mt.levels) - 1
}

// GenerateProof creates a merkle proof for the leaf at the given index.
// The proof consists of sibling hashes along the path from leaf to root.
func (mt *MerkleTree) GenerateProof(leafIndex int) (*MerkleProof, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, &IndexOutOfRangeError{Index: leafIndex, Size: len(mt.Leaves)}
	}

	proof := make([][32]byte, 0, mt.Depth())
	index := mt.positions[leafIndex]

	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		// index^1 is the other half of the pair; it is missing when the node is carried up
		siblingIndex := index ^ 1
		if siblingIndex < len(currentLevel) {
			proof = append(proof, currentLevel[siblingIndex])
		}

		index = index / 2
	}

	return &MerkleProof{
		LeafIndex: leafIndex,
		Leaf:      mt.Leaves[leafIndex],
		Proof:     proof,
	}, nil
}

// VerifyProof verifies that a leaf is included in the merkle tree with the given root.
// It recomputes the root hash using the proof and checks if it matches the expected root.
func VerifyProof(proof *MerkleProof, root [32]byte) bool {
	if proof == nil {
		return false
	}
	return VerifyLeaf(proof.Leaf, proof.Proof, root)
}

// VerifyLeaf folds the proof over the leaf with CombineHashes, the same way the claim
// contract does, and compares the result with root. A proof of the wrong length simply
// fails to verify.
func VerifyLeaf(leaf [32]byte, proof [][32]byte, root [32]byte) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = CombineHashes(computed, sibling)
	}
	return computed == root
}

// CombineHashes computes keccak256(min(a, b) || max(a, b)). Argument order does not matter.
func CombineHashes(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return [32]byte(crypto.Keccak256Hash(a[:], b[:]))
}

// String implements fmt.Stringer for debugging output.
func (mt *MerkleTree) String() string {
	return fmt.Sprintf("MerkleTree{leaves: %d, depth: %d, root: 0x%x}", len(mt.Leaves), mt.Depth(), mt.Root)
}
