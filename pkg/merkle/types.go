package merkle

// MerkleTree represents a binary merkle tree built from leaf hashes.
// The tree uses keccak256 hashing with sorted pairs for Solidity compatibility.
// A built tree is never mutated and may be read from any number of goroutines.
type MerkleTree struct {
	// Leaves contains the leaf hashes in the order they were supplied
	Leaves [][32]byte

	// Root is the merkle root hash
	Root [32]byte

	// levels stores all tree levels for proof generation
	// levels[0] = leaf layout, levels[len-1] = root
	levels [][][32]byte

	// positions maps a leaf index to its position in levels[0]
	positions []int
}

// MerkleProof represents a proof that a leaf is included in the tree.
// The proof consists of sibling hashes along the path from leaf to root.
type MerkleProof struct {
	// LeafIndex is the index of the leaf in the supplied leaves array
	LeafIndex int

	// Leaf is the hash of the leaf being proven
	Leaf [32]byte

	// Proof contains the sibling hashes from leaf to root
	// proof[0] is the sibling of the leaf, proof[len-1] is near the root.
	// Levels where the node was carried up unpaired contribute nothing.
	Proof [][32]byte
}
