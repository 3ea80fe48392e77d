package merkle

// parallelThreshold is the minimum number of pairs in a level before hashing is split across goroutines
const parallelThreshold = 1024

type buildConfig struct {
	sortLeaves  bool
	parallelism int
}

// Option configures how BuildMerkleTree lays out and hashes the tree.
type Option func(*buildConfig)

// WithSortedLeaves places the leaves in ascending byte order of their hashes before
// building, the layout produced by the Uniswap merkle-distributor scripts.
// Proofs are still requested by the index the leaf was supplied at.
func WithSortedLeaves() Option {
	return func(c *buildConfig) {
		c.sortLeaves = true
	}
}

// WithParallelism hashes large levels on up to n goroutines. The result is identical
// to a sequential build.
func WithParallelism(n int) Option {
	return func(c *buildConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}
