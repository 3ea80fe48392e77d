package merkle

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	testAddress = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	testAmount  = big.NewInt(1000)
)

func TestEncodeLeaf(t *testing.T) {
	leaf, err := EncodeLeaf(3, testAddress, testAmount)
	require.NoError(t, err)

	// Independently pack abi.encodePacked(uint256, address, uint256)
	expected := crypto.Keccak256Hash(
		math.U256Bytes(big.NewInt(3)),
		testAddress.Bytes(),
		math.U256Bytes(new(big.Int).Set(testAmount)),
	)
	require.Equal(t, [32]byte(expected), leaf)

	again, err := EncodeLeaf(3, testAddress, testAmount)
	require.NoError(t, err)
	require.Equal(t, leaf, again)
}

func TestEncodeLeafFieldSensitivity(t *testing.T) {
	base, err := EncodeLeaf(1, testAddress, testAmount)
	require.NoError(t, err)

	t.Run("Index", func(t *testing.T) {
		leaf, err := EncodeLeaf(2, testAddress, testAmount)
		require.NoError(t, err)
		require.NotEqual(t, base, leaf)
	})

	t.Run("Address", func(t *testing.T) {
		other := testAddress
		other[19] ^= 0x01
		leaf, err := EncodeLeaf(1, other, testAmount)
		require.NoError(t, err)
		require.NotEqual(t, base, leaf)
	})

	t.Run("Amount", func(t *testing.T) {
		leaf, err := EncodeLeaf(1, testAddress, new(big.Int).Xor(testAmount, big.NewInt(1)))
		require.NoError(t, err)
		require.NotEqual(t, base, leaf)
	})
}

func TestEncodeLeafWidth(t *testing.T) {
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	t.Run("Max uint256 fits", func(t *testing.T) {
		_, err := EncodeLeaf(0, testAddress, maxUint256)
		require.NoError(t, err)
	})

	t.Run("Zero fits", func(t *testing.T) {
		_, err := EncodeLeaf(0, testAddress, big.NewInt(0))
		require.NoError(t, err)
	})

	failures := map[string]*big.Int{
		"Overflow": new(big.Int).Add(maxUint256, big.NewInt(1)),
		"Negative": big.NewInt(-1),
		"Nil":      nil,
	}
	for name, amount := range failures {
		t.Run(name, func(t *testing.T) {
			leaf, err := EncodeLeaf(0, testAddress, amount)
			require.Error(t, err)
			require.Equal(t, [32]byte{}, leaf)

			var encErr *EncodingError
			require.True(t, errors.As(err, &encErr))
			require.Equal(t, "amount", encErr.Field)
		})
	}
}

func TestEncodedLeavesRoundTrip(t *testing.T) {
	leaves := make([][32]byte, 9)
	for i := range leaves {
		addr := common.BigToAddress(big.NewInt(int64(1000 + i)))
		leaf, err := EncodeLeaf(uint64(i), addr, big.NewInt(int64(i*i+1)))
		require.NoError(t, err)
		leaves[i] = leaf
	}

	tree, err := BuildMerkleTree(leaves)
	require.NoError(t, err)

	for i := range leaves {
		proof, err := tree.GenerateProof(i)
		require.NoError(t, err)
		require.True(t, VerifyProof(proof, tree.Root))
	}
}
