package distributor

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Default hardhat accounts #0, #1 and #2
const (
	wallet0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	wallet1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	wallet2 = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

// Leaves of the three account example, 200/300/250 tokens with 18 decimals
const (
	leafWallet0 = "0x279fba6d03a94ef5bbe224b93ee0eb1b2a9fabba05bd70d4f52857f315193ce5"
	leafWallet1 = "0xb831028c247f5710bc73447229e2fb749dc2f3023c42b54bb6bf34495cb6f42d"
	leafWallet2 = "0x24cb45e98e17ea69218d9d0422c9cbfae63ae810b442e3e8e34550a14af5b696"
)

func threeAccountRecords() []types.AddressBalance {
	return []types.AddressBalance{
		{Address: wallet0, Balance: "200000000000000000000"},
		{Address: wallet1, Balance: "300000000000000000000"},
		{Address: wallet2, Balance: "250000000000000000000"},
	}
}

func mustAmount(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func TestEncodeLeafMatchesClaimContract(t *testing.T) {
	testCases := []struct {
		index   uint64
		address string
		amount  string
		leaf    string
	}{
		{0, wallet2, "250000000000000000000", leafWallet2},
		{1, wallet1, "300000000000000000000", leafWallet1},
		{2, wallet0, "200000000000000000000", leafWallet0},
	}

	for _, tc := range testCases {
		leaf, err := merkle.EncodeLeaf(tc.index, common.HexToAddress(tc.address), mustAmount(t, tc.amount))
		require.NoError(t, err)
		assert.Equal(t, tc.leaf, common.Hash(leaf).Hex())
	}
}

// TestCompile_WorkedExample checks the three account example with the default index order layout
func TestCompile_WorkedExample(t *testing.T) {
	info, err := Compile(threeAccountRecords())
	require.NoError(t, err)

	// 750 tokens with 18 decimals
	assert.Equal(t, "0x28a857425466f80000", info.TokenTotal)
	require.Len(t, info.Claims, 3)

	// Canonical order is wallet2 < wallet1 < wallet0
	l0 := common.HexToHash(leafWallet2)
	l1 := common.HexToHash(leafWallet1)
	l2 := common.HexToHash(leafWallet0)
	left := merkle.CombineHashes(l0, l1)
	root := merkle.CombineHashes(left, l2)

	assert.Equal(t, common.Hash(root).Hex(), info.MerkleRoot)
	assert.Equal(t, map[string]*types.Claim{
		wallet2: {
			Index:  0,
			Amount: "0x0d8d726b7177a80000",
			Proof:  []string{leafWallet1, leafWallet0},
		},
		wallet1: {
			Index:  1,
			Amount: "0x1043561a8829300000",
			Proof:  []string{leafWallet2, leafWallet0},
		},
		wallet0: {
			Index:  2,
			Amount: "0x0ad78ebc5ac6200000",
			Proof:  []string{common.Hash(left).Hex()},
		},
	}, info.Claims)

	require.NoError(t, VerifyDistribution(info))
}

// TestCompile_SortedLeavesMatchesUniswapScripts reproduces the artifact emitted by the
// merkle-distributor scripts, which sort leaves by hash before building the tree
func TestCompile_SortedLeavesMatchesUniswapScripts(t *testing.T) {
	info, err := Compile(threeAccountRecords(), WithSortedLeaves())
	require.NoError(t, err)

	assert.Equal(t, "0x28a857425466f80000", info.TokenTotal)
	assert.Equal(t, map[string]*types.Claim{
		wallet0: {
			Index:  2,
			Amount: "0x0ad78ebc5ac6200000",
			Proof: []string{
				"0x24cb45e98e17ea69218d9d0422c9cbfae63ae810b442e3e8e34550a14af5b696",
				"0xb831028c247f5710bc73447229e2fb749dc2f3023c42b54bb6bf34495cb6f42d",
			},
		},
		wallet1: {
			Index:  1,
			Amount: "0x1043561a8829300000",
			Proof: []string{
				"0xac4b229fd524883991978d7370e0fb20044dfd87f336ddb567b3d6e7c000e708",
			},
		},
		wallet2: {
			Index:  0,
			Amount: "0x0d8d726b7177a80000",
			Proof: []string{
				"0x279fba6d03a94ef5bbe224b93ee0eb1b2a9fabba05bd70d4f52857f315193ce5",
				"0xb831028c247f5710bc73447229e2fb749dc2f3023c42b54bb6bf34495cb6f42d",
			},
		},
	}, info.Claims)

	require.NoError(t, VerifyDistribution(info))
}

func TestCompile_ChangingAmountChangesRoot(t *testing.T) {
	base, err := Compile(threeAccountRecords())
	require.NoError(t, err)

	for i := range threeAccountRecords() {
		records := threeAccountRecords()
		records[i].Balance = records[i].Balance[:len(records[i].Balance)-1] + "1"

		changed, err := Compile(records)
		require.NoError(t, err)
		assert.NotEqual(t, base.MerkleRoot, changed.MerkleRoot)
	}
}

func TestCompile_Determinism(t *testing.T) {
	records := []types.AddressBalance{
		{Address: wallet0, Balance: "1"},
		{Address: wallet1, Balance: "2"},
		{Address: wallet2, Balance: "3"},
		{Address: "0x90f79bf6eb2c4f870365e785982e1f101e93b906", Balance: "4"},
		{Address: "0x15d34aaf54267db7d7c367839aaf71a00a2c6a65", Balance: "5"},
	}
	expected, err := Compile(records)
	require.NoError(t, err)

	orderings := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 2, 3, 4, 0},
	}
	for _, ordering := range orderings {
		shuffled := make([]types.AddressBalance, len(records))
		for i, j := range ordering {
			shuffled[i] = records[j]
		}

		info, err := Compile(shuffled)
		require.NoError(t, err)
		assert.Equal(t, expected, info)
	}

	parallel, err := Compile(records, WithParallelism(4))
	require.NoError(t, err)
	assert.Equal(t, expected, parallel)
}

func TestCompile_IndexesFollowCanonicalOrder(t *testing.T) {
	records := []types.AddressBalance{
		{Address: "0xB000000000000000000000000000000000000000", Balance: "1"},
		{Address: "0xa000000000000000000000000000000000000000", Balance: "1"},
		{Address: "0x0000000000000000000000000000000000000001", Balance: "1"},
	}

	d, err := BuildDistribution(records)
	require.NoError(t, err)

	require.Len(t, d.Entries, 3)
	assert.Equal(t, common.HexToAddress("0x0000000000000000000000000000000000000001"), d.Entries[0].Address)
	assert.Equal(t, common.HexToAddress("0xa000000000000000000000000000000000000000"), d.Entries[1].Address)
	assert.Equal(t, common.HexToAddress("0xB000000000000000000000000000000000000000"), d.Entries[2].Address)
	for i, entry := range d.Entries {
		assert.Equal(t, uint64(i), entry.Index)
	}
}

func TestCompile_Conservation(t *testing.T) {
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	records := make([]types.AddressBalance, 0, 4)
	expected := new(big.Int)
	for i := 1; i <= 4; i++ {
		records = append(records, types.AddressBalance{
			Address: common.BigToAddress(big.NewInt(int64(i))).Hex(),
			Balance: maxUint256.String(),
		})
		expected.Add(expected, maxUint256)
	}

	d, err := BuildDistribution(records)
	require.NoError(t, err)
	assert.Equal(t, 0, expected.Cmp(d.TokenTotal))
	assert.Greater(t, d.TokenTotal.BitLen(), 256)

	info, err := d.Info()
	require.NoError(t, err)
	assert.Equal(t, EncodeQuantity(expected), info.TokenTotal)
	require.NoError(t, VerifyDistribution(info))
}

func TestCompile_SingleEntry(t *testing.T) {
	d, err := BuildDistribution([]types.AddressBalance{{Address: wallet1, Balance: "42"}})
	require.NoError(t, err)

	leaf, err := merkle.EncodeLeaf(0, common.HexToAddress(wallet1), big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, leaf, d.Tree.Root)

	claim, err := d.Claim(common.HexToAddress(wallet1))
	require.NoError(t, err)
	require.NotNil(t, claim)
	assert.Equal(t, uint64(0), claim.Index)
	assert.Empty(t, claim.Proof)
	assert.Equal(t, "0x2a", claim.Amount)

	missing, err := d.Claim(common.HexToAddress(wallet0))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCompile_TwoEntries(t *testing.T) {
	info, err := Compile([]types.AddressBalance{
		{Address: wallet0, Balance: "100"},
		{Address: wallet1, Balance: "0"},
	})
	require.NoError(t, err)

	for _, claim := range info.Claims {
		assert.Len(t, claim.Proof, 1)
	}
	assert.Equal(t, "0x00", info.Claims[wallet1].Amount)
	assert.Equal(t, "0x64", info.TokenTotal)
	require.NoError(t, VerifyDistribution(info))
}

func TestCompile_HexBalances(t *testing.T) {
	decimal, err := Compile(threeAccountRecords())
	require.NoError(t, err)

	hexRecords := []types.AddressBalance{
		{Address: wallet0, Balance: "0x0ad78ebc5ac6200000"},
		{Address: wallet1, Balance: "0X1043561A8829300000"},
		{Address: wallet2, Balance: "0xd8d726b7177a80000"},
	}
	hexInfo, err := Compile(hexRecords)
	require.NoError(t, err)
	assert.Equal(t, decimal, hexInfo)
}

func TestCompile_AddressForms(t *testing.T) {
	canonical, err := Compile([]types.AddressBalance{{Address: wallet0, Balance: "1"}})
	require.NoError(t, err)

	for _, form := range []string{
		strings.ToLower(wallet0),
		"0x" + strings.ToUpper(wallet0[2:]),
		wallet0[2:],
	} {
		info, err := Compile([]types.AddressBalance{{Address: form, Balance: "1"}})
		require.NoError(t, err, form)
		assert.Equal(t, canonical, info)
	}
}

func TestCompile_InvalidAddress(t *testing.T) {
	invalid := []string{
		"",
		"hello",
		"0x123",
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb9226",
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb922666",
		"0xg39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		// mixed case with a broken checksum
		"0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
	}

	for _, address := range invalid {
		t.Run(address, func(t *testing.T) {
			records := threeAccountRecords()
			records = append(records, types.AddressBalance{Address: address, Balance: "1"})

			info, err := Compile(records)
			require.Error(t, err)
			assert.Nil(t, info)

			var addrErr *InvalidAddressError
			require.True(t, errors.As(err, &addrErr), err.Error())
			assert.Equal(t, 3, addrErr.Record)
			assert.Equal(t, address, addrErr.Address)
		})
	}
}

func TestCompile_InvalidAmount(t *testing.T) {
	invalid := []string{"", "-1", "1.5", "abc", "0x", "0xzz", " 10", "10 ", "+5", "1e18", "1_000"}

	for _, balance := range invalid {
		t.Run(balance, func(t *testing.T) {
			records := []types.AddressBalance{
				{Address: wallet0, Balance: "1"},
				{Address: wallet1, Balance: balance},
			}

			info, err := Compile(records)
			require.Error(t, err)
			assert.Nil(t, info)

			var amountErr *InvalidAmountError
			require.True(t, errors.As(err, &amountErr), err.Error())
			assert.Equal(t, 1, amountErr.Record)
			assert.Equal(t, balance, amountErr.Balance)
			assert.Equal(t, wallet1, amountErr.Address)
		})
	}
}

func TestCompile_DuplicateAddress(t *testing.T) {
	duplicates := []string{wallet0, strings.ToLower(wallet0), wallet0[2:]}

	for _, dup := range duplicates {
		t.Run(dup, func(t *testing.T) {
			records := []types.AddressBalance{
				{Address: wallet0, Balance: "1"},
				{Address: wallet1, Balance: "2"},
				{Address: dup, Balance: "3"},
			}

			info, err := Compile(records)
			require.Error(t, err)
			assert.Nil(t, info)

			var dupErr *DuplicateAddressError
			require.True(t, errors.As(err, &dupErr))
			assert.Equal(t, 2, dupErr.Record)
			assert.Equal(t, 0, dupErr.FirstRecord)
			assert.Equal(t, wallet0, dupErr.Address)
		})
	}
}

func TestCompile_Empty(t *testing.T) {
	info, err := Compile(nil)
	require.Error(t, err)
	assert.Nil(t, info)
	assert.True(t, errors.Is(err, merkle.ErrEmptyTree))
}

func TestCompile_AmountTooWide(t *testing.T) {
	tooWide := new(big.Int).Lsh(big.NewInt(1), 256)

	info, err := Compile([]types.AddressBalance{
		{Address: wallet0, Balance: "1"},
		{Address: wallet1, Balance: tooWide.String()},
	})
	require.Error(t, err)
	assert.Nil(t, info)

	var encErr *merkle.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Contains(t, err.Error(), "record 1")
}

func TestCanonicalOrder(t *testing.T) {
	input := []common.Address{
		common.HexToAddress(wallet0),
		common.HexToAddress(wallet2),
		common.HexToAddress(wallet1),
	}
	original := make([]common.Address, len(input))
	copy(original, input)

	sorted := CanonicalOrder(input)
	assert.Equal(t, []common.Address{
		common.HexToAddress(wallet2),
		common.HexToAddress(wallet1),
		common.HexToAddress(wallet0),
	}, sorted)
	assert.Equal(t, original, input)
}

func TestQuantityEncoding(t *testing.T) {
	testCases := []struct {
		value   *big.Int
		encoded string
	}{
		{big.NewInt(0), "0x00"},
		{big.NewInt(1), "0x01"},
		{big.NewInt(255), "0xff"},
		{big.NewInt(256), "0x0100"},
		{big.NewInt(750), "0x02ee"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.encoded, EncodeQuantity(tc.value))

		decoded, err := DecodeQuantity(tc.encoded)
		require.NoError(t, err)
		assert.Equal(t, 0, tc.value.Cmp(decoded))
	}

	_, err := DecodeQuantity("750")
	require.Error(t, err)
}
