package merkle

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// LeafSize is the length of the packed leaf preimage: uint256 || address || uint256
const LeafSize = 32 + common.AddressLength + 32

// EncodeLeaf hashes a distribution entry into a merkle leaf.
// The format matches the claim contract:
// keccak256(abi.encodePacked(uint256 index, address account, uint256 amount))
func EncodeLeaf(index uint64, address common.Address, amount *big.Int) ([32]byte, error) {
	if amount == nil {
		return [32]byte{}, &EncodingError{Field: "amount", Value: "<nil>", Reason: "amount is required"}
	}
	if amount.Sign() < 0 {
		return [32]byte{}, &EncodingError{Field: "amount", Value: amount.String(), Reason: "negative values cannot be encoded as uint256"}
	}

	packedAmount, overflow := uint256.FromBig(amount)
	if overflow {
		return [32]byte{}, &EncodingError{Field: "amount", Value: amount.String(), Reason: "value exceeds 256 bits"}
	}

	indexWord := uint256.NewInt(index).Bytes32()
	amountWord := packedAmount.Bytes32()

	data := make([]byte, 0, LeafSize)
	data = append(data, indexWord[:]...)
	data = append(data, address.Bytes()...)
	data = append(data, amountWord[:]...)

	return [32]byte(crypto.Keccak256Hash(data)), nil
}
