package distributor

import (
	"bytes"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddress validates a hex address and returns it in canonical form.
// The 0x prefix is optional. Mixed-case input must carry a valid EIP-55 checksum;
// all lower or all upper case input is accepted as is.
func ParseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, &InvalidAddressError{Record: -1, Address: raw, Reason: "not a 20-byte hex address"}
	}

	address := common.HexToAddress(raw)
	body := trimHexPrefix(raw)
	if strings.ToLower(body) != body && strings.ToUpper(body) != body {
		if "0x"+body != address.Hex() {
			return common.Address{}, &InvalidAddressError{Record: -1, Address: raw, Reason: "bad address checksum"}
		}
	}
	return address, nil
}

// ParseAmount parses a balance given as decimal digits or 0x-prefixed hex.
// Signs, whitespace, fractions and exponents are rejected.
func ParseAmount(raw string) (*big.Int, error) {
	invalid := func(reason string) error {
		return &InvalidAmountError{Record: -1, Balance: raw, Reason: reason}
	}

	if raw == "" {
		return nil, invalid("empty balance")
	}
	if strings.HasPrefix(raw, "-") {
		return nil, invalid("balance must not be negative")
	}

	base, digits := 10, raw
	if has0x(raw) {
		base, digits = 16, raw[2:]
	}
	if digits == "" {
		return nil, invalid("missing digits")
	}
	for _, c := range digits {
		if !isDigit(c, base) {
			return nil, invalid("not a decimal or hex integer")
		}
	}

	amount, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, invalid("not a decimal or hex integer")
	}
	return amount, nil
}

// EncodeQuantity hex encodes a non-negative integer with an even number of digits,
// e.g. 0x00, 0x0ad78ebc5ac6200000.
func EncodeQuantity(v *big.Int) string {
	if v == nil || v.Sign() == 0 {
		return "0x00"
	}
	return hexutil.Encode(v.Bytes())
}

// DecodeQuantity parses a 0x-prefixed hex quantity as written by EncodeQuantity.
// Leading zeros are allowed.
func DecodeQuantity(s string) (*big.Int, error) {
	if !has0x(s) {
		return nil, &InvalidAmountError{Record: -1, Balance: s, Reason: "quantity must be 0x-prefixed"}
	}
	return ParseAmount(s)
}

// CanonicalOrder returns the addresses sorted in ascending byte order. The input is not modified.
func CanonicalOrder(addresses []common.Address) []common.Address {
	sorted := make([]common.Address, len(addresses))
	copy(sorted, addresses)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	return sorted
}

func has0x(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func trimHexPrefix(s string) string {
	if has0x(s) {
		return s[2:]
	}
	return s
}

func isDigit(c rune, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	}
	return false
}
