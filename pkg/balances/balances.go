// Package balances ingests raw airdrop balances from text records.
// Nothing here is validated beyond the record shape; the distributor package
// owns address and amount validation.
package balances

import (
	"encoding/csv"
	"io"
	"math/big"
	"strings"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/pkg/errors"
)

// MaxDecimals bounds the scaling exponent accepted by ScaleBalance
const MaxDecimals = 77

// ReadBalances reads one address,balance record per line. Blank lines are skipped,
// surrounding whitespace is trimmed and a leading "address,balance" header is ignored.
func ReadBalances(r io.Reader) ([]types.AddressBalance, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records := make([]types.AddressBalance, 0)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read balances")
		}

		line, _ := reader.FieldPos(0)
		if len(fields) != 2 {
			return nil, errors.Errorf("line %d: expected 2 fields (address,balance), got %d", line, len(fields))
		}

		address := strings.TrimSpace(fields[0])
		balance := strings.TrimSpace(fields[1])

		if len(records) == 0 && isHeader(address, balance) {
			continue
		}

		records = append(records, types.AddressBalance{Address: address, Balance: balance})
	}

	return records, nil
}

func isHeader(address, balance string) bool {
	return strings.EqualFold(address, "address") && (strings.EqualFold(balance, "balance") || strings.EqualFold(balance, "amount"))
}

// ScaleBalance converts a human readable decimal balance such as "1.5" into base units
// by multiplying by 10^decimals. Hex balances are already in base units and pass through.
func ScaleBalance(raw string, decimals uint8) (string, error) {
	if decimals > MaxDecimals {
		return "", errors.Errorf("decimals %d exceeds maximum of %d", decimals, MaxDecimals)
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return raw, nil
	}

	whole, frac, hasPoint := strings.Cut(raw, ".")
	if whole == "" && frac == "" {
		return "", errors.Errorf("balance %q has no digits", raw)
	}
	if hasPoint && frac == "" {
		return "", errors.Errorf("balance %q has an empty fractional part", raw)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return "", errors.Errorf("balance %q is not a decimal number", raw)
	}

	// drop trailing zeros so "1.500" scales like "1.5"
	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(decimals) {
		return "", errors.Errorf("balance %q has more than %d fractional digits", raw, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	scaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return "", errors.Errorf("balance %q is not a decimal number", raw)
	}
	return scaled.String(), nil
}

// ScaleBalances applies ScaleBalance to every record, returning new records.
func ScaleBalances(records []types.AddressBalance, decimals uint8) ([]types.AddressBalance, error) {
	scaled := make([]types.AddressBalance, len(records))
	for i, record := range records {
		balance, err := ScaleBalance(record.Balance, decimals)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d (%s)", i, record.Address)
		}
		scaled[i] = types.AddressBalance{Address: record.Address, Balance: balance}
	}
	return scaled, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
