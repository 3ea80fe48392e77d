package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// MarshalDistributionRecord serializes a DistributionRecord to JSON bytes.
func MarshalDistributionRecord(record *types.DistributionRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("cannot marshal nil DistributionRecord")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal DistributionRecord to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalDistributionRecord deserializes a DistributionRecord from JSON bytes.
func UnmarshalDistributionRecord(data []byte) (*types.DistributionRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var record types.DistributionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to DistributionRecord: %w", err)
	}
	if record.Info == nil {
		return nil, fmt.Errorf("distribution record %s has no artifact", record.Id)
	}

	return &record, nil
}

// CopyDistributionRecord returns a deep copy so callers cannot mutate stored state.
func CopyDistributionRecord(record *types.DistributionRecord) (*types.DistributionRecord, error) {
	data, err := MarshalDistributionRecord(record)
	if err != nil {
		return nil, err
	}
	return UnmarshalDistributionRecord(data)
}
