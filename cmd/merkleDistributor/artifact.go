package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// writeJSON writes v with two-space indentation and a trailing newline
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// writeArtifact writes info to path, or to stdout when path is "-".
// The file is written to a temporary sibling and renamed so a failed write never leaves a partial artifact.
func writeArtifact(path string, info *types.MerkleDistributorInfo) error {
	if path == "-" {
		return writeJSON(os.Stdout, info)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if err := writeJSON(f, info); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// readArtifact decodes an artifact from path, or from stdin when path is "-"
func readArtifact(path string) (*types.MerkleDistributorInfo, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open artifact: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var info types.MerkleDistributorInfo
	if err := json.NewDecoder(r).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", distributor.ErrMalformedArtifact, err)
	}
	return &info, nil
}

// loadArtifact reads the artifact from input when set, otherwise from the store by root
func loadArtifact(input, root string, openStore func() (persistence.IDistributionPersistence, error)) (*types.MerkleDistributorInfo, error) {
	if input != "" {
		return readArtifact(input)
	}
	if root == "" {
		return nil, fmt.Errorf("either --input or --root is required")
	}

	hash, err := distributor.DecodeHash(root)
	if err != nil {
		return nil, err
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	record, err := store.LoadDistribution(common.Hash(hash))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("no stored distribution with root %s", root)
	}
	return record.Info, nil
}

// distributionSummary is the list view of a stored record
type distributionSummary struct {
	Id         string `json:"id"`
	Name       string `json:"name,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	MerkleRoot string `json:"merkleRoot"`
	TokenTotal string `json:"tokenTotal"`
	Claims     int    `json:"claims"`
}

func summarize(records []*types.DistributionRecord) []distributionSummary {
	summaries := make([]distributionSummary, len(records))
	for i, record := range records {
		summaries[i] = distributionSummary{
			Id:         record.Id,
			Name:       record.Name,
			CreatedAt:  record.CreatedAt,
			MerkleRoot: record.Info.MerkleRoot,
			TokenTotal: record.Info.TokenTotal,
			Claims:     len(record.Info.Claims),
		}
	}
	return summaries
}
