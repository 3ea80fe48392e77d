package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/balances"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/claimChecker"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/config"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/contractCaller/caller"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/logger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "merkle-distributor",
		Usage: "Merkle airdrop distribution compiler",
		Description: `Compiles a list of address balances into a merkle distribution artifact.

The artifact holds the merkle root a MerkleDistributor contract is deployed with and,
for every recipient, the index, amount and proof needed to call claim().`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvDistributorVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Compile a balances CSV into a distribution artifact",
				Action: runGenerate,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "CSV file of address,balance records",
						EnvVars:  []string{config.EnvDistributorInput},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Artifact output path (- for stdout)",
						Value:   "-",
						EnvVars: []string{config.EnvDistributorOutput},
					},
					&cli.UintFlag{
						Name:    "decimals",
						Usage:   "Scale decimal balances by 10^decimals (0 means balances are already base units)",
						EnvVars: []string{config.EnvDistributorDecimals},
					},
					&cli.BoolFlag{
						Name:    "sorted-leaves",
						Usage:   "Sort leaf hashes before building the tree",
						EnvVars: []string{config.EnvDistributorSortedLeaves},
					},
					&cli.IntFlag{
						Name:    "parallelism",
						Usage:   "Workers used to hash large tree levels",
						Value:   runtime.NumCPU(),
						EnvVars: []string{config.EnvDistributorParallelism},
					},
					&cli.StringFlag{
						Name:    "name",
						Usage:   "Label stored with the distribution",
						EnvVars: []string{config.EnvDistributorName},
					},
					&cli.BoolFlag{
						Name:  "store",
						Usage: "Save the artifact to the configured store",
					},
				}, persistenceFlags()...),
			},
			{
				Name:   "verify",
				Usage:  "Re-verify every claim of an artifact against its root",
				Action: runVerify,
				Flags:  append(artifactFlags(), persistenceFlags()...),
			},
			{
				Name:   "proof",
				Usage:  "Print the verified claim of one address",
				Action: runProof,
				Flags: append(append(artifactFlags(),
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Recipient address",
						Required: true,
					},
				), persistenceFlags()...),
			},
			{
				Name:   "status",
				Usage:  "Compare an artifact with its deployed distributor and report claimed indexes",
				Action: runStatus,
				Flags:  append(append(artifactFlags(), chainFlags()...), persistenceFlags()...),
			},
			{
				Name:   "list",
				Usage:  "List stored distributions",
				Action: runList,
				Flags:  persistenceFlags(),
			},
			{
				Name:   "delete",
				Usage:  "Remove a stored distribution",
				Action: runDelete,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "root",
						Usage:    "Merkle root of the stored distribution",
						Required: true,
					},
				}, persistenceFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func artifactFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Artifact JSON path (- for stdin)",
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "Load the artifact from the store by merkle root instead of --input",
		},
	}
}

func chainFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "rpc-url",
			Aliases: []string{"rpc"},
			Usage:   "Ethereum RPC endpoint URL",
			Value:   "http://localhost:8545",
			EnvVars: []string{config.EnvDistributorRPCURL},
		},
		&cli.StringFlag{
			Name:     "distributor-address",
			Usage:    "Deployed MerkleDistributor contract address",
			EnvVars:  []string{config.EnvDistributorContractAddress},
			Required: true,
		},
		&cli.UintFlag{
			Name:    "chain-id",
			Usage:   fmt.Sprintf("Expected chain ID: %s", config.GetSupportedChainIDsString()),
			EnvVars: []string{config.EnvDistributorChainID},
		},
		&cli.Float64Flag{
			Name:    "rps",
			Usage:   "Maximum isClaimed calls per second",
			Value:   claimChecker.DefaultRequestsPerSecond,
			EnvVars: []string{config.EnvDistributorRequestsPerSec},
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Usage:   "Concurrent isClaimed calls",
			Value:   claimChecker.DefaultConcurrency,
			EnvVars: []string{config.EnvDistributorConcurrency},
		},
		&cli.Uint64Flag{
			Name:  "from-block",
			Usage: "Also reconcile Claimed events emitted since this block",
		},
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

func storeOpener(c *cli.Context, l *zap.Logger) func() (persistence.IDistributionPersistence, error) {
	return func() (persistence.IDistributionPersistence, error) {
		return openPersistence(parsePersistenceConfig(c), l)
	}
}

func runGenerate(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	cfg := &config.CompileConfig{
		InputPath:    c.String("input"),
		OutputPath:   c.String("output"),
		Decimals:     c.Uint("decimals"),
		SortedLeaves: c.Bool("sorted-leaves"),
		Parallelism:  c.Int("parallelism"),
		Name:         c.String("name"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("failed to open balances: %w", err)
	}
	records, err := balances.ReadBalances(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	if cfg.Decimals > 0 {
		records, err = balances.ScaleBalances(records, uint8(cfg.Decimals))
		if err != nil {
			return err
		}
	}

	opts := []distributor.Option{distributor.WithParallelism(cfg.Parallelism)}
	if cfg.SortedLeaves {
		opts = append(opts, distributor.WithSortedLeaves())
	}

	info, err := distributor.Compile(records, opts...)
	if err != nil {
		return fmt.Errorf("failed to compile distribution: %w", err)
	}

	if c.Bool("store") {
		store, err := openPersistence(parsePersistenceConfig(c), l)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.SaveDistribution(persistence.NewDistributionRecord(cfg.Name, info)); err != nil {
			return fmt.Errorf("failed to store distribution: %w", err)
		}
	}

	if err := writeArtifact(cfg.OutputPath, info); err != nil {
		return err
	}

	l.Sugar().Infow("Generated distribution",
		"merkleRoot", info.MerkleRoot,
		"tokenTotal", info.TokenTotal,
		"claims", len(info.Claims),
		"sortedLeaves", cfg.SortedLeaves,
	)
	return nil
}

func runVerify(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	info, err := loadArtifact(c.String("input"), c.String("root"), storeOpener(c, l))
	if err != nil {
		return err
	}

	if err := distributor.VerifyDistribution(info); err != nil {
		return fmt.Errorf("distribution failed verification: %w", err)
	}

	l.Sugar().Infow("Distribution verified",
		"merkleRoot", info.MerkleRoot,
		"tokenTotal", info.TokenTotal,
		"claims", len(info.Claims),
	)
	return nil
}

func runProof(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	address, err := distributor.ParseAddress(c.String("address"))
	if err != nil {
		return err
	}

	info, err := loadArtifact(c.String("input"), c.String("root"), storeOpener(c, l))
	if err != nil {
		return err
	}

	claim, ok := info.Claims[address.Hex()]
	if !ok {
		return fmt.Errorf("%s is not in distribution %s", address.Hex(), info.MerkleRoot)
	}
	if err := distributor.VerifyClaim(address.Hex(), claim, info.MerkleRoot); err != nil {
		return err
	}

	return writeJSON(os.Stdout, struct {
		Address    string   `json:"address"`
		MerkleRoot string   `json:"merkleRoot"`
		Index      uint64   `json:"index"`
		Amount     string   `json:"amount"`
		Proof      []string `json:"proof"`
	}{
		Address:    address.Hex(),
		MerkleRoot: info.MerkleRoot,
		Index:      claim.Index,
		Amount:     claim.Amount,
		Proof:      claim.Proof,
	})
}

func runStatus(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	chainCfg := &config.ChainConfig{
		RpcUrl:             c.String("rpc-url"),
		DistributorAddress: c.String("distributor-address"),
		ChainID:            config.ChainId(c.Uint("chain-id")),
		RequestsPerSecond:  c.Float64("rps"),
		Concurrency:        c.Int("concurrency"),
	}
	if err := chainCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	info, err := loadArtifact(c.String("input"), c.String("root"), storeOpener(c, l))
	if err != nil {
		return err
	}
	if err := distributor.VerifyDistribution(info); err != nil {
		return fmt.Errorf("distribution failed verification: %w", err)
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cc, err := caller.NewContractCallerFromRpcUrl(ctx, chainCfg.RpcUrl, uint64(chainCfg.ChainID), l)
	if err != nil {
		return err
	}

	checker := claimChecker.NewClaimChecker(cc, &claimChecker.Config{
		RequestsPerSecond: chainCfg.RequestsPerSecond,
		Concurrency:       chainCfg.Concurrency,
	}, l)

	address := common.HexToAddress(chainCfg.DistributorAddress)
	report, err := checker.CheckClaims(ctx, address, info)
	if err != nil {
		return err
	}

	if c.IsSet("from-block") {
		events, err := checker.ReconcileEvents(ctx, address, info, c.Uint64("from-block"))
		if err != nil {
			return err
		}
		l.Sugar().Infow("Reconciled Claimed events", "events", len(events))
	}

	return writeJSON(os.Stdout, report)
}

func runList(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	store, err := openPersistence(parsePersistenceConfig(c), l)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListDistributions()
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, summarize(records))
}

func runDelete(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	root, err := distributor.DecodeHash(c.String("root"))
	if err != nil {
		return err
	}

	store, err := openPersistence(parsePersistenceConfig(c), l)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteDistribution(common.Hash(root)); err != nil {
		return err
	}
	l.Sugar().Infow("Deleted distribution", "merkleRoot", common.Hash(root).Hex())
	return nil
}
