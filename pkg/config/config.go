package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the distributor CLI
const (
	EnvDistributorInput           = "DISTRIBUTOR_INPUT"
	EnvDistributorOutput          = "DISTRIBUTOR_OUTPUT"
	EnvDistributorDecimals        = "DISTRIBUTOR_DECIMALS"
	EnvDistributorSortedLeaves    = "DISTRIBUTOR_SORTED_LEAVES"
	EnvDistributorParallelism     = "DISTRIBUTOR_PARALLELISM"
	EnvDistributorName            = "DISTRIBUTOR_NAME"
	EnvDistributorRPCURL          = "DISTRIBUTOR_RPC_URL"
	EnvDistributorContractAddress = "DISTRIBUTOR_CONTRACT_ADDRESS"
	EnvDistributorChainID         = "DISTRIBUTOR_CHAIN_ID"
	EnvDistributorRequestsPerSec  = "DISTRIBUTOR_RPS"
	EnvDistributorConcurrency     = "DISTRIBUTOR_CONCURRENCY"
	EnvDistributorPersistenceType = "DISTRIBUTOR_PERSISTENCE_TYPE"
	EnvDistributorDataPath        = "DISTRIBUTOR_DATA_PATH"
	EnvDistributorRedisAddress    = "DISTRIBUTOR_REDIS_ADDRESS"
	EnvDistributorRedisPassword   = "DISTRIBUTOR_REDIS_PASSWORD"
	EnvDistributorRedisDB         = "DISTRIBUTOR_REDIS_DB"
	EnvDistributorRedisKeyPrefix  = "DISTRIBUTOR_REDIS_KEY_PREFIX"
	EnvDistributorVerbose         = "DISTRIBUTOR_VERBOSE"
)

type ChainId uint

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
	ChainId_Base            ChainId = 8453
	ChainId_Avalanche       ChainId = 43114
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_EthereumAnvil   ChainName = "devnet"
	ChainName_Base            ChainName = "base"
	ChainName_Avalanche       ChainName = "avalanche"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_EthereumAnvil:   ChainName_EthereumAnvil,
	ChainId_Base:            ChainName_Base,
	ChainId_Avalanche:       ChainName_Avalanche,
}
var ChainNameToId = map[ChainName]ChainId{
	ChainName_EthereumMainnet: ChainId_EthereumMainnet,
	ChainName_EthereumSepolia: ChainId_EthereumSepolia,
	ChainName_EthereumAnvil:   ChainId_EthereumAnvil,
	ChainName_Base:            ChainId_Base,
	ChainName_Avalanche:       ChainId_Avalanche,
}

// GetSupportedChainIDs returns all supported chain IDs
func GetSupportedChainIDs() []ChainId {
	return []ChainId{
		ChainId_EthereumMainnet,
		ChainId_EthereumSepolia,
		ChainId_EthereumAnvil,
		ChainId_Base,
		ChainId_Avalanche,
	}
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	parts := make([]string, 0, len(ChainIdToName))
	for _, id := range GetSupportedChainIDs() {
		parts = append(parts, fmt.Sprintf("%d (%s)", id, ChainIdToName[id]))
	}
	return strings.Join(parts, ", ")
}

type PersistenceType string

const (
	PersistenceType_Memory PersistenceType = "memory"
	PersistenceType_Badger PersistenceType = "badger"
	PersistenceType_Redis  PersistenceType = "redis"
)

// PersistenceConfig selects and configures the artifact store
type PersistenceConfig struct {
	Type PersistenceType `json:"type" yaml:"type"`

	// Badger
	DataPath string `json:"dataPath" yaml:"dataPath"`

	// Redis
	RedisAddress   string `json:"redisAddress" yaml:"redisAddress"`
	RedisPassword  string `json:"redisPassword" yaml:"redisPassword"`
	RedisDB        int    `json:"redisDb" yaml:"redisDb"`
	RedisKeyPrefix string `json:"redisKeyPrefix" yaml:"redisKeyPrefix"`
}

func (pc *PersistenceConfig) Validate() error {
	var allErrors field.ErrorList
	switch pc.Type {
	case PersistenceType_Memory:
	case PersistenceType_Badger:
		if pc.DataPath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("dataPath"), "dataPath is required for badger persistence"))
		}
	case PersistenceType_Redis:
		if pc.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redisAddress"), "redisAddress is required for redis persistence"))
		}
		if pc.RedisDB < 0 || pc.RedisDB > 15 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("redisDb"), pc.RedisDB, "must be between 0 and 15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("type"), pc.Type, []string{
			string(PersistenceType_Memory), string(PersistenceType_Badger), string(PersistenceType_Redis),
		}))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// ChainConfig describes how to reach a deployed MerkleDistributor
type ChainConfig struct {
	RpcUrl             string  `json:"rpcUrl" yaml:"rpcUrl"`
	DistributorAddress string  `json:"distributorAddress" yaml:"distributorAddress"`
	ChainID            ChainId `json:"chainId" yaml:"chainId"`

	// RequestsPerSecond caps the rate of isClaimed calls against the RPC endpoint
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`

	// Concurrency is the number of in-flight isClaimed calls
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

func (cc *ChainConfig) Validate() error {
	var allErrors field.ErrorList
	if cc.RpcUrl == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("rpcUrl"), "rpcUrl is required"))
	}
	if cc.DistributorAddress == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("distributorAddress"), "distributorAddress is required"))
	} else if !common.IsHexAddress(cc.DistributorAddress) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("distributorAddress"), cc.DistributorAddress, "must be a hex address"))
	}
	if cc.ChainID != 0 {
		if _, ok := ChainIdToName[cc.ChainID]; !ok {
			allErrors = append(allErrors, field.Invalid(field.NewPath("chainId"), cc.ChainID, fmt.Sprintf("supported: %s", GetSupportedChainIDsString())))
		}
	}
	if cc.RequestsPerSecond <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("requestsPerSecond"), cc.RequestsPerSecond, "must be positive"))
	}
	if cc.Concurrency < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("concurrency"), cc.Concurrency, "must be at least 1"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// CompileConfig holds the options for turning a balances file into an artifact
type CompileConfig struct {
	InputPath    string `json:"inputPath" yaml:"inputPath"`
	OutputPath   string `json:"outputPath" yaml:"outputPath"`
	Decimals     uint   `json:"decimals" yaml:"decimals"`
	SortedLeaves bool   `json:"sortedLeaves" yaml:"sortedLeaves"`
	Parallelism  int    `json:"parallelism" yaml:"parallelism"`
	Name         string `json:"name" yaml:"name"`
}

func (cc *CompileConfig) Validate() error {
	var allErrors field.ErrorList
	if cc.InputPath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("inputPath"), "inputPath is required"))
	}
	if cc.OutputPath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("outputPath"), "outputPath is required"))
	}
	if cc.Decimals > 77 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("decimals"), cc.Decimals, "must be at most 77"))
	}
	if cc.Parallelism < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("parallelism"), cc.Parallelism, "must be at least 1"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
