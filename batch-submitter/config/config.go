package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"

	"github.com/orbitrollup/batch-submitter/metrics"
	"github.com/orbitrollup/batch-submitter/util"
)

// Constants for config default values
const (
	defaultLogLevel             = zapcore.InfoLevel
	defaultLogDirname           = "logs"
	defaultLogFilename          = "batchd.log"
	defaultConfigFileName       = "batchd.conf"
	defaultL1RPCAddress         = "http://127.0.0.1:8545"
	defaultRollupRPCAddress     = "http://127.0.0.1:9545"
	defaultPollInterval         = 15 * time.Second
	defaultNumConfirmations     = 6
	defaultResubmissionTimeout  = 1 * time.Minute
	defaultReceiptQueryInterval = 3 * time.Second
	defaultFeeBumpPercent       = 15
)

var (
	//   C:\Users\<username>\AppData\Local\Batchd on Windows
	//   ~/.batchd on Linux
	//   ~/Library/Application Support/Batchd on MacOS
	DefaultBatchdDir = btcutil.AppDataDir("batchd", false)
)

// Config is the main config for the batchd cli command
type Config struct {
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`

	L1RPCAddress     string `long:"l1rpcaddress" description:"The RPC address of the base chain node transactions are submitted to"`
	RollupRPCAddress string `long:"rolluprpcaddress" description:"The RPC address of the rollup node batch payloads are pulled from"`
	PrivateKey       string `long:"privatekey" description:"The hex-encoded private key of the batch submitter account"`

	TxBatchContractAddress    string `long:"txbatchcontractaddress" description:"The address of the chain contract accepting transaction batches"`
	StateBatchContractAddress string `long:"statebatchcontractaddress" description:"The address of the chain contract accepting state-root batches"`

	PollInterval         time.Duration `long:"pollinterval" description:"The interval between iterations of each submission loop, applied after success and failure alike"`
	NumConfirmations     uint64        `long:"numconfirmations" description:"The number of confirmations a submitted transaction needs before it is considered durable"`
	ResubmissionTimeout  time.Duration `long:"resubmissiontimeout" description:"How long to wait for a submitted batch transaction to confirm before rebroadcasting it with a bumped fee"`
	ReceiptQueryInterval time.Duration `long:"receiptqueryinterval" description:"The interval between receipt queries while waiting for confirmation"`
	FeeBumpPercent       uint64        `long:"feebumppercent" description:"The percentage added to the gas price of each replacement transaction"`

	ClearPendingTxs        bool `long:"clearpendingtxs" description:"Clear broadcast-but-unmined transactions with self-transfers before the submission loops start"`
	RunTxBatchSubmitter    bool `long:"runtxbatchsubmitter" description:"Run the transaction batch submission loop"`
	RunStateBatchSubmitter bool `long:"runstatebatchsubmitter" description:"Run the state-root batch submission loop"`

	Metrics *metrics.Config `group:"metrics" namespace:"metrics"`
}

func DefaultConfig() Config {
	cfg := Config{
		LogLevel:             defaultLogLevel.String(),
		L1RPCAddress:         defaultL1RPCAddress,
		RollupRPCAddress:     defaultRollupRPCAddress,
		PollInterval:         defaultPollInterval,
		NumConfirmations:     defaultNumConfirmations,
		ResubmissionTimeout:  defaultResubmissionTimeout,
		ReceiptQueryInterval: defaultReceiptQueryInterval,
		FeeBumpPercent:       defaultFeeBumpPercent,
		Metrics:              metrics.DefaultSubmitterConfig(),
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}

func CfgFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

// LoadConfig initializes and parses the config using a config file.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Load configuration file overwriting defaults with any specified options
func LoadConfig(homePath string) (*Config, error) {
	cfgFile := CfgFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	var cfg Config
	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the given configuration to be sane. This makes sure no
// illegal values or a combination of values are set.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := cfg.validateTimingConfigs(); err != nil {
		return fmt.Errorf("timing configuration validation failed: %w", err)
	}

	if cfg.L1RPCAddress == "" {
		return fmt.Errorf("l1 rpc address cannot be empty")
	}

	if cfg.RollupRPCAddress == "" {
		return fmt.Errorf("rollup rpc address cannot be empty")
	}

	if cfg.NumConfirmations == 0 {
		return fmt.Errorf("number of confirmations must be positive")
	}

	if cfg.FeeBumpPercent == 0 {
		return fmt.Errorf("fee bump percent must be positive")
	}

	if cfg.RunTxBatchSubmitter && !common.IsHexAddress(cfg.TxBatchContractAddress) {
		return fmt.Errorf("invalid tx batch contract address: %q", cfg.TxBatchContractAddress)
	}

	if cfg.RunStateBatchSubmitter && !common.IsHexAddress(cfg.StateBatchContractAddress) {
		return fmt.Errorf("invalid state batch contract address: %q", cfg.StateBatchContractAddress)
	}

	if cfg.Metrics == nil {
		return fmt.Errorf("metrics configuration cannot be empty")
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics configuration validation failed: %w", err)
	}

	return nil
}

func (cfg *Config) validateTimingConfigs() error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", cfg.PollInterval)
	}

	if cfg.ResubmissionTimeout <= 0 {
		return fmt.Errorf("resubmission timeout must be positive, got %v", cfg.ResubmissionTimeout)
	}

	if cfg.ReceiptQueryInterval <= 0 {
		return fmt.Errorf("receipt query interval must be positive, got %v", cfg.ReceiptQueryInterval)
	}

	return nil
}
