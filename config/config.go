package config

import (
	"fmt"
	"path/filepath"

	"github.com/MinterTeam/minter-swap/cmd/utils"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName = "config.toml"
)

var (
	defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)
)

// DefaultConfig returns a default configuration for a swap engine
func DefaultConfig() *Config {
	return &Config{
		BaseConfig: DefaultBaseConfig(),
		Rewards:    DefaultRewardsConfig(),
	}
}

// GetConfig returns the default configuration rooted at the engine home
func GetConfig() *Config {
	cfg := DefaultConfig()

	cfg.SetRoot(utils.GetSwapHome())
	EnsureRoot(utils.GetSwapHome())

	return cfg
}

// Config defines the top level configuration for a swap engine
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for the incentive program of the fixture deployment
	Rewards RewardsConfig `mapstructure:"rewards"`
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration for a swap engine
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log_format"`

	LogPath string `mapstructure:"log_path"`

	// Database backend: goleveldb | memdb
	DBBackend string `mapstructure:"db_backend"`

	// Database directory
	DBPath string `mapstructure:"db_dir"`

	// Address to listen for API connections
	APIListenAddress string `mapstructure:"api_listen_addr"`

	StateCacheSize int `mapstructure:"state_cache_size"`

	KeepLastStates int64 `mapstructure:"keep_last_states"`

	// Address allowed to change the protocol fee recipient. Empty means the deployer wallet
	FeeToSetter string `mapstructure:"fee_to_setter"`

	// Expose prometheus metrics on /metrics
	Prometheus bool `mapstructure:"prometheus"`
}

// DefaultBaseConfig returns a default base configuration for a swap engine
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		LogLevel:         DefaultPackageLogLevels(),
		LogFormat:        LogFormatPlain,
		LogPath:          "stdout",
		DBBackend:        "goleveldb",
		DBPath:           defaultDataDir,
		APIListenAddress: "tcp://0.0.0.0:8841",
		StateCacheSize:   1000000,
		KeepLastStates:   120,
		Prometheus:       true,
	}
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ConfigFile returns the full path to the config.toml file
func (cfg BaseConfig) ConfigFile() string {
	return rootify(defaultConfigFilePath, cfg.RootDir)
}

// RewardsConfig holds the staking rewards program parameters
type RewardsConfig struct {
	// Unix timestamp after which reward periods may be funded
	Genesis uint64 `mapstructure:"genesis"`

	// Reward budget per incentivized pair, in whole units
	Amount uint64 `mapstructure:"amount"`

	// Reward period length in seconds
	Duration uint64 `mapstructure:"duration"`
}

// DefaultRewardsConfig returns the parameters of the reference deployment
func DefaultRewardsConfig() RewardsConfig {
	return RewardsConfig{
		Genesis:  1641907057,
		Amount:   10000,
		Duration: 86400,
	}
}

// DefaultLogLevel returns a default log level of "error"
func DefaultLogLevel() string {
	return "error"
}

// DefaultPackageLogLevels returns a default log level setting so all modules
// log at "error", while the `state` and `main` modules log at "info"
func DefaultPackageLogLevels() string {
	return fmt.Sprintf("main:info,state:info,api:info,*:%s", DefaultLogLevel())
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
