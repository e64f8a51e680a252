package config

import "time"

// ChainConfig binds a chain ID to the reward contract deployed on it and the
// RPC endpoint used to reach it.
type ChainConfig struct {
	ContractAddress string `koanf:"contract_address"`
	RPCURL          string `koanf:"rpc_url"`
}

// Config holds all runtime settings. Chain entries are keyed by the decimal
// chain ID; this table is the single source for contract addresses and RPC
// URLs.
type Config struct {
	Addr           string        `koanf:"addr"`
	Env            string        `koanf:"env"`
	DatabasePath   string        `koanf:"database_path"`
	LogLevel       string        `koanf:"log_level"`
	LogFile        string        `koanf:"log_file"`
	LogConsole     bool          `koanf:"log_console"`
	RateLimitRPS   int           `koanf:"rate_limit_rps"`
	RateLimitBurst int           `koanf:"rate_limit_burst"`
	TxWaitTimeout  time.Duration `koanf:"tx_wait_timeout"`
	OperatorKey    string        `koanf:"operator_key"`

	Chains map[string]ChainConfig `koanf:"chains"`
}

// New returns a Config populated with defaults. The default chain table lists
// the testnets the reward contract is deployed on.
func New() *Config {
	return &Config{
		Addr:           ":8080",
		Env:            "development",
		DatabasePath:   "cenvorto.db",
		LogLevel:       "info",
		LogConsole:     true,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		TxWaitTimeout:  90 * time.Second,
		Chains: map[string]ChainConfig{
			"11155111": {
				ContractAddress: "0x8C4c828c6C88352F02E3D5649F8416DAC45dBBb0",
				RPCURL:          "https://api.zan.top/public/eth-sepolia",
			},
			"84532": {
				ContractAddress: "0x471FE11ecDc6efF32687a1237F6E9C6E00dF0411",
				RPCURL:          "https://sepolia.base.org",
			},
			"4202": {
				ContractAddress: "0x7b49360b03102fBA5C6b05Aa7217F30965439226",
				RPCURL:          "https://rpc.sepolia-api.lisk.com",
			},
		},
	}
}

// IsProduction reports whether the server runs with release settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "release"
}
