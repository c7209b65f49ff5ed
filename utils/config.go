package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config keys. Each one is also read from the upper-cased environment
// variable, e.g. RPC_URL.
const (
	KeyRPCURL             = "rpc_url"
	KeyPrivateKey         = "private_key"
	KeyGasLimit           = "gas_limit"
	KeyGasPriceMultiplier = "gas_price_multiplier"
	KeyRPCTimeout         = "rpc_timeout"
	KeyRecipientsFile     = "recipients_file"
	KeyRateLimit          = "rate_limit"
	KeyReportFile         = "report_file"
	KeyFailedFile         = "failed_file"
)

// flagKeys maps config keys to the CLI flags that override them.
var flagKeys = map[string]string{
	KeyRPCURL:             "rpc-url",
	KeyGasLimit:           "gas-limit",
	KeyGasPriceMultiplier: "gas-price-multiplier",
	KeyRPCTimeout:         "rpc-timeout",
	KeyRecipientsFile:     "recipients",
	KeyRateLimit:          "rate",
	KeyReportFile:         "report",
	KeyFailedFile:         "failed",
}

type TransferConfig struct {
	RPCURL             string        `mapstructure:"rpc_url"`
	PrivateKey         string        `mapstructure:"private_key"`
	GasLimit           uint64        `mapstructure:"gas_limit"`
	GasPriceMultiplier uint64        `mapstructure:"gas_price_multiplier"` // percent, 110 means +10%
	RPCTimeout         time.Duration `mapstructure:"rpc_timeout"`
	RecipientsFile     string        `mapstructure:"recipients_file"`
	RateLimit          float64       `mapstructure:"rate_limit"` // transfers per second, 0 means no limit
	ReportFile         string        `mapstructure:"report_file"`
	FailedFile         string        `mapstructure:"failed_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRPCURL, "")
	v.SetDefault(KeyPrivateKey, "")
	v.SetDefault(KeyGasLimit, 21000)
	v.SetDefault(KeyGasPriceMultiplier, 110)
	v.SetDefault(KeyRPCTimeout, 10*time.Second)
	v.SetDefault(KeyRecipientsFile, "recipients.txt")
	v.SetDefault(KeyRateLimit, 0)
	v.SetDefault(KeyReportFile, "")
	v.SetDefault(KeyFailedFile, "")
}

// LoadConfig resolves the configuration from, in increasing priority:
// defaults, the optional config file, environment variables and changed
// flags. configPath may be a dotenv, JSON, YAML or TOML file.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*TransferConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg TransferConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings needed to send transfers.
func (c *TransferConfig) Validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc_url must be set (RPC_URL or --rpc-url)")
	}
	if c.PrivateKey == "" {
		return errors.New("private_key must be set (PRIVATE_KEY)")
	}
	if c.GasLimit == 0 {
		return errors.New("gas_limit must be greater than 0")
	}
	if c.GasPriceMultiplier < 100 {
		return fmt.Errorf("gas_price_multiplier must be at least 100, got %d", c.GasPriceMultiplier)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	if c.RPCTimeout <= 0 {
		return fmt.Errorf("rpc_timeout must be positive, got %s", c.RPCTimeout)
	}
	return nil
}
