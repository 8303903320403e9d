package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/evolvekit/evolve/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the evolve configuration. The result is cached for the life of
// the process; Reset clears it for tests.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path, bypassing the
// cache and environment search.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", configPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config from %s", configPath)
	}
	return &cfg, nil
}

// SetDefaults installs the default values on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("registry.path", "registry.json")
	v.SetDefault("registry.schema_root", ".")
	v.SetDefault("ledger.path", "provenance.jsonl")
	v.SetDefault("ledger.index_path", "provenance.db")
	v.SetDefault("execution.strict", true)
	v.SetDefault("log.json", false)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("EVOLVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("evolve")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/evolve")
	// Missing config file is fine; defaults and env cover everything
	_ = v.ReadInConfig()

	viperInstance = v
	return v
}
