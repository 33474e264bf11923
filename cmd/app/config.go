package main

import (
	"fmt"
	"strings"

	"UD_loyalty_hook/internal/notify"
	"UD_loyalty_hook/internal/repository"
	"UD_loyalty_hook/pkg/auth"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Auth        auth.Config       `yaml:"auth"`
	Rewards     RewardsConfig     `yaml:"rewards"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Telegram    notify.Config     `yaml:"telegram"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type RewardsConfig struct {
	// NativeCurrency is the address that stands for the chain's native asset
	// in pool keys. Empty means the zero address.
	NativeCurrency string `yaml:"nativeCurrency"`
}

type LeaderboardConfig struct {
	Schedule string `yaml:"schedule"`
	Size     int    `yaml:"size"`
}

func (c RewardsConfig) Native() (common.Address, error) {
	if c.NativeCurrency == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(c.NativeCurrency) {
		return common.Address{}, fmt.Errorf("invalid native currency %q", c.NativeCurrency)
	}
	return common.HexToAddress(c.NativeCurrency), nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8888")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("leaderboard.schedule", "@every 30s")
	viper.SetDefault("leaderboard.size", 100)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
