package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default contract addresses of the investigated pool: the vault share
// token, the reward-tracking intermediary (gauge) and the secondary staking
// pool. Overridable per run via environment.
const (
	DefaultVaultAddress = "0x24aB9E9Cf2f0c9D43aeA0b1A5bE3c1A2cC4b4C17"
	DefaultGaugeAddress = "0x5F2e8eA6816b894c65dAaCbEe26E1E2aC286eD9B"
	DefaultPoolAddress  = "0x9C7aB0dE31E5D6fA10C4E3f8bD2847Fd4a8E93D0"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	RPCURL            string
	VaultAddress      string
	GaugeAddress      string
	PoolAddress       string
	FromBlock         uint64
	DataDir           string
	OutDir            string
	DatabaseURL       string
	CoinGeckoURL      string
	RPCRetryMax       int
	RPCRetryBaseDelay time.Duration
	CoinGeckoRetryMax int
	CoinGeckoDelay    time.Duration
	TopN              int
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		RPCURL:            envOrDefault("RPC_URL", ""),
		VaultAddress:      envOrDefault("VAULT_ADDRESS", DefaultVaultAddress),
		GaugeAddress:      envOrDefault("GAUGE_ADDRESS", DefaultGaugeAddress),
		PoolAddress:       envOrDefault("POOL_ADDRESS", DefaultPoolAddress),
		FromBlock:         envOrDefaultUint("FROM_BLOCK", 0),
		DataDir:           envOrDefault("DATA_DIR", "data"),
		OutDir:            envOrDefault("OUT_DIR", "out"),
		DatabaseURL:       envOrDefault("DATABASE_URL", ""),
		CoinGeckoURL:      envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		RPCRetryMax:       envOrDefaultInt("RPC_RETRY_MAX", 5),
		RPCRetryBaseDelay: envOrDefaultDuration("RPC_RETRY_BASE_DELAY", 2*time.Second),
		CoinGeckoRetryMax: envOrDefaultInt("COINGECKO_RETRY_MAX", 5),
		CoinGeckoDelay:    envOrDefaultDuration("COINGECKO_DELAY", 6*time.Second),
		TopN:              envOrDefaultInt("REPORT_TOP_N", 20),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultUint(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			slog.Warn("invalid unsigned integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
