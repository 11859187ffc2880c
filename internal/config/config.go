package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type AuthConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type LedgerConfig struct {
	// FeeCollector receives the platform fee on every payout.
	FeeCollector uuid.UUID
	// SelectedStakePolicy is REFUND or FORFEIT; see escrow.StakePolicy.
	SelectedStakePolicy string
	// ExpirySweepSpec is the cron spec for the deadline sweeper.
	ExpirySweepSpec string
	// OracleBaseURL enables reputation-enriched match scores when set.
	OracleBaseURL string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:        parseDuration(opt("DB_CONNECT_TIMEOUT")),
		PoolMaxConns:          parseInt32(opt("DB_POOL_MAX_CONNS")),
		PoolMinConns:          parseInt32(opt("DB_POOL_MIN_CONNS")),
		PoolMaxConnLifetime:   parseDuration(opt("DB_POOL_MAX_CONN_LIFETIME")),
		PoolMaxConnIdleTime:   parseDuration(opt("DB_POOL_MAX_CONN_IDLE_TIME")),
		PoolHealthCheckPeriod: parseDuration(opt("DB_POOL_HEALTH_CHECK_PERIOD")),
	}

	cfg.Auth = AuthConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  parseDurationDefault(opt("JWT_ACCESS_TTL"), 15*time.Minute),
		RefreshExpiresIn: parseDurationDefault(opt("JWT_REFRESH_TTL"), 7*24*time.Hour),
	}

	feeCollectorRaw := req("FEE_COLLECTOR_ID")
	cfg.Ledger = LedgerConfig{
		SelectedStakePolicy: optDefault("SELECTED_STAKE_POLICY", "REFUND"),
		ExpirySweepSpec:     optDefault("EXPIRY_SWEEP_CRON", "@every 1m"),
		OracleBaseURL:       opt("ORACLE_BASE_URL"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	feeCollector, err := uuid.Parse(feeCollectorRaw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid FEE_COLLECTOR_ID: %w", err)
	}
	cfg.Ledger.FeeCollector = feeCollector

	switch cfg.Ledger.SelectedStakePolicy {
	case "REFUND", "FORFEIT":
	default:
		return Config{}, fmt.Errorf("invalid SELECTED_STAKE_POLICY %q", cfg.Ledger.SelectedStakePolicy)
	}

	return cfg, nil
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func parseDurationDefault(s string, def time.Duration) time.Duration {
	if d := parseDuration(s); d > 0 {
		return d
	}
	return def
}

func parseInt32(s string) int32 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}
