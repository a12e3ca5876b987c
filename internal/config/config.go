package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	GatewayAddress      string
	GatewayClientID     string
	GatewayClientSecret string

	AdsAddress     string
	AdsPixelID     string
	AdsAccessToken string

	PushWebhookURL string

	TokenSecret       string
	AdminPasswordHash string

	EntryPrice         float64
	OrderTTL           time.Duration
	ExpirePollInterval time.Duration
	WorkerPoolSize     int
	MaxExpireBatch     int
	ShutdownTimeout    time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultAdsAddress         = "https://graph.facebook.com/v18.0"
	defaultTokenSecret        = "change-me-in-production"
	defaultEntryPrice         = 2.97
	defaultOrderTTL           = 30 * time.Minute
	defaultExpirePollInterval = time.Minute
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
	defaultMaxExpireBatch     = 32
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		GatewayAddress:      getString(lookup, "GATEWAY_ADDRESS", ""),
		GatewayClientID:     getString(lookup, "GATEWAY_CLIENT_ID", ""),
		GatewayClientSecret: getString(lookup, "GATEWAY_CLIENT_SECRET", ""),
		AdsAddress:          getString(lookup, "ADS_ADDRESS", defaultAdsAddress),
		AdsPixelID:          getString(lookup, "ADS_PIXEL_ID", ""),
		AdsAccessToken:      getString(lookup, "ADS_ACCESS_TOKEN", ""),
		PushWebhookURL:      getString(lookup, "PUSH_WEBHOOK_URL", ""),
		TokenSecret:         getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		AdminPasswordHash:   getString(lookup, "ADMIN_PASSWORD_HASH", ""),
		EntryPrice:          getFloat(lookup, "ENTRY_PRICE", defaultEntryPrice),
		OrderTTL:            getDuration(lookup, "ORDER_TTL", defaultOrderTTL),
		ExpirePollInterval:  getDuration(lookup, "EXPIRE_POLL_INTERVAL", defaultExpirePollInterval),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MaxExpireBatch:      getInt(lookup, "EXPIRE_BATCH_SIZE", defaultMaxExpireBatch),
	}

	fs := flag.NewFlagSet("rifamart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		orderTTLStr        = cfg.OrderTTL.String()
		pollIntervalStr    = cfg.ExpirePollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayAddress, "g", cfg.GatewayAddress, "PIX gateway base URL")
	fs.StringVar(&cfg.GatewayClientID, "gateway-client-id", cfg.GatewayClientID, "Gateway OAuth client id")
	fs.StringVar(&cfg.AdsAddress, "ads-address", cfg.AdsAddress, "Conversion API base URL")
	fs.StringVar(&cfg.AdsPixelID, "ads-pixel", cfg.AdsPixelID, "Conversion API pixel id")
	fs.StringVar(&cfg.PushWebhookURL, "push-url", cfg.PushWebhookURL, "Operational push webhook URL")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing admin tokens")
	fs.Float64Var(&cfg.EntryPrice, "entry-price", cfg.EntryPrice, "Price of a single raffle entry")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent expiry workers")
	fs.StringVar(&orderTTLStr, "order-ttl", orderTTLStr, "Time before a pending order expires")
	fs.StringVar(&pollIntervalStr, "expire-interval", pollIntervalStr, "Interval between expiry sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxExpireBatch, "expire-batch", cfg.MaxExpireBatch, "Maximum orders per expiry batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OrderTTL, err = time.ParseDuration(orderTTLStr); err != nil {
		return nil, fmt.Errorf("invalid order ttl: %w", err)
	}

	if cfg.ExpirePollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid expire interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("GATEWAY_CLIENT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read gateway secret file: %w", err)
		}
		cfg.GatewayClientSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxExpireBatch <= 0 {
		cfg.MaxExpireBatch = defaultMaxExpireBatch
	}

	if cfg.EntryPrice <= 0 {
		cfg.EntryPrice = defaultEntryPrice
	}

	if cfg.OrderTTL <= 0 {
		cfg.OrderTTL = defaultOrderTTL
	}

	if cfg.ExpirePollInterval <= 0 {
		cfg.ExpirePollInterval = defaultExpirePollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GatewayAddress == "" {
		return nil, fmt.Errorf("gateway address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
