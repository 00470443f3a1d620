package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Environment variables win over command line flags.
type ServerConfig struct {
	RunAddress          string        `env:"RUN_ADDRESS"`
	OrderAPIAddress     string        `env:"ORDER_API_ADDRESS"`
	OrderAPIKey         string        `env:"ORDER_API_KEY"`
	DatabaseDSN         string        `env:"DATABASE_URI"`
	SecretKey           string        `env:"SECRET"`
	AuthCookieExpiresIn int           `env:"AUTH_COOKIE_EXPIRES_SECONDS" envDefault:"86400"`
	RefreshInterval     time.Duration `env:"REFRESH_INTERVAL" envDefault:"1500ms"`
	PauseWindow         time.Duration `env:"USER_PAUSE_WINDOW" envDefault:"8s"`
	PageSize            int           `env:"PAGE_SIZE" envDefault:"300"`

	// derived from SecretKey; env punts on byte slices
	Secret []byte `env:"-"`
}

func NewConfig() (*ServerConfig, error) {
	// the order API key usually lives in a local .env next to the
	// binary; absence is fine
	_ = godotenv.Load()

	var params ServerConfig
	err := env.Parse(&params)
	if err != nil {
		return nil, err
	}

	var commandLineParams ServerConfig
	var secret string

	flag.StringVar(&commandLineParams.RunAddress, "a", "localhost:8080", "Base address to listen on")
	flag.StringVar(&commandLineParams.OrderAPIAddress, "r", "http://localhost:8000", "Order API address")
	flag.StringVar(&commandLineParams.OrderAPIKey, "k", "", "Order API key")
	flag.StringVar(&commandLineParams.DatabaseDSN, "d", "postgres://postgres@localhost:5432/printdesk?sslmode=disable", "Database DSN")
	flag.StringVar(&secret, "s", "secret", "Secret to sign auth cookies")
	flag.Parse()

	if params.RunAddress == "" {
		params.RunAddress = commandLineParams.RunAddress
	}
	if params.OrderAPIAddress == "" {
		params.OrderAPIAddress = commandLineParams.OrderAPIAddress
	}
	if params.OrderAPIKey == "" {
		params.OrderAPIKey = commandLineParams.OrderAPIKey
	}
	if params.DatabaseDSN == "" {
		params.DatabaseDSN = commandLineParams.DatabaseDSN
	}
	if params.SecretKey == "" {
		params.SecretKey = secret
	}
	params.Secret = []byte(params.SecretKey)

	return &params, nil
}
