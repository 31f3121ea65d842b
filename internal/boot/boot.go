// Package boot provides runtime configuration and dependency wiring for the server.
package boot

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/intromesh/intromesh/internal/config"
)

// RuntimeConfig holds parsed runtime settings (JWT, server address).
// Values may be overridden by environment variables (e.g. HTTP_ADDR).
type RuntimeConfig struct {
	JwtSecret    string
	JwtExpiresIn time.Duration
	ServerAddr   string
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}

	jwtExpiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt expires in: %w", err)
	}

	ret := &RuntimeConfig{
		JwtSecret:    cfg.Auth.JWTSecret,
		JwtExpiresIn: jwtExpiresIn,
		ServerAddr:   cfg.Server.Addr,
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	return ret, nil
}
