// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Load reads configuration from environment variables.
// It attempts to load the given .env files first (".env" when none are given),
// then parses environment variables into the Config struct.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs range and cross-field checks after parsing.
func (c *Config) Validate() error {
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT: %d (must be 1-65535)", c.GRPCPort)
	}

	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 1-65535)", c.MetricsPort)
	}

	if c.PointsMin < 0 || c.PointsMax < c.PointsMin {
		return fmt.Errorf("invalid POINTS_MIN/POINTS_MAX: %d/%d", c.PointsMin, c.PointsMax)
	}

	if c.UseRandomDelayInRun && (c.RandomDelayMin < 0 || c.RandomDelayMax < c.RandomDelayMin) {
		return fmt.Errorf("invalid RANDOM_DELAY_MIN/RANDOM_DELAY_MAX: %d/%d", c.RandomDelayMin, c.RandomDelayMax)
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must be non-negative")
	}

	switch strings.ToLower(c.StateBackend) {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid STATE_BACKEND: %q (memory or redis)", c.StateBackend)
	}

	if c.UseProxyFromFile && c.ProxyFile == "" {
		return fmt.Errorf("PROXY_FILE is required when USE_PROXY_FROM_FILE is set")
	}

	if (c.TelegramBotToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	return nil
}
