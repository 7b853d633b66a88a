// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PointsMin != 450 || cfg.PointsMax != 550 {
		t.Errorf("points = %d..%d, expected 450..550", cfg.PointsMin, cfg.PointsMax)
	}
	if cfg.StateBackend != BackendMemory {
		t.Errorf("StateBackend = %q", cfg.StateBackend)
	}
	if !cfg.AutoFarm || cfg.AutoPlayGame || cfg.AutoTask || cfg.AutoRankUpgrade {
		t.Errorf("only farming should be on by default, got %+v", cfg)
	}
	if cfg.RandomDelayMin != 0 || cfg.RandomDelayMax != 15 {
		t.Errorf("random delay = %d..%d, expected 0..15", cfg.RandomDelayMin, cfg.RandomDelayMax)
	}
	if cfg.RefID != "0001b3Lf" {
		t.Errorf("RefID = %q", cfg.RefID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "POINTS_MIN=100\nPOINTS_MAX=200\nAUTO_PLAY_GAME=true\nREQUEST_TIMEOUT=5s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		for _, k := range []string{"POINTS_MIN", "POINTS_MAX", "AUTO_PLAY_GAME", "REQUEST_TIMEOUT"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PointsMin != 100 || cfg.PointsMax != 200 {
		t.Errorf("points = %d..%d, expected 100..200", cfg.PointsMin, cfg.PointsMax)
	}
	if !cfg.AutoPlayGame {
		t.Error("AUTO_PLAY_GAME=true was not applied")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GRPCPort:     6565,
			MetricsPort:  8080,
			PointsMin:    450,
			PointsMax:    550,
			StateBackend: BackendRedis,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad grpc port", mutate: func(c *Config) { c.GRPCPort = 0 }, wantErr: true},
		{name: "bad metrics port", mutate: func(c *Config) { c.MetricsPort = 70000 }, wantErr: true},
		{name: "inverted points", mutate: func(c *Config) { c.PointsMin = 600 }, wantErr: true},
		{name: "inverted delay", mutate: func(c *Config) {
			c.UseRandomDelayInRun = true
			c.RandomDelayMin = 10
			c.RandomDelayMax = 5
		}, wantErr: true},
		{name: "delay ignored when off", mutate: func(c *Config) {
			c.RandomDelayMin = 10
			c.RandomDelayMax = 5
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.StateBackend = "etcd" }, wantErr: true},
		{name: "proxy file missing", mutate: func(c *Config) { c.UseProxyFromFile = true }, wantErr: true},
		{name: "telegram token without chat", mutate: func(c *Config) { c.TelegramBotToken = "x" }, wantErr: true},
		{name: "telegram complete", mutate: func(c *Config) {
			c.TelegramBotToken = "x"
			c.TelegramChatID = 42
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRandomDelay(t *testing.T) {
	cfg := &Config{RandomDelayMin: 5, RandomDelayMax: 30}
	if lo, hi := cfg.RandomDelay(); lo != 0 || hi != 0 {
		t.Errorf("disabled delay = %v..%v", lo, hi)
	}

	cfg.UseRandomDelayInRun = true
	if lo, hi := cfg.RandomDelay(); lo != 5*time.Second || hi != 30*time.Second {
		t.Errorf("delay = %v..%v", lo, hi)
	}
}
