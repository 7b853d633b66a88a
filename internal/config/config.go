// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"tomarket-harvester"`

	// ============================================================
	// Logging
	// ============================================================
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// ============================================================
	// Accounts and sessions
	// ============================================================
	AccountsFile     string `env:"ACCOUNTS_FILE"`
	SessionsDir      string `env:"SESSIONS_DIR" envDefault:"sessions"`
	UseProxyFromFile bool   `env:"USE_PROXY_FROM_FILE" envDefault:"false"`
	ProxyFile        string `env:"PROXY_FILE" envDefault:"bot/config/proxies.txt"`
	RefID            string `env:"REF_ID" envDefault:"0001b3Lf"`

	// ============================================================
	// Remote API
	// ============================================================
	APIBaseURL        string        `env:"API_BASE_URL" envDefault:"https://api-web.tomarket.ai/tomarket-game/v1"`
	AppURL            string        `env:"APP_URL" envDefault:"https://mini-app.tomarket.ai/"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"2"`
	FakeUserAgent     bool          `env:"FAKE_USERAGENT" envDefault:"true"`
	SkipShapeCheck    bool          `env:"SKIP_SHAPE_CHECK" envDefault:"false"`
	ProxyEchoURL      string        `env:"PROXY_ECHO_URL" envDefault:"https://httpbin.org/ip"`

	// ============================================================
	// Reward cycles
	// ============================================================
	AutoFarm        bool `env:"AUTO_FARM" envDefault:"true"`
	AutoClaimStars  bool `env:"AUTO_CLAIM_STARS" envDefault:"false"`
	AutoDailyReward bool `env:"AUTO_DAILY_REWARD" envDefault:"false"`
	AutoPlayGame    bool `env:"AUTO_PLAY_GAME" envDefault:"false"`
	AutoTask        bool `env:"AUTO_TASK" envDefault:"false"`
	AutoRankUpgrade bool `env:"AUTO_RANK_UPGRADE" envDefault:"false"`
	AutoClaimCombo  bool `env:"AUTO_CLAIM_COMBO" envDefault:"false"`
	AutoRaffle      bool `env:"AUTO_RAFFLE" envDefault:"false"`
	AutoAddWallet   bool `env:"AUTO_ADD_WALLET" envDefault:"false"`
	AutoChangeName  bool `env:"AUTO_CHANGE_NAME" envDefault:"false"`
	PointsMin       int  `env:"POINTS_MIN" envDefault:"450"`
	PointsMax       int  `env:"POINTS_MAX" envDefault:"550"`

	UseRandomDelayInRun bool `env:"USE_RANDOM_DELAY_IN_RUN" envDefault:"true"`
	RandomDelayMin      int  `env:"RANDOM_DELAY_MIN" envDefault:"0"`
	RandomDelayMax      int  `env:"RANDOM_DELAY_MAX" envDefault:"15"`

	// ============================================================
	// Combo answers
	// ============================================================
	PuzzlePrimaryURL   string `env:"PUZZLE_PRIMARY_URL" envDefault:"https://raw.githubusercontent.com/yanpaing007/Tomarket/refs/heads/main/bot/config/combo.json"`
	PuzzleSecondaryURL string `env:"PUZZLE_SECONDARY_URL" envDefault:"https://raw.githubusercontent.com/zuydd/database/refs/heads/main/tomarket.json"`
	PuzzleLocalFile    string `env:"PUZZLE_LOCAL_FILE" envDefault:"bot/config/combo.json"`
	PuzzleMaxRetries   uint64 `env:"PUZZLE_MAX_RETRIES" envDefault:"3"`

	// ============================================================
	// State storage
	// ============================================================
	StateBackend      string        `env:"STATE_BACKEND" envDefault:"memory"`
	StateTTL          time.Duration `env:"STATE_TTL" envDefault:"168h"`
	RedisHost         string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int           `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Telemetry and notifications
	// ============================================================
	OtelEnabled      bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ZipkinEndpoint   string `env:"ZIPKIN_ENDPOINT"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
}

// RandomDelay returns the startup delay bounds, zero when disabled.
func (c *Config) RandomDelay() (time.Duration, time.Duration) {
	if !c.UseRandomDelayInRun {
		return 0, 0
	}

	return time.Duration(c.RandomDelayMin) * time.Second, time.Duration(c.RandomDelayMax) * time.Second
}

// RedisAddr joins host and port.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
