package config

import (
	"strings"
	"time"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/utils"
)

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey string

	HederaNetwork     string
	HederaOperatorID  string
	HederaOperatorKey string
	HederaSubmitKey   string
	HederaTopicID     string
	MirrorNodeURL     string
	LedgerTimeout     time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	RedisAddr          string
	RateLimitPerMinute int

	Environment string
	Version     string
}

func Load(log *logger.Logger) Config {
	mirrorDefault := "https://testnet.mirrornode.hedera.com"
	network := strings.ToLower(utils.GetEnv("HEDERA_NETWORK", "testnet", log))
	if network == "mainnet" {
		mirrorDefault = "https://mainnet-public.mirrornode.hedera.com"
	}
	return Config{
		Port:    utils.GetEnv("PORT", "4000", log),
		LogMode: utils.GetEnv("LOG_MODE", "development", log),

		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "", log),

		HederaNetwork:     network,
		HederaOperatorID:  utils.GetEnv("HEDERA_OPERATOR_ID", "", log),
		HederaOperatorKey: utils.GetEnv("HEDERA_OPERATOR_KEY", "", nil),
		HederaSubmitKey:   utils.GetEnv("HEDERA_SUBMIT_KEY", "", nil),
		HederaTopicID:     utils.GetEnv("HEDERA_TOPIC_ID", "", log),
		MirrorNodeURL:     strings.TrimRight(utils.GetEnv("MIRROR_NODE_URL", mirrorDefault, log), "/"),
		LedgerTimeout:     time.Duration(utils.GetEnvAsInt("HEDERA_TIMEOUT_MS", 25000, log)) * time.Millisecond,

		GeminiAPIKey:  utils.GetEnv("GEMINI_API_KEY", "", nil),
		GeminiModel:   utils.GetEnv("GEMINI_MODEL", "gemini-2.5-flash", log),
		GeminiTimeout: time.Duration(utils.GetEnvAsInt("GEMINI_TIMEOUT_MS", 6000, log)) * time.Millisecond,

		RedisAddr:          utils.GetEnv("REDIS_ADDR", "", log),
		RateLimitPerMinute: utils.GetEnvAsInt("RATE_LIMIT_PER_MINUTE", 60, log),

		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "1.0.0", log),
	}
}
