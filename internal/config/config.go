package config

import (
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment
// variables, with sensible defaults for local development.
type Config struct {
	ServerPort string
	MySQLDSN   string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret   string
	SwaggerHost string

	// Local file storage for uploaded and generated images.
	UploadDir     string
	PublicBaseURL string

	// Reward generator endpoints. Both default to the OpenAI API but are
	// overridable so tests and self-hosted gateways can point elsewhere.
	AIAPIKey      string
	AIChatURL     string
	AIImageURL    string
	RewardWorkers int

	// Scheduler intervals in seconds.
	LedgerAuditInterval   int
	DeadlineSweepInterval int

	LogLevel string
	LogFile  string
}

// Load builds Config from the environment.
func Load() *Config {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MYSQL_DSN", "user:password@tcp(localhost:3306)/blockfunders?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("UPLOAD_DIR", "public")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080/public")
	v.SetDefault("AI_CHAT_URL", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("AI_IMAGE_URL", "https://api.openai.com/v1/images/generations")
	v.SetDefault("REWARD_WORKERS", 4)
	v.SetDefault("LEDGER_AUDIT_INTERVAL", 300)
	v.SetDefault("DEADLINE_SWEEP_INTERVAL", 3600)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	return &Config{
		ServerPort:            v.GetString("SERVER_PORT"),
		MySQLDSN:              v.GetString("MYSQL_DSN"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisDB:               v.GetInt("REDIS_DB"),
		RedisPass:             v.GetString("REDIS_PASSWORD"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		SwaggerHost:           v.GetString("SWAGGER_HOST"),
		UploadDir:             v.GetString("UPLOAD_DIR"),
		PublicBaseURL:         v.GetString("PUBLIC_BASE_URL"),
		AIAPIKey:              v.GetString("OPENAI_API_KEY"),
		AIChatURL:             v.GetString("AI_CHAT_URL"),
		AIImageURL:            v.GetString("AI_IMAGE_URL"),
		RewardWorkers:         v.GetInt("REWARD_WORKERS"),
		LedgerAuditInterval:   v.GetInt("LEDGER_AUDIT_INTERVAL"),
		DeadlineSweepInterval: v.GetInt("DEADLINE_SWEEP_INTERVAL"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFile:               v.GetString("LOG_FILE"),
	}
}
