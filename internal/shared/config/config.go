package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultMaxUploadBytes = 10 << 20 // 10MB
	defaultGeminiModel    = "gemini-3-flash-preview"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	MaxUploadBytes  int64

	FileStore     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	LLMProvider       string
	LLMModel          string
	GoogleAPIKey      string
	OpenAIAPIKey      string
	GeminiBaseURL     string
	OpenAIBaseURL     string
	LLMTimeout        time.Duration
	LLMMaxAttempts    int
	LLMRetryBaseDelay time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	provider := normalizeProvider(v.GetString("LLM_PROVIDER"))
	model := strings.TrimSpace(v.GetString("LLM_MODEL"))
	if model == "" {
		model = defaultModel(provider)
	}

	maxUpload := v.GetInt64("MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	attempts := v.GetInt("LLM_MAX_ATTEMPTS")
	if attempts <= 0 {
		attempts = 1
	}
	timeoutSeconds := v.GetInt("LLM_TIMEOUT_SECONDS")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 120
	}
	baseDelayMs := v.GetInt("LLM_RETRY_BASE_DELAY_MS")
	if baseDelayMs < 0 {
		baseDelayMs = 0
	}

	return Config{
		Env:             normalizeEnv(v.GetString("ENV")),
		Port:            strings.TrimSpace(v.GetString("PORT")),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		MaxUploadBytes:  maxUpload,

		FileStore:     normalizeStoreType(v.GetString("FILE_STORE")),
		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisPrefix:   v.GetString("REDIS_PREFIX"),

		LLMProvider:       provider,
		LLMModel:          model,
		GoogleAPIKey:      strings.TrimSpace(v.GetString("GOOGLE_API_KEY")),
		OpenAIAPIKey:      strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		GeminiBaseURL:     strings.TrimSpace(v.GetString("GEMINI_BASE_URL")),
		OpenAIBaseURL:     strings.TrimSpace(v.GetString("OPENAI_BASE_URL")),
		LLMTimeout:        time.Duration(timeoutSeconds) * time.Second,
		LLMMaxAttempts:    attempts,
		LLMRetryBaseDelay: time.Duration(baseDelayMs) * time.Millisecond,

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "3400")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	v.SetDefault("FILE_STORE", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "rezum:files:")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 120)
	v.SetDefault("LLM_MAX_ATTEMPTS", 3)
	v.SetDefault("LLM_RETRY_BASE_DELAY_MS", 300)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// loadEnvFiles loads KEY=VALUE files if they exist. Variables already set in
// the environment win; missing files are ignored.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		_ = godotenv.Load(path)
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}
