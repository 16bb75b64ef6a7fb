// Package config provides configuration for the interview orchestrator.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Session registry
	DatabaseDSN string

	// LLM capability
	LLMProvider string // "openai" or "gemini"
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	// Speech / vision capabilities
	STTURL            string
	TTSURL            string
	EmotionURL        string
	CapabilityTimeout time.Duration

	// Interview behavior
	TopicBankPath string
	PipelineMode  string // "batch" or "adaptive"

	// WebSocket settings
	MaxMessageSize int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration

	// HTTP
	AllowedOrigins []string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		DatabaseDSN:       getEnv("DATABASE_DSN", "file:interviewd?mode=memory&cache=shared"),
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "http://localhost:11434"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", "llama3"),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_MS", 90000)) * time.Millisecond,
		STTURL:            getEnv("STT_URL", "http://localhost:9000"),
		TTSURL:            getEnv("TTS_URL", "http://localhost:9100"),
		EmotionURL:        getEnv("EMOTION_URL", "http://localhost:9200"),
		CapabilityTimeout: time.Duration(getEnvInt("CAPABILITY_TIMEOUT_MS", 30000)) * time.Millisecond,
		TopicBankPath:     getEnv("TOPIC_BANK_PATH", ""),
		PipelineMode:      getEnv("PIPELINE_MODE", "batch"),
		MaxMessageSize:    int64(getEnvInt("MAX_MESSAGE_SIZE", 65536)),
		ReadTimeout:       time.Duration(getEnvInt("READ_TIMEOUT_MS", 300000)) * time.Millisecond,
		WriteTimeout:      time.Duration(getEnvInt("WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		PingInterval:      time.Duration(getEnvInt("PING_INTERVAL_MS", 30000)) * time.Millisecond,
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
