package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

const (
	BackendInference = "inference"
	BackendLLM       = "llm"
)

type Config struct {
	UserID           string        `koanf:"user_id"`
	CashierName      string        `koanf:"cashier_name"`
	Area             string        `koanf:"area"`
	DatabaseDSN      string        `koanf:"database_dsn"`
	RedisAddr        string        `koanf:"redis_addr"`
	RedisPassword    string        `koanf:"redis_password"`
	RedisDB          int           `koanf:"redis_db"`
	RedisPrefix      string        `koanf:"redis_prefix"`
	InferenceBaseURL string        `koanf:"inference_base_url"`
	AssistantBackend string        `koanf:"assistant_backend"`
	LLMBaseURL       string        `koanf:"llm_base_url"`
	LLMAPIKey        string        `koanf:"llm_api_key"`
	LLMModel         string        `koanf:"llm_model"`
	Timeout          time.Duration `koanf:"timeout"`
	LogFile          string        `koanf:"log_file"`
	Debug            bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		Area:             "main",
		DatabaseDSN:      "./store-assistant.db",
		RedisPrefix:      "store-assistant",
		InferenceBaseURL: "http://localhost:8003",
		AssistantBackend: BackendInference,
		Timeout:          60 * time.Second,
		LogFile:          "./store-assistant.log",
		Debug:            false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	cfg.AssistantBackend = strings.ToLower(strings.TrimSpace(cfg.AssistantBackend))
	switch cfg.AssistantBackend {
	case BackendInference, BackendLLM:
	default:
		return Config{}, fmt.Errorf("unsupported assistant_backend %q", cfg.AssistantBackend)
	}

	return cfg, nil
}
