// config - источник загрузки конфигурации для backoffice-gateway.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища учётных данных.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	API      APIConfig     `yaml:"api"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Storage  StorageConfig `yaml:"storage"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// HTTPConfig — публичный REST-сервер back-office.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// APIConfig — апстрим EquipTrack REST API.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8000/api"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"equiptrack-gateway"`
}

// Origin — base_url без суффикса /api: от него строятся ссылки на медиа.
func (a APIConfig) Origin() string {
	base := strings.TrimRight(a.BaseURL, "/")
	return strings.TrimSuffix(base, "/api")
}

// TimeoutConfig — таймауты исходящих вызовов и входящих запросов.
//   - Request — на одну попытку запроса к API;
//   - Refresh — на вызов /token/refresh/, чтобы зависший refresh не держал очередь вечно;
//   - Service — общий дедлайн входящего запроса к gateway.
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"TIMEOUT_REQUEST" env-default:"15s"`
	Refresh time.Duration `yaml:"refresh" env:"TIMEOUT_REFRESH" env-default:"10s"`
	Service time.Duration `yaml:"service" env:"TIMEOUT_SERVICE" env-default:"30s"`
}

// StorageConfig — где живут access/refresh токены и кэш пользователя.
type StorageConfig struct {
	Driver      string `yaml:"driver"       env:"STORAGE_DRIVER"       env-default:"memory"`
	FilePath    string `yaml:"file_path"    env:"STORAGE_FILE_PATH"    env-default:"credentials.yaml"`
	RedisURL    string `yaml:"redis_url"    env:"STORAGE_REDIS_URL"    env-default:"redis://localhost:6379/0"`
	RedisPrefix string `yaml:"redis_prefix" env:"STORAGE_REDIS_PREFIX" env-default:"equiptrack:credentials"`
}

// MetricsConfig — публикация /metrics на основном HTTP-сервере.
// Флаг инвертирован: у cleanenv env-default перетирает нулевое значение из файла.
type MetricsConfig struct {
	Disabled bool `yaml:"disabled" env:"METRICS_DISABLED"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return validated(&cfg)
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return validated(&cfg)
}

// validated проверяет значения, которые cleanenv не умеет проверить сам.
func validated(cfg *Config) (*Config, error) {
	switch cfg.Storage.Driver {
	case StorageMemory, StorageFile, StorageRedis:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("empty api base_url")
	}

	return cfg, nil
}
