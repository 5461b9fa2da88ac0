package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress  = "localhost:5005"
	defaultLogLevel       = "info"
	defaultEnv            = "local"
	defaultConfigDir      = ".noisemap"
	defaultRequestTimeout = 30
	defaultReconnectDelay = 5
	cacheFile             = "markers.db"
)

type Config struct {
	Env            string        `mapstructure:"app_env"`
	ServerAddress  string        `mapstructure:"server_address"`
	LogLevel       string        `mapstructure:"log_level"`
	ConfigDir      string        `mapstructure:"config_dir"`
	CachePath      string        `mapstructure:"-"`
	LayerPath      string        `mapstructure:"layer_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout_seconds"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay_seconds"`
	EnableTLS      bool          `mapstructure:"enable_tls"`
}

// Overrides - значения флагов командной строки, перекрывающие окружение.
type Overrides struct {
	EnvFile       string
	ServerAddress string
}

// MustLoad загружает конфигурацию клиента
func MustLoad(o Overrides) *Config {
	cfg, err := Load(o)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env (если есть), переменные окружения и применяет флаги.
func Load(o Overrides) (*Config, error) {
	envPath := o.EnvFile
	if envPath == "" {
		envPath = ".env"
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			// Пробуем найти .env в родительской директории
			envPath = "../.env"
		}
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("ошибка загрузки %s: %w", envPath, err)
		}
	} else if o.EnvFile != "" {
		return nil, fmt.Errorf("файл конфигурации %s: %w", o.EnvFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeout)
	v.SetDefault("RECONNECT_DELAY_SECONDS", defaultReconnectDelay)
	v.SetDefault("ENABLE_TLS", false)

	if o.ServerAddress != "" {
		v.Set("SERVER_ADDRESS", o.ServerAddress)
	}

	cfg := fromViper(v)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Создаем директорию если ее нет
	if err := os.MkdirAll(cfg.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога конфигурации: %w", err)
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, configDir)
	}

	return &Config{
		Env:            v.GetString("APP_ENV"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		ConfigDir:      configDir,
		CachePath:      filepath.Join(configDir, cacheFile),
		LayerPath:      v.GetString("LAYER_PATH"),
		RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		ReconnectDelay: time.Duration(v.GetInt("RECONNECT_DELAY_SECONDS")) * time.Second,
		EnableTLS:      v.GetBool("ENABLE_TLS"),
	}
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds должен быть положительным")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect_delay_seconds должен быть положительным")
	}
	return nil
}

// BaseURL возвращает адрес HTTP API.
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

// PushURL возвращает адрес WebSocket-подписки.
func (c *Config) PushURL() string {
	if c.EnableTLS {
		return "wss://" + c.ServerAddress + "/update"
	}
	return "ws://" + c.ServerAddress + "/update"
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
