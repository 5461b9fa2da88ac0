package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress    = ":5005"
	defaultMigrations    = "migrations"
	defaultAudioMaxBytes = 10 << 20
	defaultHubBuffer     = 100
)

type Config struct {
	Env    string
	DB     db
	Server server
	Hub    hub
	Audio  audio
	Logger logger
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT_SECONDS"`
}

type hub struct {
	Buffer       int           `env:"HUB_BUFFER"`
	WriteTimeout time.Duration `env:"HUB_WRITE_TIMEOUT_SECONDS"`
}

type audio struct {
	MaxBytes int64 `env:"AUDIO_MAX_BYTES"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// MustLoad читает .env (если есть) и переменные окружения.
func MustLoad() *Config {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("failed to load .env file", "error", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvLocal)
	v.SetDefault("RUN_ADDRESS", defaultRunAddress)
	v.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUDIO_MAX_BYTES", defaultAudioMaxBytes)
	v.SetDefault("HUB_BUFFER", defaultHubBuffer)
	v.SetDefault("HUB_WRITE_TIMEOUT_SECONDS", 5)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Env: v.GetString("APP_ENV"),
		DB: db{
			DatabaseURI: v.GetString("DATABASE_URI"),
			Migrations:  v.GetString("MIGRATIONS_PATH"),
		},
		Server: server{
			RunAddress:      v.GetString("RUN_ADDRESS"),
			ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
		},
		Hub: hub{
			Buffer:       v.GetInt("HUB_BUFFER"),
			WriteTimeout: time.Duration(v.GetInt("HUB_WRITE_TIMEOUT_SECONDS")) * time.Second,
		},
		Audio:  audio{MaxBytes: v.GetInt64("AUDIO_MAX_BYTES")},
		Logger: logger{LogLevel: v.GetString("LOG_LEVEL")},
	}
}

// MigrationsSource returns the golang-migrate source URL of the migrations
// directory. A relative path is resolved against the working directory.
func (c *Config) MigrationsSource() (string, error) {
	dir, err := filepath.Abs(c.DB.Migrations)
	if err != nil {
		return "", fmt.Errorf("migrations path %q: %w", c.DB.Migrations, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("migrations dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migrations dir %q: not a directory", dir)
	}
	return "file://" + filepath.ToSlash(dir), nil
}
