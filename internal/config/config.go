package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
)

const maxCodeSpace = 10000

type AppConfig struct {
	Gin      *GinConfig      `mapstructure:"gin"`
	API      *APIConfig      `mapstructure:"api"`
	Log      *LogConfig      `mapstructure:"log"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Notify   *NotifyConfig   `mapstructure:"notify"`
	Storage  *StorageConfig  `mapstructure:"storage"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	AdminSecret        string        `mapstructure:"admin_secret"`
	AdminTokenTTL      time.Duration `mapstructure:"admin_token_ttl"`
	MaxCodes           int           `mapstructure:"max_codes"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

type NotifyConfig struct {
	ResendAPIKey    string        `mapstructure:"resend_api_key"`
	From            string        `mapstructure:"from"`
	BrandName       string        `mapstructure:"brand_name"`
	LogoURL         string        `mapstructure:"logo_url"`
	TikTokURL       string        `mapstructure:"tiktok_url"`
	InstagramURL    string        `mapstructure:"instagram_url"`
	PoolSize        int           `mapstructure:"pool_size"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      uint64        `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
}

type StorageConfig struct {
	UploadsDir    string `mapstructure:"uploads_dir"`
	ImagesDir     string `mapstructure:"images_dir"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

// envBindings maps keys to the plain environment variables deployments set.
var envBindings = map[string]string{
	"postgres.url":          "DATABASE_URL",
	"api.port":              "PORT",
	"api.admin_secret":      "ADMIN_SECRET",
	"api.max_codes":         "MAX_CODES",
	"api.jwt_signing_key":   "JWT_SIGNING_KEY",
	"notify.resend_api_key": "RESEND_API_KEY",
	"redis.url":             "REDIS_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gin.mode", "release")
	v.SetDefault("api.environment", "production")
	v.SetDefault("api.port", "5000")
	v.SetDefault("api.base_url", "localhost:5000")
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.admin_secret", "")
	v.SetDefault("api.allowed_cors_domains", []string{"*"})
	v.SetDefault("api.admin_token_ttl", 12*time.Hour)
	v.SetDefault("api.max_codes", maxCodeSpace)
	v.SetDefault("api.shutdown_timeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "raffle")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 30*time.Second)
	v.SetDefault("notify.resend_api_key", "")
	v.SetDefault("notify.from", "Soporte <soporte@example.com>")
	v.SetDefault("notify.brand_name", "Rifas")
	v.SetDefault("notify.logo_url", "")
	v.SetDefault("notify.tiktok_url", "")
	v.SetDefault("notify.instagram_url", "")
	v.SetDefault("notify.pool_size", 16)
	v.SetDefault("notify.timeout", 30*time.Second)
	v.SetDefault("notify.max_retries", 3)
	v.SetDefault("notify.initial_interval", 500*time.Millisecond)
	v.SetDefault("storage.uploads_dir", "uploads")
	v.SetDefault("storage.images_dir", "images")
	v.SetDefault("storage.max_upload_size", 10<<20)
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("v.BindEnv(%s) -> %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	return v, nil
}

// Load reads the YAML file at path, overridden by environment variables.
// A missing file is not an error.
func Load(path string) (*AppConfig, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	conf := &AppConfig{}
	if err = v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err = conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return conf, nil
}

// WatchLogLevel calls onChange with the new log level whenever the file
// at path changes.
func WatchLogLevel(path string, onChange func(level string)) error {
	v, err := newViper(path)
	if err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		onChange(v.GetString("log.level"))
	})
	v.WatchConfig()

	return nil
}

func (c *AppConfig) Validate() error {
	err := validation.ValidateStruct(
		c.API,
		validation.Field(&c.API.Port, validation.Required),
		validation.Field(&c.API.AdminSecret, validation.Required, validation.Length(1, 72)),
		validation.Field(&c.API.JWTSigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.API.MaxCodes, validation.Required, validation.Min(1), validation.Max(maxCodeSpace)),
		validation.Field(&c.API.AdminTokenTTL, validation.Required),
	)
	if err != nil {
		return err
	}

	return validation.ValidateStruct(
		c.Storage,
		validation.Field(&c.Storage.MaxUploadSize, validation.Required, validation.Min(int64(1))),
	)
}
