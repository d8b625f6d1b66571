package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv          string
	HTTPPort        string
	DatabaseURL     string
	LogLevel        string
	ShutdownTimeout time.Duration

	Redis      RedisConfig
	Cloudinary CloudinaryConfig
	Upload     UploadConfig

	CORSAllowedOrigins []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	CacheTTL time.Duration
}

// Enabled reports whether a Redis address was configured. Without one the
// listing cache is disabled.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
	UploadPrefix string
}

// Enabled reports whether uploads can reach Cloudinary.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.UploadPreset != ""
}

type UploadConfig struct {
	BatchTTL      time.Duration
	SweepInterval time.Duration
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads .env (if present), an optional config/config.yaml and the
// process environment. Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("http_port", "8080")
	v.SetDefault("database_url", "eventadmin.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_prefix", "eventadmin:events")
	v.SetDefault("cache_ttl", 5*time.Minute)

	v.SetDefault("cloudinary_cloud_name", "")
	v.SetDefault("cloudinary_upload_preset", "")
	v.SetDefault("cloudinary_api_key", "")
	v.SetDefault("cloudinary_api_secret", "")
	v.SetDefault("cloudinary_upload_prefix", "https://api.cloudinary.com")

	v.SetDefault("upload_batch_ttl", 30*time.Minute)
	v.SetDefault("upload_sweep_interval", time.Minute)

	v.SetDefault("cors_allowed_origins", "http://localhost:3000,http://localhost:5173")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:          v.GetString("app_env"),
		HTTPPort:        v.GetString("http_port"),
		DatabaseURL:     v.GetString("database_url"),
		LogLevel:        v.GetString("log_level"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
			Prefix:   v.GetString("cache_prefix"),
			CacheTTL: v.GetDuration("cache_ttl"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    v.GetString("cloudinary_cloud_name"),
			UploadPreset: v.GetString("cloudinary_upload_preset"),
			APIKey:       v.GetString("cloudinary_api_key"),
			APISecret:    v.GetString("cloudinary_api_secret"),
			UploadPrefix: v.GetString("cloudinary_upload_prefix"),
		},
		Upload: UploadConfig{
			BatchTTL:      v.GetDuration("upload_batch_ttl"),
			SweepInterval: v.GetDuration("upload_sweep_interval"),
		},
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.HTTPPort == "" {
		return nil, fmt.Errorf("HTTP_PORT is empty")
	}
	if cfg.Upload.BatchTTL <= 0 {
		return nil, fmt.Errorf("UPLOAD_BATCH_TTL must be positive, got %s", cfg.Upload.BatchTTL)
	}
	if cfg.Upload.SweepInterval <= 0 {
		return nil, fmt.Errorf("UPLOAD_SWEEP_INTERVAL must be positive, got %s", cfg.Upload.SweepInterval)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
