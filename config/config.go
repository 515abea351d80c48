package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/b2files/database"
	"github.com/sagarc03/b2files/emulator"
	b2http "github.com/sagarc03/b2files/http"
	"github.com/sagarc03/b2files/keybackend"
	"github.com/sagarc03/b2files/storage/minio"
)

// Storage backends.
const (
	StorageFilesystem = "filesystem"
	StorageMinio      = "minio"
)

type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for the emulator.
type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Service  ServiceConfig         `mapstructure:"service"`
	Database database.Config       `mapstructure:"database"`
	Storage  StorageConfig         `mapstructure:"storage"`
	Keys     keybackend.KeysConfig `mapstructure:"keys"`
	CORS     b2http.CORSConfig     `mapstructure:"cors"`
	Log      LogConfig             `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	APIURL        string `mapstructure:"api_url" validate:"omitempty,url"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=0"`
}

// ServiceConfig holds emulator service configuration.
type ServiceConfig struct {
	AccountID      string            `mapstructure:"account_id" validate:"required"`
	TokenTTL       time.Duration     `mapstructure:"token_ttl" validate:"min=0"`
	CleanupTimeout int               `mapstructure:"cleanup_timeout" validate:"min=1"`
	Buckets        []emulator.Bucket `mapstructure:"buckets" validate:"dive"`
}

// StorageConfig selects where blob bytes live.
type StorageConfig struct {
	Type  string       `mapstructure:"type" validate:"required,oneof=filesystem minio"`
	Path  string       `mapstructure:"path"`
	Minio minio.Config `mapstructure:"minio"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// BaseURL returns the externally visible API URL, derived from the port when unset.
func (s ServerConfig) BaseURL() string {
	if s.APIURL != "" {
		return strings.TrimRight(s.APIURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// EmulatorConfig converts the service section into emulator.ServiceConfig.
func (c *Config) EmulatorConfig() emulator.ServiceConfig {
	return emulator.ServiceConfig{
		APIURL:         c.Server.BaseURL(),
		AccountID:      c.Service.AccountID,
		Buckets:        c.Service.Buckets,
		TokenTTL:       c.Service.TokenTTL,
		CleanupTimeout: time.Duration(c.Service.CleanupTimeout) * time.Second,
	}
}

func (s StorageConfig) validate() error {
	switch s.Type {
	case StorageFilesystem:
		if s.Path == "" {
			return errors.New("storage.path is required for filesystem storage")
		}
	case StorageMinio:
		var missing []string
		if s.Minio.Endpoint == "" {
			missing = append(missing, "endpoint")
		}
		if s.Minio.AccessKey == "" {
			missing = append(missing, "access_key")
		}
		if s.Minio.SecretKey == "" {
			missing = append(missing, "secret_key")
		}
		if s.Minio.Bucket == "" {
			missing = append(missing, "bucket")
		}
		if len(missing) > 0 {
			return fmt.Errorf("storage.minio missing: %s", strings.Join(missing, ", "))
		}
	}
	return nil
}

var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-type": "storage.type",
	"storage-path": "storage.path",
	"port":         "server.port",
	"api-url":      "server.api_url",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// bindFlags binds explicitly set CLI flags to viper keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5709)
	v.SetDefault("server.api_url", "")
	v.SetDefault("server.max_upload_size", 0) // 0 means handler default

	v.SetDefault("service.account_id", "emulator")
	v.SetDefault("service.token_ttl", "24h")
	v.SetDefault("service.cleanup_timeout", 30) // seconds

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "b2emu.db")
	v.SetDefault("database.tables.files", "b2_files")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.type", StorageFilesystem)
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "b2emu")
	v.SetDefault("storage.minio.prefix", "")
	v.SetDefault("storage.minio.use_ssl", false)

	v.SetDefault("keys.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("b2emu")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix("B2EMU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
