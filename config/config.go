package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port     uint16 `env:"PORT"      envDefault:"3000" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	StorageType      string `env:"STORAGE_TYPE"       envDefault:"memory"`
	DataSourceName   string `env:"DATA_SOURCE_NAME"   envDefault:"slidesync.db"`
	LocalStoragePath string `env:"LOCAL_STORAGE_PATH" envDefault:"db.json"`
	S3BucketName     string `env:"S3_BUCKET_NAME"`

	PublicDir string `env:"PUBLIC_DIR" envDefault:"./public"`

	// DefaultRole is handed to every joiner after a room's first.
	DefaultRole string `env:"DEFAULT_ROLE" envDefault:"editor" validate:"oneof=editor viewer"`
}

// Load reads the configuration from the environment, with .env support.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		logrus.WithError(err).Error("Failed to parse config from environment")
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		logrus.WithError(err).Error("Config validation failed")
		return nil, err
	}
	return cfg, nil
}
