package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"leukemia-bot/internal/domain/entity"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN,notEmpty,required"`

	PredictionAPIURL string        `env:"PREDICTION_API_URL" envDefault:"http://localhost:8000"`
	PredictionPath   string        `env:"PREDICTION_PATH" envDefault:"/predict"`
	BackendAPIURL    string        `env:"BACKEND_API_URL" envDefault:"http://localhost:8080/api"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	DefaultModel     string        `env:"DEFAULT_MODEL" envDefault:"cnn"`
	MaxImageBytes    int           `env:"MAX_IMAGE_BYTES" envDefault:"5000000"`
	PreviewMaxSide   int           `env:"PREVIEW_MAX_SIDE" envDefault:"512"`

	// Пустой DATABASE_URL: пользователи хранятся в памяти
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8081"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Env      string `env:"ENV" envDefault:"development"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Variant модель по умолчанию для новых пользователей
func (c *Config) Variant() entity.ModelVariant {
	v, err := entity.ParseModelVariant(c.DefaultModel)
	if err != nil {
		return entity.VariantCNN
	}
	return v
}

func (c *Config) validate() error {
	if _, err := entity.ParseModelVariant(c.DefaultModel); err != nil {
		return fmt.Errorf("DEFAULT_MODEL: %w", err)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
