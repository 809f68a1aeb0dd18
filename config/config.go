package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT"        default:"8000"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT"  default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`
	LogLevel        string        `envconfig:"LOG_LEVEL"        default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT"       default:"text"`

	// SecretKey signs the session cookie.
	SecretKey     string `envconfig:"SECRET_KEY"     required:"true"`
	SecureCookies bool   `envconfig:"SECURE_COOKIES" default:"false"`

	DBDriver       string `envconfig:"DB_DRIVER"       default:"sqlite"`
	DatabaseURL    string `envconfig:"DATABASE_URL"    default:"./storefront.db"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"./internal/repository/migrations"`

	RedisAddr     string `envconfig:"REDIS_ADDR"     default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	StripeAPIKey     string   `envconfig:"STRIPE_API_KEY"`
	StripeAPIURL     string   `envconfig:"STRIPE_API_URL"` // stripe-mock in development
	PublicURL        string   `envconfig:"PUBLIC_URL"        default:"http://localhost:4242"`
	AllowedCountries []string `envconfig:"ALLOWED_COUNTRIES" default:"US,CA"`
	ShippingFeeCents int64    `envconfig:"SHIPPING_FEE_CENTS" default:"500"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"storefront-checkout"`
}

// Load reads .env when present and then the process environment.
func Load(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("error loading .env file (continuing): %v", err)
	} else if err == nil {
		logger.Info("loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY must not be empty")
	}
	logger.Infof("configuration loaded: port=%s db=%s redis=%s", cfg.HTTPPort, cfg.DBDriver, cfg.RedisAddr)
	if cfg.StripeAPIKey == "" {
		logger.Warn("STRIPE_API_KEY is not set, checkout requests will be rejected by the provider")
	}
	return &cfg, nil
}
