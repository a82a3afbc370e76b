package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Payments PaymentsConfig `yaml:"payments"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Email    EmailConfig    `yaml:"email"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type PaymentsConfig struct {
	DefaultProvider string         `yaml:"default_provider"`
	PayPal          PayPalConfig   `yaml:"paypal"`
	Razorpay        RazorpayConfig `yaml:"razorpay"`
}

type PayPalConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Environment  string `yaml:"environment"` // "sandbox" or "live"
}

type RazorpayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
}

type PricingConfig struct {
	BaseUSD       float64            `yaml:"base_usd"`
	FXEndpoint    string             `yaml:"fx_endpoint"`
	FallbackRates map[string]float64 `yaml:"fallback_rates"`
}

type EmailConfig struct {
	APIKey     string   `yaml:"api_key"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

type BookingConfig struct {
	AvailabilityCacheTTL int `yaml:"availability_cache_ttl_seconds"`
	UnpaidRetentionHours int `yaml:"unpaid_retention_hours"`
}

type WorkerConfig struct {
	CleanupSweepMinutes int `yaml:"cleanup_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
