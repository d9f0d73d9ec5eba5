package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string         `json:"environment"`
	Server      ServerConfig   `json:"server"`
	Database    DatabaseConfig `json:"database"`
	Redis       RedisConfig    `json:"redis"`
	Gateway     GatewayConfig  `json:"gateway"`
	Stripe      StripeConfig   `json:"stripe"`
	Xendit      XenditConfig   `json:"xendit"`
	Security    SecurityConfig `json:"security"`
	Checkout    CheckoutConfig `json:"checkout"`
	Pricing     PricingConfig  `json:"pricing"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type RedisConfig struct {
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	DraftTTL time.Duration `json:"draft_ttl"`
}

// GatewayConfig selects which checkout provider serves payment sessions.
type GatewayConfig struct {
	Provider string `json:"provider"` // "stripe" or "xendit"
	// Timeout bounds each session-creation call; timeouts surface as
	// transient, retryable errors.
	Timeout time.Duration `json:"timeout"`
}

type StripeConfig struct {
	Secret string `json:"secret"`
	Public string `json:"public"`
}

type XenditConfig struct {
	Secret string `json:"secret"`
}

type SecurityConfig struct {
	JWTSecret     string        `json:"jwt_secret"`
	JWTExpiration time.Duration `json:"jwt_expiration"`
}

// CheckoutConfig carries the redirect targets the gateway sends the patient
// back to; both are parameterized by request id at session-creation time.
type CheckoutConfig struct {
	BaseURL     string `json:"base_url"`
	SuccessPath string `json:"success_path"`
	CancelPath  string `json:"cancel_path"`
}

// Price is one entry of the environment-level price table. Ref is the
// provider-side price reference (Stripe price id); Amount/Currency are used
// by providers that take the amount inline (Xendit invoices).
type Price struct {
	Ref      string `json:"ref"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PricingConfig maps price tiers to configured prices. A resolved tier with
// no entry here is a configuration error, surfaced before any gateway call.
type PricingConfig map[string]Price

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	config := &Config{}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	config.Environment = env

	configDir, err := filepath.Abs("config")
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, "config.json")

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}

		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	config.applyEnvOverrides()
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("PAYMENT_PROVIDER"); v != "" {
		c.Gateway.Provider = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		c.Stripe.Secret = v
	}
	if v := os.Getenv("STRIPE_PUBLIC_KEY"); v != "" {
		c.Stripe.Public = v
	}
	if v := os.Getenv("XENDIT_SECRET_KEY"); v != "" {
		c.Xendit.Secret = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Security.JWTSecret = v
	}
	if v := os.Getenv("CHECKOUT_BASE_URL"); v != "" {
		c.Checkout.BaseURL = v
	}

	c.overridePriceFromEnv("certificate", "PRICE_CERTIFICATE")
	c.overridePriceFromEnv("prescription", "PRICE_PRESCRIPTION")
	c.overridePriceFromEnv("imaging", "PRICE_IMAGING")
	c.overridePriceFromEnv("pathology", "PRICE_PATHOLOGY")
}

func (c *Config) overridePriceFromEnv(tier, envVar string) {
	v := os.Getenv(envVar)
	if v == "" {
		return
	}
	if c.Pricing == nil {
		c.Pricing = PricingConfig{}
	}
	price := c.Pricing[tier]
	price.Ref = v
	c.Pricing[tier] = price
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.DraftTTL == 0 {
		c.Redis.DraftTTL = 14 * 24 * time.Hour
	}
	if c.Gateway.Provider == "" {
		c.Gateway.Provider = "stripe"
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 15 * time.Second
	}
	if c.Security.JWTExpiration == 0 {
		c.Security.JWTExpiration = 24 * time.Hour
	}
	if c.Checkout.SuccessPath == "" {
		c.Checkout.SuccessPath = "/requests/%s/payment/success"
	}
	if c.Checkout.CancelPath == "" {
		c.Checkout.CancelPath = "/requests/%s/payment/cancelled"
	}
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
		c.Database.DBName, c.Database.SSLMode)
}
