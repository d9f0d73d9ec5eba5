package config

import (
	"fmt"
)

func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}

	if err := c.Gateway.Validate(); err != nil {
		return fmt.Errorf("gateway config: %w", err)
	}

	switch c.Gateway.Provider {
	case "stripe":
		if err := c.Stripe.Validate(); err != nil {
			return fmt.Errorf("stripe config: %w", err)
		}
	case "xendit":
		if err := c.Xendit.Validate(); err != nil {
			return fmt.Errorf("xendit config: %w", err)
		}
	}

	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("security config: %w", err)
	}

	if err := c.Checkout.Validate(); err != nil {
		return fmt.Errorf("checkout config: %w", err)
	}

	if err := c.Pricing.Validate(c.Gateway.Provider); err != nil {
		return fmt.Errorf("pricing config: %w", err)
	}

	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}

func (c *RedisConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	return nil
}

func (c *GatewayConfig) Validate() error {
	switch c.Provider {
	case "stripe", "xendit":
		return nil
	default:
		return fmt.Errorf("unknown payment provider %q", c.Provider)
	}
}

func (c *StripeConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("stripe secret key is required - set STRIPE_SECRET_KEY environment variable")
	}
	return nil
}

func (c *XenditConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("xendit secret key is required - set XENDIT_SECRET_KEY environment variable")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required - set JWT_SECRET environment variable")
	}
	return nil
}

func (c *CheckoutConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required - set CHECKOUT_BASE_URL environment variable")
	}
	return nil
}

// Validate checks the price table is usable for the selected provider. A
// missing tier still fails at resolve time with a configuration error; this
// catches an empty or half-filled table at boot instead of on the first
// live submission.
func (p PricingConfig) Validate(provider string) error {
	if len(p) == 0 {
		return fmt.Errorf("price table is empty")
	}

	for tier, price := range p {
		switch provider {
		case "stripe":
			if price.Ref == "" {
				return fmt.Errorf("tier %q has no price reference", tier)
			}
		case "xendit":
			if price.Amount <= 0 || price.Currency == "" {
				return fmt.Errorf("tier %q needs a positive amount and currency", tier)
			}
		}
	}

	return nil
}
