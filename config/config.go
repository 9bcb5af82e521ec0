package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is loaded once at startup and never mutated afterwards.
// Components copy the values they need when they are constructed.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`

	// Origins allowed to call the submission endpoint from a browser
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://example.com,http://localhost"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// SMTP Configuration
	SMTPHost      string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort      string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	SMTPFromEmail string `env:"SMTP_FROM_EMAIL" envDefault:"noreply@premiersalon.example"` // Use an SPF-safe domain
	// Where booking and application notifications are delivered
	ContactEmailTo string `env:"CONTACT_EMAIL_TO" envDefault:"info@premiersalon.example"`

	BusinessName string `env:"BUSINESS_NAME" envDefault:"Premier Family Salon & Hair Spa"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// Only effective locally; ignored in production when the file is absent
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	cfg.TrustedProxies = trimAll(cfg.TrustedProxies)

	if cfg.ContactEmailTo == "" {
		return nil, fmt.Errorf("CONTACT_EMAIL_TO must not be empty")
	}
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		log.Println("WARNING: SMTP credentials missing. Notifications will not be delivered.")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		// Strip trailing slash so origins compare equal to the Origin header
		v = strings.TrimRight(strings.TrimSpace(v), "/")
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
