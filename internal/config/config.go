package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr         string `env:"BACKEND_ADDR"`
	Port         string `env:"PORT"`
	DatabasePath string `env:"DATABASE_PATH"`

	JWTSecret     string        `env:"JWT_SECRET"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"klondike"`
	JWTTTLMinutes int64         `env:"JWT_TTL_MINUTES" envDefault:"10080"` // 7 days
	JWTTTL        time.Duration `env:"-"`

	AppEnv                string   `env:"APP_ENV" envDefault:"development"`
	WSAllowedOrigins      []string `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
	WSAllowQueryTokens    bool     `env:"WS_ALLOW_QUERY_TOKENS"`
	DevWebSocketsAllowAll bool     `env:"DEV_WEBSOCKETS_ALLOW_ALL"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	TracesExporter string `env:"OTEL_TRACES_EXPORTER" envDefault:"stdout"`

	// DealSeed makes every deal reproducible when non-zero.
	DealSeed int64 `env:"DEAL_SEED"`
}

func (c Config) IsDevelopment() bool { return c.AppEnv == "development" }

// LoadFromEnv reads the process environment.
func LoadFromEnv() (Config, error) {
	return Load(nil)
}

// Load reads configuration from environ, or from the process environment when environ is nil.
func Load(environ map[string]string) (Config, error) {
	cfg, err := Parse(environ)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes variables and defaults without validating them, so callers
// can apply overrides before Normalize.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Normalize fills derived fields and reports every missing setting at once.
// Call it again after overriding fields by hand.
func (c *Config) Normalize() error {
	c.AppEnv = strings.TrimSpace(c.AppEnv)
	if c.AppEnv == "" {
		c.AppEnv = "development"
	}
	c.JWTTTL = time.Duration(c.JWTTTLMinutes) * time.Minute

	origins := c.WSAllowedOrigins[:0]
	for _, o := range c.WSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.WSAllowedOrigins = origins

	// BACKEND_ADDR is optional if PORT is set by the hosting environment.
	if c.Addr == "" {
		if port := strings.TrimSpace(c.Port); port != "" {
			if strings.Contains(port, ":") {
				c.Addr = port
			} else {
				c.Addr = ":" + port
			}
		}
	}

	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.JWTTTLMinutes <= 0 {
		missing = append(missing, "JWT_TTL_MINUTES")
	}
	if c.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if c.Addr == "" {
		missing = append(missing, "BACKEND_ADDR (or PORT)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing/invalid env: %s", strings.Join(missing, ", "))
	}
	return nil
}
