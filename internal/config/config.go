package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Server     Server     `koanf:"server"`
	Log        Log        `koanf:"log"`
	Storage    Storage    `koanf:"storage"`
	Extraction Extraction `koanf:"extraction"`
}

type Server struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	App    string `koanf:"app"`
}

// Storage elige el medio donde vive el slot serializado del store.
type Storage struct {
	Driver        string `koanf:"driver"`
	Path          string `koanf:"path"`
	DSN           string `koanf:"dsn"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	Slot          string `koanf:"slot"`
}

// Extraction configura el proveedor de extracción (Gemini).
// Sin APIKey los endpoints de captura responden 503. Timeout es el tope de una
// extracción completa, reintentos incluidos.
type Extraction struct {
	APIKey        string        `koanf:"api_key"`
	BaseURL       string        `koanf:"base_url"`
	Model         string        `koanf:"model"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerMinute int           `koanf:"rate_per_minute"`
}

func applyDefaults(c *Config) {
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 90 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.App == "" {
		c.Log.App = "surgical-records"
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Driver == DriverFile && strings.TrimSpace(c.Storage.Path) == "" {
		c.Storage.Path = "data/records.json"
	}
	if c.Storage.Driver == DriverRedis && strings.TrimSpace(c.Storage.RedisAddr) == "" {
		c.Storage.RedisAddr = "localhost:6379"
	}
	if c.Storage.Slot == "" {
		c.Storage.Slot = "records"
	}

	if c.Extraction.BaseURL == "" {
		c.Extraction.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.Extraction.Model == "" {
		c.Extraction.Model = "gemini-2.5-flash"
	}
	if c.Extraction.Timeout <= 0 {
		c.Extraction.Timeout = 60 * time.Second
	}
	if c.Extraction.RatePerMinute <= 0 {
		c.Extraction.RatePerMinute = 30
	}
}

// Validate revisa combinaciones que no se pueden corregir con defaults.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("%w: storage.path is required for file driver", ErrInvalidConfig)
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("%w: storage.dsn is required for postgres driver", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.Storage.RedisDB < 0 {
			return fmt.Errorf("%w: storage.redis_db must be >= 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Server.WriteTimeout <= c.Extraction.Timeout {
		return fmt.Errorf("%w: server.write_timeout (%s) must exceed extraction.timeout (%s)",
			ErrInvalidConfig, c.Server.WriteTimeout, c.Extraction.Timeout)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console", "text":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// ExtractionEnabled indica si hay credenciales para el proveedor.
func (c *Config) ExtractionEnabled() bool {
	return strings.TrimSpace(c.Extraction.APIKey) != ""
}
