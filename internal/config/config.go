package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

// Config is the persisted configuration document shared between the monitor
// and the dashboard. It lives in a single JSON file; a default document is
// written to disk on first run.
type Config struct {
	Email              EmailConfig     `json:"email"`
	Sellers            []models.Seller `json:"sellers"`
	Schedule           ScheduleConfig  `json:"schedule"`
	Filters            FilterConfig    `json:"filters"`
	MaxProductsToCheck int             `json:"max_products_to_check"`
	Storage            StorageConfig   `json:"storage"`
	Fetcher            FetcherConfig   `json:"fetcher"`
}

type EmailConfig struct {
	SMTPServer     string `json:"smtp_server"`
	SMTPPort       int    `json:"smtp_port"`
	SenderEmail    string `json:"sender_email"`
	SenderPassword string `json:"sender_password"`
	RecipientEmail string `json:"recipient_email"`
}

type ScheduleConfig struct {
	// Time is the daily run time in "HH:MM" (24h) local time.
	Time string `json:"time"`
}

type FilterConfig struct {
	Keywords      []string `json:"keywords"`
	CaseSensitive bool     `json:"case_sensitive"`
}

type StorageConfig struct {
	// Driver selects the snapshot repository: file, redis or postgres.
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	RedisAddr   string `json:"redis_addr"`
	PostgresDSN string `json:"postgres_dsn"`
}

type FetcherConfig struct {
	// Strategy selects the page fetcher: http or browser.
	Strategy       string `json:"strategy"`
	Headless       bool   `json:"headless"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`
}

// Default returns the configuration document written on first run.
func Default() *Config {
	return &Config{
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		Sellers: []models.Seller{
			{
				Name:      "Jersey Seller",
				SearchURL: "https://www.dhgate.com/wholesale/search.do?act=search&searchkey=kids+jersey",
			},
		},
		Schedule:           ScheduleConfig{Time: "09:00"},
		Filters:            FilterConfig{Keywords: []string{"kids"}, CaseSensitive: false},
		MaxProductsToCheck: 50,
		Storage: StorageConfig{
			Driver: "file",
			Path:   "product_data.json",
		},
		Fetcher: FetcherConfig{
			Strategy:       "http",
			Headless:       true,
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
	}
}

// Load reads the configuration document at path and applies environment
// overrides for secret-bearing fields. If the file does not exist a default
// document is materialized on disk first.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads the document as stored, without environment overrides. The
// dashboard uses this so a read-modify-write cycle never copies secrets from
// the environment into the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration document to path atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func (c *Config) Validate() error {
	if _, err := time.Parse("15:04", c.Schedule.Time); err != nil {
		return fmt.Errorf("invalid schedule time %q: expected HH:MM", c.Schedule.Time)
	}

	if c.MaxProductsToCheck < 1 {
		return fmt.Errorf("max_products_to_check must be at least 1, got %d", c.MaxProductsToCheck)
	}

	switch c.Storage.Driver {
	case "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	switch c.Fetcher.Strategy {
	case "http", "browser":
	default:
		return fmt.Errorf("unknown fetcher strategy: %q", c.Fetcher.Strategy)
	}

	for _, s := range c.Sellers {
		if errs := s.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid seller %q: %s", s.Name, errs[0])
		}
	}

	return nil
}

// applyEnv overrides secret-bearing fields from the environment so
// credentials can stay out of the on-disk document.
func (c *Config) applyEnv() {
	c.Email.SMTPServer = getEnv("DHMON_SMTP_SERVER", c.Email.SMTPServer)
	c.Email.SMTPPort = getEnvInt("DHMON_SMTP_PORT", c.Email.SMTPPort)
	c.Email.SenderEmail = getEnv("DHMON_SENDER_EMAIL", c.Email.SenderEmail)
	c.Email.SenderPassword = getEnv("DHMON_SENDER_PASSWORD", c.Email.SenderPassword)
	c.Email.RecipientEmail = getEnv("DHMON_RECIPIENT_EMAIL", c.Email.RecipientEmail)
	c.Storage.RedisAddr = getEnv("DHMON_REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.PostgresDSN = getEnv("DHMON_POSTGRES_DSN", c.Storage.PostgresDSN)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
