// Package config reads the harness settings from the environment.
package config

import (
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultEnvFiles are read, if they exist, before the environment is parsed. Variables that are
// already set in the environment take precedence over the files.
var DefaultEnvFiles = []string{".env", ".env.local"}

type TargetOptions struct {
	BaseURL            string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	StatusQueryTimeout time.Duration `env:"STATUS_QUERY_TIMEOUT" envDefault:"10s"`
}

type BurstOptions struct {
	Deadline          time.Duration `env:"BURST_DEADLINE" envDefault:"60s"`
	RateLimitSize     int           `env:"RATE_LIMIT_BURST_SIZE" envDefault:"110"`
	SpoofedSize       int           `env:"SPOOF_BURST_SIZE" envDefault:"50"`
	ConcurrencySize   int           `env:"CONCURRENCY_BURST_SIZE" envDefault:"50"`
	RateLimitSourceIP string        `env:"RATE_LIMIT_SOURCE_IP" envDefault:"9.9.9.9"`
	ConcurrencyIP     string        `env:"CONCURRENCY_SOURCE_IP" envDefault:"7.7.7.7"`
}

type LatencyOptions struct {
	Samples      int           `env:"LATENCY_SAMPLES" envDefault:"15"`
	P95Threshold time.Duration `env:"LATENCY_P95_THRESHOLD" envDefault:"250ms"`
	Deadline     time.Duration `env:"LATENCY_DEADLINE" envDefault:"30s"`
}

type Configuration struct {
	Target       TargetOptions
	Burst        BurstOptions
	Latency      LatencyOptions
	BugCatalogue string `env:"BUG_CATALOGUE"`
	ReportPath   string `env:"REPORT_PATH"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadEnv loads whichever of the given dotenv files exist, and returns how many were loaded.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads the dotenv files and parses the environment.
func Load(envFiles []string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, errors.Wrap(err, "cannot load env files")
	}
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "invalid environment")
	}
	return c, nil
}

func (t *TargetOptions) Validate() error {
	u, err := url.Parse(t.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("base URL must be an absolute http(s) URL, got %q", t.BaseURL)
	}
	if t.RequestTimeout <= 0 {
		return errors.Errorf("request timeout must be positive, got %s", t.RequestTimeout)
	}
	return nil
}

func (b *BurstOptions) Validate() error {
	for name, size := range map[string]int{
		"rate limit burst size":  b.RateLimitSize,
		"spoofed burst size":     b.SpoofedSize,
		"concurrency burst size": b.ConcurrencySize,
	} {
		if size <= 0 {
			return errors.Errorf("%s must be positive, got %d", name, size)
		}
	}
	if b.SpoofedSize > 250 {
		return errors.Errorf("spoofed burst size cannot exceed 250 distinct addresses, got %d", b.SpoofedSize)
	}
	if b.Deadline <= 0 {
		return errors.Errorf("burst deadline must be positive, got %s", b.Deadline)
	}
	return nil
}

func (l *LatencyOptions) Validate() error {
	if l.Samples <= 0 {
		return errors.Errorf("latency sample count must be positive, got %d", l.Samples)
	}
	if l.P95Threshold <= 0 {
		return errors.Errorf("latency threshold must be positive, got %s", l.P95Threshold)
	}
	return nil
}

func (c *Configuration) Validate() error {
	if err := c.Target.Validate(); err != nil {
		return err
	}
	if err := c.Burst.Validate(); err != nil {
		return err
	}
	return c.Latency.Validate()
}
