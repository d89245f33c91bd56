package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// FEWS web service access.
	FEWSAPIURL    string
	Deployments   []domain.Deployment
	FEWSTimeout   time.Duration
	FEWSRateLimit float64 // requests per second, 0 disables limiting
	FEWSRateBurst int
	SelectorLimit int

	// Optional observation publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fewsTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEWS_TIMEOUT", "30s"))
	if err != nil || fewsTimeout <= 0 {
		return nil, errors.New("invalid FEWS_TIMEOUT")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FEWS_RATE_LIMIT", "0"), 64)
	if err != nil || rateLimit < 0 {
		return nil, errors.New("invalid FEWS_RATE_LIMIT")
	}

	rateBurst, err := strconv.Atoi(sharedcfg.EnvOrDefault("FEWS_RATE_BURST", "1"))
	if err != nil || rateBurst < 1 {
		return nil, errors.New("invalid FEWS_RATE_BURST")
	}

	selectorLimit, err := strconv.Atoi(sharedcfg.EnvOrDefault("SELECTOR_LIMIT", "5"))
	if err != nil || selectorLimit < 1 {
		return nil, errors.New("invalid SELECTOR_LIMIT")
	}

	deployments, err := parseDeployments(os.Getenv("FEWS_DEPLOYMENTS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "*")),

		FEWSAPIURL:    sharedcfg.EnvOrDefault("FEWS_API_URL", domain.DefaultAPIURL),
		Deployments:   deployments,
		FEWSTimeout:   fewsTimeout,
		FEWSRateLimit: rateLimit,
		FEWSRateBurst: rateBurst,
		SelectorLimit: selectorLimit,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "fews-observations"),
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("invalid LOG_FORMAT: must be json or text")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// writeTimeoutMargin covers response encoding on top of upstream time.
const writeTimeoutMargin = 30 * time.Second

// HTTPWriteTimeout bounds an API response. Connect makes two sequential
// upstream calls, each limited by FEWSTimeout and, when rate limiting is on,
// preceded by up to one token interval of waiting.
func (c *Config) HTTPWriteTimeout() time.Duration {
	perCall := c.FEWSTimeout
	if c.FEWSRateLimit > 0 {
		perCall += time.Duration(float64(time.Second) / c.FEWSRateLimit)
	}
	return 2*perCall + writeTimeoutMargin
}

// parseDeployments reads "base|rest;base|rest" pairs. The REST path is
// optional per entry. An empty value selects the built-in table.
func parseDeployments(s string) ([]domain.Deployment, error) {
	if strings.TrimSpace(s) == "" {
		return domain.DefaultDeployments(), nil
	}
	var out []domain.Deployment
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		base, rest, _ := strings.Cut(entry, "|")
		base = strings.TrimSuffix(strings.TrimSpace(base), "/")
		rest = strings.TrimSpace(rest)
		if base == "" {
			return nil, fmt.Errorf("invalid FEWS_DEPLOYMENTS entry %q: missing base URL", entry)
		}
		if rest == "" {
			rest = domain.RestPath
		}
		if !strings.HasPrefix(rest, "/") {
			return nil, fmt.Errorf("invalid FEWS_DEPLOYMENTS entry %q: REST path must start with /", entry)
		}
		out = append(out, domain.NewDeployment(base, rest))
	}
	if len(out) == 0 {
		return domain.DefaultDeployments(), nil
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
