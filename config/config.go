package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port              string
	GinMode           string
	RenderEngine      string
	BrowserURL        string
	BrowserBin        string
	NoSandbox         bool
	RenderConcurrency int
	RenderTimeout     time.Duration
	MaxBodyBytes      int64
	LogLevel          string
	LogFormat         string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	concurrency, err := getEnvInt("RENDER_CONCURRENCY", 2)
	if err != nil {
		return nil, err
	}
	maxBody, err := getEnvInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("RENDER_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	noSandbox, err := getEnvBool("RENDER_NO_SANDBOX", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		GinMode:           getEnvOrDefault("GIN_MODE", "release"),
		RenderEngine:      getEnvOrDefault("RENDER_ENGINE", "chrome"),
		BrowserURL:        os.Getenv("RENDER_BROWSER_URL"),
		BrowserBin:        os.Getenv("RENDER_BROWSER_BIN"),
		NoSandbox:         noSandbox,
		RenderConcurrency: concurrency,
		RenderTimeout:     timeout,
		MaxBodyBytes:      int64(maxBody),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "json"),
	}, nil
}

// NewLogger builds the application logger from the configured level and format.
func NewLogger(cfg *Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(level)
	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
