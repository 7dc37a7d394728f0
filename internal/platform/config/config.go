package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
)

var (
	errInvalidPort       = errors.New("config: invalid PORT number")
	errInvalidEndpoint   = errors.New("config: endpoint must be an absolute http(s) URL")
	errInvalidInteger    = errors.New("config: value is not a valid integer")
	errTimeoutOutOfRange = errors.New("config: PAGE_TIMEOUT_SECONDS must be 1-300")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port               string
	LogLevel           string
	GitHubAPIURL       string
	GitHubToken        string
	ValidatorURL       string
	PageTimeoutSeconds int
}

// Load reads configuration from environment variables with sensible defaults.
// A malformed value is an error, not a silent fallback to the default.
func Load() (Config, error) {
	pageTimeout, err := getEnvAsInt("PAGE_TIMEOUT_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "ERROR"),
		GitHubAPIURL:       getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		ValidatorURL:       getEnv("VALIDATOR_URL", "https://validator.w3.org/nu/?out=json"),
		PageTimeoutSeconds: pageTimeout,
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	for _, endpoint := range []string{c.GitHubAPIURL, c.ValidatorURL} {
		parsed, err := url.Parse(endpoint)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: %q", errInvalidEndpoint, endpoint)
		}
	}

	if c.PageTimeoutSeconds < 1 || c.PageTimeoutSeconds > 300 {
		return fmt.Errorf("%w: got %d", errTimeoutOutOfRange, c.PageTimeoutSeconds)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidInteger, key, s)
	}
	return v, nil
}
