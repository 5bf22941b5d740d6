package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyEndpoint возвращается, если адрес удаленного сервиса не задан.
var ErrEmptyEndpoint = errors.New("ENDPOINT_ADDRESS is required")

type Config struct {
	HTTPAddr       string
	LogLevel       string
	RequestTimeout time.Duration
	MetricsEnabled bool
	Endpoint       EndpointConfig
	RateLimit      RateLimitConfig
}

type EndpointConfig struct {
	Address        string
	APIName        string
	CallTimeout    time.Duration
	ConnectTimeout time.Duration
}

// RateLimitConfig описывает входящий лимит запросов. RPS == 0 отключает лимит.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (Config, error) {
	var cfg Config

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	reqTimeout, err := parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_CLIENT_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = reqTimeout

	metricsEnabled, err := parseBoolDefault(getEnv("METRICS_ENABLED", ""), true)
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}
	cfg.MetricsEnabled = metricsEnabled

	cfg.Endpoint = EndpointConfig{
		Address: strings.TrimSpace(getEnv("ENDPOINT_ADDRESS", "")),
		APIName: getEnv("ENDPOINT_API_NAME", "/predict"),
	}
	if cfg.Endpoint.Address == "" {
		return Config{}, ErrEmptyEndpoint
	}

	// 0 означает, что вызов ограничен только контекстом запроса.
	callTimeout, err := parseDuration(getEnv("ENDPOINT_CALL_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ENDPOINT_CALL_TIMEOUT: %w", err)
	}
	cfg.Endpoint.CallTimeout = callTimeout

	connectTimeout, err := parseDuration(getEnv("ENDPOINT_CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ENDPOINT_CONNECT_TIMEOUT: %w", err)
	}
	cfg.Endpoint.ConnectTimeout = connectTimeout

	rps, err := parseFloatDefault(getEnv("RATE_LIMIT_RPS", ""), 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
	}
	burst, err := parseIntDefault(getEnv("RATE_LIMIT_BURST", ""), 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_BURST: %w", err)
	}
	if rps < 0 || burst < 0 {
		return Config{}, fmt.Errorf("rate limit must not be negative: rps=%v burst=%d", rps, burst)
	}
	cfg.RateLimit = RateLimitConfig{RPS: rps, Burst: burst}

	return cfg, nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", value)
	}
	return d, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

// parseBoolDefault parses optional boolean with default value.
func parseBoolDefault(value string, def bool) (bool, error) {
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseIntDefault(value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}

func parseFloatDefault(value string, def float64) (float64, error) {
	if value == "" {
		return def, nil
	}
	return strconv.ParseFloat(value, 64)
}
