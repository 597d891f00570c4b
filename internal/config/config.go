package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr       string
	POSBaseURL     string
	RelayURL       string
	RedisAddr      string
	KafkaBrokers   []string
	RelayBus       string // local | redis | kafka
	AllowedOrigins []string
	ServiceName    string
	LogLevel       string

	// station settings
	DashboardHeading   string
	AdminDebounce      time.Duration
	StatusPendingGuard bool
	CatalogFile        string
	POSUsername        string
	POSPassword        string
}

func Load() Config {
	return Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8090"),
		POSBaseURL:         getenv("POS_BASE_URL", "http://localhost:8000"),
		RelayURL:           getenv("RELAY_URL", "ws://localhost:8090/ws"),
		RedisAddr:          getenv("REDIS_ADDR", "redis:6379"),
		KafkaBrokers:       splitCSV(getenv("KAFKA_BROKERS", "kafka:9092")),
		RelayBus:           strings.ToLower(getenv("RELAY_BUS", "local")),
		AllowedOrigins:     splitCSV(getenv("ALLOWED_ORIGINS", "*")),
		ServiceName:        getenv("SERVICE_NAME", "resto-relay"),
		LogLevel:           strings.ToLower(getenv("LOG_LEVEL", "info")),
		DashboardHeading:   getenv("DASHBOARD_HEADING", "Dashboard Cucina"),
		AdminDebounce:      duration("ADMIN_DEBOUNCE", 300*time.Millisecond),
		StatusPendingGuard: boolean("STATUS_PENDING_GUARD", false),
		CatalogFile:        getenv("CATALOG_FILE", "catalog.yaml"),
		POSUsername:        os.Getenv("POS_USERNAME"),
		POSPassword:        os.Getenv("POS_PASSWORD"),
	}
}

// Validate rejects settings no binary can start with.
func (c Config) Validate() error {
	switch c.RelayBus {
	case "local", "redis", "kafka":
	default:
		return fmt.Errorf("invalid RELAY_BUS %q (must be local, redis or kafka)", c.RelayBus)
	}
	if c.RelayBus == "kafka" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when RELAY_BUS=kafka")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (must be debug, info, warn or error)", c.LogLevel)
	}
	if c.AdminDebounce <= 0 {
		return fmt.Errorf("ADMIN_DEBOUNCE must be positive, got %s", c.AdminDebounce)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// duration accepts Go durations ("300ms") or bare milliseconds ("300").
func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func boolean(k string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return b
}
