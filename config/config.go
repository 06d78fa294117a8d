package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ComplexIDs            []string
	TradeTypes            []string
	MaxListingsPerComplex int
	SleepMin              time.Duration
	SleepMax              time.Duration
	Headless              bool
	ProxyURL              string
	ChromeBin             string
	MaxConcurrency        int
	MaxRetries            int

	SnapshotBackend string
	SnapshotDir     string
	SnapshotDBPath  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Timezone    string
	Environment string
	LogLevel    string
}

// Load reads the .env file, the environment and, when PIPELINE_CONFIG points
// at one, a YAML overlay file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		ComplexIDs:            getEnvList("COMPLEX_IDS", "8928"),
		TradeTypes:            getEnvList("TRADE_TYPES", "A1,B1,B2"),
		MaxListingsPerComplex: getEnvInt("MAX_LISTINGS_PER_COMPLEX", 200),
		SleepMin:              getEnvSeconds("SLEEP_MIN", 2.5),
		SleepMax:              getEnvSeconds("SLEEP_MAX", 6.0),
		Headless:              getEnvBool("HEADLESS", true),
		ProxyURL:              getEnv("PROXY_URL", ""),
		ChromeBin:             getEnv("CHROME_BIN", ""),
		MaxConcurrency:        getEnvInt("MAX_CONCURRENCY", 2),
		MaxRetries:            getEnvInt("MAX_RETRIES", 3),

		SnapshotBackend: getEnv("SNAPSHOT_BACKEND", "csv"),
		SnapshotDir:     getEnv("SNAPSHOT_DIR", "./output/snapshots"),
		SnapshotDBPath:  getEnv("SNAPSHOT_DB_PATH", "./output/snapshots.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "tracker"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "tracker123"),
		PostgresDB:       getEnv("POSTGRES_DB", "realestate"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Timezone:    getEnv("TIMEZONE", "Asia/Seoul"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if path := getEnv("PIPELINE_CONFIG", ""); path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		fc.Apply(cfg)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("[config] Unknown TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := getEnv(key, ""); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback float64) time.Duration {
	secs := fallback
	if val := getEnv(key, ""); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			secs = f
		}
	}
	return time.Duration(secs * float64(time.Second))
}

func getEnvBool(key string, fallback bool) bool {
	val := strings.ToLower(getEnv(key, ""))
	switch val {
	case "":
		return fallback
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getEnvList(key, fallback string) []string {
	return SplitList(getEnv(key, fallback))
}

// SplitList splits a comma separated value, dropping blank entries.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
