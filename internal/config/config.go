package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppName  string
	Port     string
	LogLevel string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	SQLitePath  string

	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTSecret        []byte
	JWTRefreshSecret []byte
	JWTIssuer        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads the configuration from the process environment.
// Call godotenv.Load first if a .env file should be honoured.
func Load() Config {
	return Config{
		AppName:  EnvDefault("APP_NAME", "Sweet Shop API v1.0"),
		Port:     EnvDefault("PORT", "3000"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      EnvDefault("DB_HOST", "localhost"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      EnvDefault("DB_PORT", "5432"),
		SQLitePath:  EnvDefault("SQLITE_PATH", "sweetshop.db"),

		DBMaxOpenConns: EnvIntDefault("DB_MAX_OPEN_CONNS", 100),
		DBMaxIdleConns: EnvIntDefault("DB_MAX_IDLE_CONNS", 10),

		JWTSecret:        []byte(EnvDefault("JWT_SECRET", "your-super-secret-key-change-in-production")),
		JWTRefreshSecret: []byte(EnvDefault("JWT_REFRESH_SECRET", "your-refresh-secret-key-change-in-production")),
		JWTIssuer:        EnvDefault("JWT_ISSUER", "sweet-shop-api"),
		AccessTTL:        EnvDurationDefault("JWT_ACCESS_TTL", time.Hour),
		RefreshTTL:       EnvDurationDefault("JWT_REFRESH_TTL", 24*time.Hour),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "sweet_events"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationDefault accepts Go duration strings ("90m") or a bare number of minutes.
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return def
}
