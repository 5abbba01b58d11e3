package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     string
	Env                      string
	StorageDriver            string
	DataFile                 string
	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	UpdateRetries            int
	AllowStateOverride       bool
	LoginRatePerMinute       int
	SessionTTLHours          int
	CORSOrigins              []string
	TrustedProxies           []string
	Access                   AccessConfig
}

func Default() Config {
	return Config{
		Port:                     "5000",
		Env:                      "prod",
		StorageDriver:            DriverFile,
		DataFile:                 "data/games.json",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		UpdateRetries:            3,
		LoginRatePerMinute:       10,
		SessionTTLHours:          12,
		CORSOrigins: []string{
			"https://lakshyavedh.vercel.app",
			"https://lakshyavedh.onrender.com",
			"http://localhost:5173",
			"http://localhost:3000",
		},
		Access: DefaultAccess(),
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("ENV"); raw != "" {
		cfg.Env = raw
	}
	if raw := os.Getenv("STORAGE_DRIVER"); raw != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(raw))
	}
	if raw := os.Getenv("DATA_FILE"); raw != "" {
		cfg.DataFile = raw
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("UPDATE_RETRIES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.UpdateRetries = value
		}
	}
	if raw := os.Getenv("ALLOW_STATE_OVERRIDE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.AllowStateOverride = value
		}
	}
	if raw := os.Getenv("LOGIN_RATE_PER_MINUTE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.LoginRatePerMinute = value
		}
	}
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SessionTTLHours = value
		}
	}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}
	// Forwarded client addresses are only honoured from these peers.
	if raw := os.Getenv("TRUSTED_PROXIES"); raw != "" {
		cfg.TrustedProxies = splitList(raw)
	}
	cfg.Access = loadAccess(cfg.Access)
	return cfg
}

// IsRelational reports whether the storage driver is backed by gorm.
func (c Config) IsRelational() bool {
	switch c.StorageDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
		return true
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
