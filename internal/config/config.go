// Package config handles loading application configuration from environment
// variables, with an optional YAML file for the calendar widget section.
// All config is centralized here so no other package reads env vars
// directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Storage backends for calendar events.
const (
	StorageMemory  = "memory"
	StorageMariaDB = "mariadb"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Storage selects the event store: "memory" (default) or "mariadb".
	Storage string

	// ConfigFile is the optional YAML file overlaying the Widget section.
	ConfigFile string

	// CORSOrigins lists extra origins allowed to call the JSON API.
	CORSOrigins []string

	// RateLimitPerMinute caps API requests per client IP.
	RateLimitPerMinute int

	// TrustedProxies are the peers whose X-Forwarded-For is believed when
	// resolving the client IP for rate limiting and request logs.
	TrustedProxies []netip.Prefix

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Session holds widget session settings.
	Session SessionConfig

	// Snapshot holds the scheduled ICS snapshot settings.
	Snapshot SnapshotConfig

	// Widget holds the calendar widget defaults.
	Widget WidgetConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so
// container orchestrators can manage each independently.
// If DATABASE_URL is set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "calview").
	User string

	// Password is the MariaDB password (default: "calview").
	Password string

	// Name is the database name (default: "calview").
	Name string

	// MigrationsPath is the directory holding *.up.sql / *.down.sql files.
	MigrationsPath string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
//
// Event times are naive wall-clock values, so DATETIME columns are read
// back in the local zone rather than UTC. clientFoundRows makes UPDATE
// report matched rows, which the repository uses to detect missing IDs.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	// Empty keeps widget sessions in process memory.
	URL string
}

// SessionConfig holds widget session settings.
type SessionConfig struct {
	// CookieName is the cookie carrying the widget session ID.
	CookieName string

	// TTL is how long an idle widget session is kept.
	TTL time.Duration
}

// SnapshotConfig controls the periodic ICS snapshot job.
type SnapshotConfig struct {
	// Cron is a cron expression (e.g. "0 * * * *"). Empty disables the job.
	Cron string

	// Path is the file the snapshot is written to.
	Path string
}

// Load reads configuration from environment variables with sensible defaults,
// then applies the YAML overlay from CONFIG_FILE if one is set.
// Returns an error if the merged configuration is invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnvInt("PORT", 8080),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:           getEnv("LOG_LEVEL", "debug"),
		Storage:            strings.ToLower(getEnv("STORAGE", StorageMemory)),
		ConfigFile:         getEnv("CONFIG_FILE", ""),
		CORSOrigins:        getEnvList("CORS_ORIGINS"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "calview"),
			Password:        getEnv("DB_PASSWORD", "calview"),
			Name:            getEnv("DB_NAME", "calview"),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "db/migrations"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},

		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "calview_session"),
			TTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
		},

		Snapshot: SnapshotConfig{
			Cron: getEnv("SNAPSHOT_CRON", ""),
			Path: getEnv("SNAPSHOT_PATH", "./data/calendar.ics"),
		},

		Widget: DefaultWidget(),
	}

	proxies, err := parsePrefixes(getEnvList("TRUSTED_PROXIES"), defaultTrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	cfg.Widget.InitialView = getEnv("INITIAL_VIEW", cfg.Widget.InitialView)
	cfg.Widget.InitialDate = getEnv("INITIAL_DATE", cfg.Widget.InitialDate)

	if cfg.ConfigFile != "" {
		if err := loadFile(cfg.ConfigFile, &cfg.Widget); err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.ConfigFile, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks the merged configuration.
func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory, StorageMariaDB:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StorageMariaDB, c.Storage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return c.Widget.Validate()
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "720h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// defaultTrustedProxies covers a reverse proxy on the same host.
var defaultTrustedProxies = []string{"127.0.0.0/8", "::1/128"}

// parsePrefixes parses CIDRs or bare addresses. An empty list means def.
func parsePrefixes(list, def []string) ([]netip.Prefix, error) {
	if len(list) == 0 {
		list = def
	}
	out := make([]netip.Prefix, 0, len(list))
	for _, s := range list {
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				return nil, err
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// getEnvList reads a comma-separated env var, dropping empty entries.
func getEnvList(key string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
