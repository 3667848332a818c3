package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/party-pick/db"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType db.Dialect
	TokenSecret  string
	TokenTTL     time.Duration
	RedisURL     string
	CacheTTL     time.Duration

	// SessionIssuerKey authorizes POST /sessions. Empty disables the route.
	SessionIssuerKey string
}

const (
	defaultPort     = 3318
	defaultTokenTTL = 30 * 24 * time.Hour
	defaultCacheTTL = 10 * time.Minute
)

// LoadDotEnv reads .env files into the environment. Variables already set
// are not overwritten, and missing files are not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("failed to load env file", "file", f, "error", err)
		}
	}
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var dbType, tokenTTL, cacheTTL string

	fs := flag.NewFlagSet("party-pick", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&dbType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL for the resolution cache (optional)")
	fs.StringVar(&cacheTTL, "cache-ttl", "", "Resolution cache TTL")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Member token signing secret (prefer env)")
	fs.StringVar(&tokenTTL, "token-ttl", "", "Member token lifetime")
	fs.StringVar(&cfg.SessionIssuerKey, "session-issuer-key", "", "Key the identity service presents to mint member tokens (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
		if dbType == "" {
			dbType = string(db.SQLite)
		}
	}
	dialect, err := db.ParseDialect(dbType)
	if err != nil {
		return Config{}, err
	}
	cfg.DatabaseType = dialect

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if cfg.TokenTTL, err = durationSetting(tokenTTL, "TOKEN_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = durationSetting(cacheTTL, "CACHE_TTL", defaultCacheTTL); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}

	if cfg.SessionIssuerKey == "" {
		cfg.SessionIssuerKey = os.Getenv("SESSION_ISSUER_KEY")
	}
	if cfg.SessionIssuerKey != "" && cfg.SessionIssuerKey == cfg.TokenSecret {
		return Config{}, errors.New("SESSION_ISSUER_KEY must differ from TOKEN_SECRET")
	}

	return cfg, nil
}

// durationSetting resolves a duration from a flag value, then env, then the default.
func durationSetting(flagValue, env string, def time.Duration) (time.Duration, error) {
	v := flagValue
	if v == "" {
		v = os.Getenv(env)
	}
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", env, v)
	}
	return d, nil
}
