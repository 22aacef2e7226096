package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minSecretLength = 32
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	App       AppConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	Storage   StorageConfig
	Log       LogConfig
}

type AppConfig struct {
	Env            string
	Name           string
	Port           string
	BaseURL        string
	AllowedOrigins []string
}

func (c AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	PurposeSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
}

type DatabaseConfig struct {
	Driver     string
	SQLitePath string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type MailConfig struct {
	Provider string
	APIURL   string
	APIKey   string
	From     string
}

type StorageConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and the process environment.
// Any missing or malformed required value is returned as an error so startup can abort.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	accessTTL, err := durationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}
	refreshTTL, err := durationEnv("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	bcryptCost, err := intEnv("BCRYPT_COST", 12)
	if err != nil {
		return Config{}, err
	}
	rateRequests, err := intEnv("RATE_LIMIT_REQUESTS", 20)
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := durationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: AppConfig{
			Env:            getenv("APP_ENV", EnvDevelopment),
			Name:           getenv("APP_NAME", "kitforge"),
			Port:           getenv("PORT", "8080"),
			BaseURL:        strings.TrimRight(getenv("APP_BASE_URL", "http://localhost:3000"), "/"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			PurposeSecret: os.Getenv("JWT_PURPOSE_SECRET"),
			AccessTTL:     accessTTL,
			RefreshTTL:    refreshTTL,
			BcryptCost:    bcryptCost,
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
			SQLitePath: getenv("SQLITE_PATH", "kitforge.db"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		RateLimit: RateLimitConfig{
			Requests: rateRequests,
			Window:   rateWindow,
		},
		Mail: MailConfig{
			Provider: strings.ToLower(getenv("MAIL_PROVIDER", "log")),
			APIURL:   os.Getenv("MAIL_API_URL"),
			APIKey:   os.Getenv("MAIL_API_KEY"),
			From:     getenv("MAIL_FROM", "no-reply@localhost"),
		},
		Storage: StorageConfig{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getenv("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Auth.AccessSecret) < minSecretLength {
		return fmt.Errorf("%w: JWT_ACCESS_SECRET must be at least %d characters", ErrInvalidConfig, minSecretLength)
	}
	if len(c.Auth.RefreshSecret) < minSecretLength {
		return fmt.Errorf("%w: JWT_REFRESH_SECRET must be at least %d characters", ErrInvalidConfig, minSecretLength)
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("%w: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ", ErrInvalidConfig)
	}
	if c.Auth.PurposeSecret != "" && len(c.Auth.PurposeSecret) < minSecretLength {
		return fmt.Errorf("%w: JWT_PURPOSE_SECRET must be at least %d characters", ErrInvalidConfig, minSecretLength)
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", ErrInvalidConfig)
	}
	if c.Auth.RefreshTTL <= c.Auth.AccessTTL {
		return fmt.Errorf("%w: JWT_REFRESH_TTL must exceed JWT_ACCESS_TTL", ErrInvalidConfig)
	}
	// bcrypt.MinCost..bcrypt.MaxCost
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("%w: BCRYPT_COST must be between 4 and 31", ErrInvalidConfig)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported DB_DRIVER %q", ErrInvalidConfig, c.Database.Driver)
	}
	switch c.Mail.Provider {
	case "log":
	case "http":
		if c.Mail.APIURL == "" || c.Mail.APIKey == "" {
			return fmt.Errorf("%w: MAIL_API_URL and MAIL_API_KEY are required for MAIL_PROVIDER=http", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported MAIL_PROVIDER %q", ErrInvalidConfig, c.Mail.Provider)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: rate limit settings must be positive", ErrInvalidConfig)
	}
	if c.Storage.Enabled() && c.Storage.PublicURL == "" {
		return fmt.Errorf("%w: S3_PUBLIC_URL is required when S3_BUCKET is set", ErrInvalidConfig)
	}
	return nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", ErrInvalidConfig, key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", ErrInvalidConfig, key)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
