package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port     string
	GoEnv    string
	LogLevel string

	DatabasePath string
	DatabaseURL  string

	UploadDir       string
	MaxUploadSizeMB int

	CORSAllowedOrigins []string

	StrictTransitions bool

	ShutdownTimeout time.Duration
	RestartDelay    time.Duration
	RestartExitCode int

	Auth0Domain   string
	Auth0Audience string

	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// EnvFile is the dotenv file Load read, empty when none was found.
	EnvFile string
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", goEnv)
	if err := godotenv.Load(envFile); err != nil {
		envFile = ".env"
		if err := godotenv.Load(); err != nil {
			envFile = ""
		}
	}

	config, err := FromLookup(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	config.EnvFile = envFile
	return config, nil
}

// FromLookup builds the configuration from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	e := env(lookup)

	config := &Config{
		Port:               e.str("PORT", "3001"),
		GoEnv:              e.str("GO_ENV", "development"),
		LogLevel:           e.str("LOG_LEVEL", "info"),
		DatabasePath:       e.str("DATABASE_PATH", "./data/erp.db"),
		DatabaseURL:        e.str("DATABASE_URL", ""),
		UploadDir:          e.str("UPLOAD_DIR", "./uploads"),
		MaxUploadSizeMB:    e.number("MAX_UPLOAD_SIZE_MB", 10),
		CORSAllowedOrigins: splitList(e.str("CORS_ALLOWED_ORIGINS", "*")),
		StrictTransitions:  e.flag("WORKFLOW_STRICT_TRANSITIONS", false),
		ShutdownTimeout:    e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RestartDelay:       e.duration("RESTART_DELAY", time.Second),
		RestartExitCode:    e.number("RESTART_EXIT_CODE", 3),
		Auth0Domain:        e.str("AUTH0_DOMAIN", ""),
		Auth0Audience:      e.str("AUTH0_AUDIENCE", ""),
		AWSRegion:          e.str("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        e.str("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     e.str("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: e.str("AWS_SECRET_ACCESS_KEY", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabasePath == "" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_PATH or DATABASE_URL is required")
	}
	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	if (c.Auth0Domain == "") != (c.Auth0Audience == "") {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE must be set together")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// UsesPostgres reports whether DATABASE_URL points at a PostgreSQL server.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// AuthEnabled reports whether the Auth0 perimeter is configured.
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// OffsiteBackupEnabled reports whether backups can be copied to S3.
func (c *Config) OffsiteBackupEnabled() bool {
	return c.AWSS3Bucket != ""
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

type env func(string) (string, bool)

func (e env) str(key, defaultValue string) string {
	if value, ok := e(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (e env) number(key string, defaultValue int) int {
	if n, err := strconv.Atoi(e.str(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func (e env) flag(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(e.str(key, "")); err == nil {
		return b
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(e.str(key, "")); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
