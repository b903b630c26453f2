package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInputPath = "scripts/bait_shops.csv"
	DefaultPort      = "8080"
)

// Config holds every setting the commands read from the environment.
type Config struct {
	DatabaseURL  string
	Port         string
	FrontendURLs []string
	SiteURL      string

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	FirebaseBucket    string
	GoogleCredentials string
	MapsServerKey     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTP              SMTPConfig
	ImportNotifyEmail string

	InputPath string
	Delimiter string

	LogLevel  string
	LogFormat string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is set to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.From != ""
}

// Load reads an optional .env file and builds a Config from the environment.
func Load() *Config {
	// A missing .env is fine; production sets variables directly.
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Port:         GetEnv("PORT", DefaultPort),
		FrontendURLs: splitList(os.Getenv("FRONTEND_URL")),
		SiteURL:      GetEnv("SITE_URL", "https://livebait.example.com"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		FirebaseBucket:    os.Getenv("FIREBASE_STORAGE_BUCKET"),
		GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		MapsServerKey:     os.Getenv("GOOGLE_MAPS_SERVER_KEY"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		ImportNotifyEmail: os.Getenv("IMPORT_NOTIFY_EMAIL"),

		InputPath: GetEnv("IMPORT_FILE", DefaultInputPath),
		Delimiter: GetEnv("IMPORT_DELIMITER", ","),

		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks that critical settings are present. The JWT secret is
// only required when the HTTP server runs. Missing optional settings are
// logged as warnings.
func (c *Config) Validate(requireJWT bool) error {
	var missing []string

	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if requireJWT && c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(c.Delimiter) != 1 {
		return errors.Errorf("IMPORT_DELIMITER must be a single character, got %q", c.Delimiter)
	}

	if len(missing) > 0 {
		return errors.Errorf("critical environment variables not set: %v", missing)
	}

	if c.FirebaseBucket == "" {
		logrus.Warn("FIREBASE_STORAGE_BUCKET not set - static map uploads will fail")
	}
	if c.MapsServerKey == "" {
		logrus.Warn("GOOGLE_MAPS_SERVER_KEY not set - static map backfill is disabled")
	}
	if c.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR not set - responses will not be cached")
	}
	if !c.SMTP.Enabled() {
		logrus.Warn("SMTP_HOST/SMTP_PORT/SMTP_FROM not set - import notifications will not be sent")
	}
	if requireJWT && c.AdminPasswordHash == "" {
		logrus.Warn("ADMIN_PASSWORD_HASH not set - admin login is disabled")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("%s=%q is not a number, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
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
