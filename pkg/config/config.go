package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Legacy   LegacyConfig
	JWT      JWTConfig
	Mailjet  MailjetConfig
	Stripe   StripeConfig
	Redis    RedisConfig
	Shop     ShopConfig
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	AdminEmail  string
	CORSOrigins []string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LegacyConfig points at the database holding the userquery table. When URL is
// empty the primary database settings are reused.
type LegacyConfig struct {
	URL      string
	MaxConns int32
}

type JWTConfig struct {
	SecretKey        string
	RefreshSecretKey string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type ShopConfig struct {
	NotificationWorkers  int
	NotificationAttempts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	accessTTL, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "15m"))
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRES_IN")
	}

	refreshTTL, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRES_IN", "168h"))
	if err != nil {
		return nil, errors.New("invalid JWT_REFRESH_EXPIRES_IN")
	}

	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, errors.New("invalid REQUEST_TIMEOUT")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Misika Market API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			AdminEmail:  getEnv("ADMIN_EMAIL", "admin@misika.com"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: requestTimeout,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "misika_market"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Legacy: LegacyConfig{
			URL:      getEnv("LEGACY_DATABASE_URL", ""),
			MaxConns: int32(getEnvInt("LEGACY_DB_MAX_CONNS", 10)),
		},
		JWT: JWTConfig{
			SecretKey:        getEnv("JWT_SECRET", ""),
			RefreshSecretKey: getEnv("JWT_REFRESH_SECRET", ""),
			AccessTTL:        accessTTL,
			RefreshTTL:       refreshTTL,
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", "https://api.mailjet.com"),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", "noreply@misika.com"),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", "Misika"),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  getEnv("STRIPE_CURRENCY", "inr"),
		},
		Redis: RedisConfig{
			Enabled:       getEnv("REDIS_ENABLED", "false") == "true",
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Shop: ShopConfig{
			NotificationWorkers:  getEnvInt("NOTIFICATION_WORKERS", 2),
			NotificationAttempts: getEnvInt("NOTIFICATION_MAX_ATTEMPTS", 3),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.JWT.RefreshSecretKey == "" {
		cfg.JWT.RefreshSecretKey = cfg.JWT.SecretKey
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}

	return val
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
