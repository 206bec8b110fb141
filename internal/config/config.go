package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	MailTransportLog    = "log"
	MailTransportResend = "resend"
	MailTransportSMTP   = "smtp"
	MailTransportKafka  = "kafka"
)

var insecureSecretPlaceholders = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":    {},
	"changeme":  {},
	"change-me": {},
}

type Config struct {
	Port          string
	PublicBaseURL string
	SecretKey     string
	CookieSecure  bool
	Location      *time.Location

	DBDriver          string
	DBPath            string
	DatabaseDSN       string
	IntakeDatabaseDSN string
	StoreTimeout      time.Duration

	LogLevel  string
	LogFormat string

	Mail  MailConfig
	Redis RedisConfig

	LeadRateLimit  int
	LeadRateWindow time.Duration
}

type MailConfig struct {
	Transport     string
	From          string
	NotifyTo      string
	RetryAttempts int

	ResendAPIKey  string
	ResendBaseURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string

	KafkaBroker   string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string
}

type RedisConfig struct {
	Addr     string
	Password string
}

// Load reads .env (outside prod) and then the process environment.
func Load() (Config, error) {
	if !strings.EqualFold(os.Getenv("CREWDESK_ENV"), "prod") {
		// A missing .env file is the normal case in containers.
		_ = godotenv.Load()
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:            getEnv("DB_PATH", filepath.Join("data", "crewdesk.db")),
		DatabaseDSN:       os.Getenv("DATABASE_DSN"),
		IntakeDatabaseDSN: os.Getenv("INTAKE_DATABASE_DSN"),
		CookieSecure:      parseBoolEnv(os.Getenv("COOKIE_SECURE")),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "json")),
		Mail: MailConfig{
			Transport:     strings.ToLower(getEnv("MAIL_TRANSPORT", MailTransportLog)),
			From:          getEnv("MAIL_FROM", "Crewdesk <leads@crewdesk.local>"),
			NotifyTo:      os.Getenv("LEAD_NOTIFY_TO"),
			ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
			ResendBaseURL: getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			SMTPHost:      os.Getenv("SMTP_HOST"),
			SMTPPort:      getEnv("SMTP_PORT", "587"),
			SMTPUser:      os.Getenv("SMTP_USER"),
			SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
			KafkaBroker:   os.Getenv("KAFKA_BROKER"),
			KafkaTopic:    getEnv("KAFKA_TOPIC", "crewdesk.leads"),
			KafkaUsername: os.Getenv("KAFKA_USERNAME"),
			KafkaPassword: os.Getenv("KAFKA_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	var err error
	if cfg.Port, err = ResolvePort(); err != nil {
		return Config{}, err
	}
	if cfg.SecretKey, err = ResolveSecretKey(); err != nil {
		return Config{}, err
	}
	cfg.Location = loadLocation(getEnv("TZ", "UTC"))
	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	if cfg.StoreTimeout, err = parseDurationEnv("STORE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Mail.RetryAttempts, err = parseIntEnv("MAIL_RETRY_ATTEMPTS", 0, 0, 10); err != nil {
		return Config{}, err
	}
	if cfg.LeadRateLimit, cfg.LeadRateWindow, err = ParseRateLimit(getEnv("LEAD_RATE_LIMIT", "5/10m")); err != nil {
		return Config{}, fmt.Errorf("LEAD_RATE_LIMIT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseDSN) == "" {
			return errors.New("DATABASE_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}

	switch cfg.Mail.Transport {
	case MailTransportLog:
	case MailTransportResend:
		if cfg.Mail.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required when MAIL_TRANSPORT=resend")
		}
	case MailTransportSMTP:
		if cfg.Mail.SMTPHost == "" {
			return errors.New("SMTP_HOST is required when MAIL_TRANSPORT=smtp")
		}
	case MailTransportKafka:
		if cfg.Mail.KafkaBroker == "" {
			return errors.New("KAFKA_BROKER is required when MAIL_TRANSPORT=kafka")
		}
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be one of log, resend, smtp, kafka; got %q", cfg.Mail.Transport)
	}

	if cfg.Mail.Transport != MailTransportLog && cfg.Mail.Transport != MailTransportKafka && cfg.Mail.NotifyTo == "" {
		return errors.New("LEAD_NOTIFY_TO is required for e-mail transports")
	}
	return nil
}

// IntakeDSN is the connection used for public lead inserts. It falls back to
// the main database when no separate credential is configured.
func (cfg Config) IntakeDSN() string {
	if strings.TrimSpace(cfg.IntakeDatabaseDSN) != "" {
		return cfg.IntakeDatabaseDSN
	}
	return cfg.DatabaseDSN
}

func ResolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretPlaceholders[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < 32 {
		return "", errors.New("SECRET_KEY must be at least 32 characters")
	}
	return secret, nil
}

func ResolvePort() (string, error) {
	raw := getEnv("PORT", "8080")
	port, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("PORT must be numeric, got %q", raw)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	return strconv.Itoa(port), nil
}

// ParseRateLimit reads "<count>/<duration>", e.g. "5/10m".
func ParseRateLimit(raw string) (int, time.Duration, error) {
	countPart, windowPart, found := strings.Cut(strings.TrimSpace(raw), "/")
	if !found {
		return 0, 0, fmt.Errorf("expected <count>/<duration>, got %q", raw)
	}
	count, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil || count < 1 {
		return 0, 0, fmt.Errorf("invalid count in %q", raw)
	}
	window, err := time.ParseDuration(strings.TrimSpace(windowPart))
	if err != nil || window <= 0 {
		return 0, 0, fmt.Errorf("invalid window in %q", raw)
	}
	return count, window, nil
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseBoolEnv(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseIntEnv(key string, fallback int, minValue int, maxValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < minValue || value > maxValue {
		return 0, fmt.Errorf("%s must be an integer between %d and %d, got %q", key, minValue, maxValue, raw)
	}
	return value, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return value, nil
}
