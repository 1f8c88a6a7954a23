package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int

	// ApplicationName is reported to the server and shows up in pg_stat_activity.
	ApplicationName string
	PingTimeout     time.Duration
}

// MinIOConfig holds object storage settings for MinIO.
// Generated PDFs are cached in Bucket and served through presigned URLs valid for PresignExpiry.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
}

// PDFConfig holds the headless browser settings used to print documents.
// When ControlURL is set the renderer connects to a running browser instead of launching one.
type PDFConfig struct {
	BrowserBin string
	ControlURL string
	Timeout    time.Duration
}

// MailjetConfig holds the transactional email settings.
// An empty PublicKey switches the application to the logging mailer.
type MailjetConfig struct {
	PublicKey         string
	PrivateKey        string
	SenderEmail       string
	SenderName        string
	MainTemplateID    int
	RefusalTemplateID int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	BaseURL  string
	Timezone string
	LogLevel string
	Database DatabaseConfig
	MinIO    MinIOConfig
	PDF      PDFConfig
	Mailjet  MailjetConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		BaseURL:  getEnv("APP_BASE_URL", "http://localhost:3000"),
		Timezone: getEnv("APP_TIMEZONE", "Europe/Paris"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ApplicationName:    getEnv("DB_APPLICATION_NAME", "trackdechets"),
			PingTimeout:        getEnvDuration("DB_PING_TIMEOUT", 5*time.Second),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PresignExpiry: getEnvDuration("MINIO_PRESIGN_EXPIRY", 15*time.Minute),
		},
		PDF: PDFConfig{
			BrowserBin: getEnv("PDF_BROWSER_BIN", ""),
			ControlURL: getEnv("PDF_BROWSER_CONTROL_URL", ""),
			Timeout:    getEnvDuration("PDF_TIMEOUT", 30*time.Second),
		},
		Mailjet: MailjetConfig{
			PublicKey:         getEnv("MJ_APIKEY_PUBLIC", ""),
			PrivateKey:        getEnv("MJ_APIKEY_PRIVATE", ""),
			SenderEmail:       getEnv("SENDER_EMAIL_ADDRESS", ""),
			SenderName:        getEnv("SENDER_NAME", "Trackdéchets"),
			MainTemplateID:    getEnvInt("MJ_MAIN_TEMPLATE_ID", 0),
			RefusalTemplateID: getEnvInt("MJ_REFUSAL_TEMPLATE_ID", 0),
		},
	}
}

// Location returns the configured timezone, falling back to UTC when it cannot be loaded.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
