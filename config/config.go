package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	Drive     DriveConfig
	Mail      MailConfig
	Templates TemplatesConfig
	Reminders RemindersConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// AppBaseURL is the public URL of the web front end, used for links in emails and redirects.
	AppBaseURL string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
}

// DriveConfig holds the OAuth client and the four well-known folders agreements are filed into.
type DriveConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	PendingFolderID  string
	ApprovedFolderID string
	RejectedFolderID string
	ArchivedFolderID string
	// FolderTypeSlug names the agreement type whose backing item is a folder, not a file.
	FolderTypeSlug    string
	RequestsPerSecond int
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type TemplatesConfig struct {
	Dir string
}

type RemindersConfig struct {
	Schedule  string
	StaleDays int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "convenios"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Drive: DriveConfig{
			ClientID:          getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:       getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/storage/oauth/callback"),
			PendingFolderID:   getEnv("DRIVE_FOLDER_PENDING", ""),
			ApprovedFolderID:  getEnv("DRIVE_FOLDER_APPROVED", ""),
			RejectedFolderID:  getEnv("DRIVE_FOLDER_REJECTED", ""),
			ArchivedFolderID:  getEnv("DRIVE_FOLDER_ARCHIVED", ""),
			FolderTypeSlug:    getEnv("DRIVE_FOLDER_TYPE_SLUG", "practicas-preprofesionales"),
			RequestsPerSecond: getEnvAsInt("DRIVE_RPS", 5),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "convenios@localhost"),
		},
		Templates: TemplatesConfig{
			Dir: getEnv("TEMPLATES_DIR", "templates"),
		},
		Reminders: RemindersConfig{
			Schedule:  getEnv("REMINDER_SCHEDULE", "0 0 8 * * *"),
			StaleDays: getEnvAsInt("REMINDER_STALE_DAYS", 7),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.Drive.RequestsPerSecond <= 0 {
		return fmt.Errorf("DRIVE_RPS must be positive")
	}

	return nil
}

// FolderIDs returns the configured folder for each placement bucket.
func (d DriveConfig) FolderIDs() map[string]string {
	return map[string]string{
		"pending":  d.PendingFolderID,
		"approved": d.ApprovedFolderID,
		"rejected": d.RejectedFolderID,
		"archived": d.ArchivedFolderID,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
