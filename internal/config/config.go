package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	WhatsApp  WhatsAppConfig
	Store     StoreConfig
	Reporting ReportingConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WhatsAppConfig contains credentials and options for the WhatsApp gateway.
type WhatsAppConfig struct {
	BaseURL     string
	APIKey      string
	Session     string
	VerifyToken string
	GroupID     string
}

// StoreConfig locates the record store file and the export directory.
type StoreConfig struct {
	DataFile  string
	ExportDir string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig configures the optional spreadsheet mirror for exports. Both
// fields empty disables the mirror.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig configures the optional nightly report archive. An empty URI
// disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:     getenvWithDefault("WHATSAPP_BASE_URL", "http://localhost:3000"),
			APIKey:      os.Getenv("WHATSAPP_API_KEY"),
			Session:     getenvWithDefault("WHATSAPP_SESSION", "default"),
			VerifyToken: os.Getenv("WEBHOOK_VERIFY_TOKEN"),
			GroupID:     os.Getenv("WHATSAPP_GROUP_ID"),
		},
		Store: StoreConfig{
			DataFile:  getenvWithDefault("DATA_FILE", "data.json"),
			ExportDir: getenvWithDefault("EXPORT_DIR", "exports"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Jakarta"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_MIRROR_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "rekapbot"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.WhatsApp.BaseURL == "":
		return errors.New("WHATSAPP_BASE_URL must not be empty")
	case c.WhatsApp.APIKey == "":
		return errors.New("WHATSAPP_API_KEY must be provided")
	case c.WhatsApp.VerifyToken == "":
		return errors.New("WEBHOOK_VERIFY_TOKEN must be provided")
	case c.WhatsApp.Session == "":
		return errors.New("WHATSAPP_SESSION must not be empty")
	}

	if c.Store.DataFile == "" {
		return errors.New("DATA_FILE must be provided")
	}

	if c.Store.ExportDir == "" {
		return errors.New("EXPORT_DIR must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// The spreadsheet mirror is optional but must be configured as a pair.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_MIRROR_ID must be set together")
	}

	return nil
}

// SheetsEnabled reports whether the export mirror should be wired.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

// MongoEnabled reports whether the nightly report archive should be wired.
func (c *Config) MongoEnabled() bool {
	return c.MongoDB.URI != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
