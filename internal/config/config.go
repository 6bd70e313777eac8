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

// Supported dataset source names for DATA_SOURCES.
const (
	SourceUpload = "upload"
	SourceSQLite = "sqlite"
	SourceCSV    = "csv"
	SourceSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Sheets   SheetsConfig
	Alerts   AlertsConfig
	Notify   NotifyConfig
	Pushover PushoverConfig
	Email    EmailConfig
	WhatsApp WhatsAppConfig
	MongoDB  MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// DatasetConfig lists where the inventory dataset is loaded from, in order.
type DatasetConfig struct {
	Sources     []string
	CSVPath     string
	SQLitePath  string
	SQLiteTable string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	DataRange       string
	AlertLogRange   string
}

// Enabled reports whether a spreadsheet is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// AlertsConfig holds default thresholds and scheduler settings.
type AlertsConfig struct {
	StockThreshold   int
	ExpiryWindowDays int
	CronSchedule     string
	Timezone         string
}

// Location resolves Timezone.
func (c AlertsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// NotifyConfig bounds outbound notification attempts.
type NotifyConfig struct {
	Timeout time.Duration
	Retries int
}

// PushoverConfig holds credentials for the Pushover push API.
type PushoverConfig struct {
	Token   string
	User    string
	BaseURL string
}

// Enabled reports whether push notifications are configured.
func (c PushoverConfig) Enabled() bool {
	return c.Token != "" && c.User != ""
}

// EmailConfig holds SMTP settings for the low stock email.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Enabled reports whether the email sink is configured.
func (c EmailConfig) Enabled() bool {
	return c.Username != "" && c.Password != "" && len(c.To) > 0
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether WhatsApp notifications are configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.Recipient != ""
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether alert history is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
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

	stockThreshold, err := getenvInt("STOCK_THRESHOLD", 20)
	if err != nil {
		return nil, err
	}
	expiryWindow, err := getenvInt("EXPIRY_WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}
	smtpPort, err := getenvInt("SMTP_PORT", 465)
	if err != nil {
		return nil, err
	}
	retries, err := getenvInt("NOTIFY_RETRIES", 2)
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(getenvWithDefault("NOTIFY_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Dataset: DatasetConfig{
			Sources:     splitList(strings.ToLower(getenvWithDefault("DATA_SOURCES", "upload,sqlite,csv"))),
			CSVPath:     getenvWithDefault("DATASET_CSV_PATH", "easyday_sales_dataset.csv"),
			SQLitePath:  getenvWithDefault("SQLITE_PATH", "retail_data.db"),
			SQLiteTable: getenvWithDefault("SQLITE_TABLE", "sales_data"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			DataRange:       getenvWithDefault("GOOGLE_SHEET_RANGE", "Inventory!A:H"),
			AlertLogRange:   os.Getenv("GOOGLE_SHEET_ALERT_RANGE"),
		},
		Alerts: AlertsConfig{
			StockThreshold:   stockThreshold,
			ExpiryWindowDays: expiryWindow,
			CronSchedule:     getenvWithDefault("ALERT_CRON_SCHEDULE", "0 8 * * *"),
			Timezone:         getenvWithDefault("TIMEZONE", "UTC"),
		},
		Notify: NotifyConfig{
			Timeout: timeout,
			Retries: retries,
		},
		Pushover: PushoverConfig{
			Token:   os.Getenv("PUSHOVER_TOKEN"),
			User:    os.Getenv("PUSHOVER_USER"),
			BaseURL: getenvWithDefault("PUSHOVER_BASE_URL", "https://api.pushover.net"),
		},
		Email: EmailConfig{
			Host:     getenvWithDefault("SMTP_HOST", "smtp.gmail.com"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("ALERT_EMAIL_FROM"),
			To:       splitList(os.Getenv("ALERT_EMAIL_TO")),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("WHATSAPP_RECIPIENT"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stocksense"),
		},
	}

	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.Username
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

	if len(c.Dataset.Sources) == 0 {
		return errors.New("DATA_SOURCES must list at least one source")
	}
	for _, src := range c.Dataset.Sources {
		switch src {
		case SourceUpload, SourceCSV:
		case SourceSQLite:
			if c.Dataset.SQLitePath == "" || c.Dataset.SQLiteTable == "" {
				return errors.New("SQLITE_PATH and SQLITE_TABLE must be provided for the sqlite source")
			}
		case SourceSheets:
			if !c.Sheets.Enabled() {
				return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided for the sheets source")
			}
		default:
			return fmt.Errorf("unknown data source %q", src)
		}
	}

	switch {
	case c.Alerts.StockThreshold < 0:
		return errors.New("STOCK_THRESHOLD must be >= 0")
	case c.Alerts.ExpiryWindowDays < 0:
		return errors.New("EXPIRY_WINDOW_DAYS must be >= 0")
	case c.Alerts.CronSchedule == "":
		return errors.New("ALERT_CRON_SCHEDULE must be provided")
	}

	if _, err := c.Alerts.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.Notify.Timeout <= 0 {
		return errors.New("NOTIFY_TIMEOUT must be positive")
	}
	if c.Notify.Retries < 0 {
		return errors.New("NOTIFY_RETRIES must be >= 0")
	}

	if c.Email.Enabled() && c.Email.Host == "" {
		return errors.New("SMTP_HOST must be provided when email alerts are enabled")
	}

	return nil
}

// HasSource reports whether name is part of the configured fallback chain.
func (c DatasetConfig) HasSource(name string) bool {
	for _, s := range c.Sources {
		if s == name {
			return true
		}
	}
	return false
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
